// Package notifier delivers user-facing notifications. Messages are rendered
// from mustache templates, handed to an in-process event bus and handled
// asynchronously: each one is stored as a Notification row and, when a
// publisher is configured, sent to a Redis channel as JSON.
//
// Delivery is fire-and-forget. Failures are logged and never reach the
// caller, so a notification can not roll back the mutation that caused it.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/hoisie/mustache"
	"github.com/qatrack/models"
	"go.uber.org/zap"
)

const topicCreated = "notification:created"

// Store persists notifications
type Store interface {
	Create(n *models.Notification) error
}

// Publisher sends a payload to other processes
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}

// Option configures a Notifier
type Option func(*Notifier)

// WithPublisher sends every notification to channel through p
func WithPublisher(p Publisher, channel string) Option {
	return func(n *Notifier) {
		n.publisher = p
		n.channel = channel
	}
}

// WithTemplates overrides message templates by key
func WithTemplates(templates map[string]string) Option {
	return func(n *Notifier) {
		for k, v := range templates {
			n.templates[k] = v
		}
	}
}

// WithLogger sets the logger used for delivery failures
func WithLogger(log *zap.Logger) Option {
	return func(n *Notifier) {
		n.log = log
	}
}

// Notifier renders and dispatches notifications
type Notifier struct {
	bus       evbus.Bus
	store     Store
	publisher Publisher
	channel   string
	templates map[string]string
	log       *zap.Logger
	handler   func(models.Notification)
}

// New creates a notifier that stores notifications through store
func New(store Store, opts ...Option) (*Notifier, error) {
	n := &Notifier{
		bus:       evbus.New(),
		store:     store,
		templates: make(map[string]string, len(DefaultTemplates)),
		log:       zap.NewNop(),
	}
	for k, v := range DefaultTemplates {
		n.templates[k] = v
	}
	for _, opt := range opts {
		opt(n)
	}
	n.handler = n.deliver
	if err := n.bus.SubscribeAsync(topicCreated, n.handler, false); err != nil {
		return nil, err
	}
	return n, nil
}

// Render returns the message for a template key. Unknown keys render as empty.
func (n *Notifier) Render(key string, data map[string]interface{}) string {
	tmpl, ok := n.templates[key]
	if !ok {
		return ""
	}
	return mustache.Render(tmpl, data)
}

// Notify renders the template and queues a notification for userID.
// A nil Notifier drops the message.
func (n *Notifier) Notify(userID, key string, data map[string]interface{}, link string) {
	if n == nil {
		return
	}
	message := n.Render(key, data)
	if message == "" {
		n.log.Warn("unknown notification template", zap.String("template", key))
		return
	}
	n.bus.Publish(topicCreated, models.Notification{
		UserID:    userID,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now(),
	})
}

func (n *Notifier) deliver(note models.Notification) {
	if err := n.store.Create(&note); err != nil {
		n.log.Warn("failed to store notification", zap.String("user_id", note.UserID), zap.Error(err))
		return
	}
	if n.publisher == nil {
		return
	}
	payload, err := json.Marshal(note)
	if err != nil {
		n.log.Warn("failed to encode notification", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.publisher.Publish(ctx, n.channel, payload); err != nil {
		n.log.Warn("failed to publish notification", zap.String("channel", n.channel), zap.Error(err))
	}
}

// Wait blocks until every queued notification has been handled
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.bus.WaitAsync()
}

// Close waits for pending deliveries and releases the publisher
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	n.bus.WaitAsync()
	if err := n.bus.Unsubscribe(topicCreated, n.handler); err != nil {
		return err
	}
	if n.publisher != nil {
		return n.publisher.Close()
	}
	return nil
}
