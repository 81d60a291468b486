package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/qatrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memoryStore struct {
	mu    sync.Mutex
	items []models.Notification
	err   error
}

func (s *memoryStore) Create(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, *n)
	return nil
}

func (s *memoryStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

type memoryPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	closed   bool
}

func (p *memoryPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *memoryPublisher) Close() error {
	p.closed = true
	return nil
}

func TestNotify_StoresRenderedMessage(t *testing.T) {
	store := &memoryStore{}
	n, err := New(store)
	require.NoError(t, err)

	n.Notify("u1", TemplateTeamAdded, map[string]interface{}{"project": "Portal", "role": "qa"}, "/projects/p1")
	require.NoError(t, n.Close())

	items := store.all()
	require.Len(t, items, 1)
	assert.Equal(t, "u1", items[0].UserID)
	assert.Equal(t, "You have been added to project Portal as qa", items[0].Message)
	assert.Equal(t, "/projects/p1", items[0].Link)
}

func TestNotify_PublishesToChannel(t *testing.T) {
	store := &memoryStore{}
	pub := &memoryPublisher{}
	n, err := New(store, WithPublisher(pub, "qatrack:test"))
	require.NoError(t, err)

	n.Notify("u2", TemplateTeamRemoved, map[string]interface{}{"project": "Portal", "role": "at_tester"}, "")
	require.NoError(t, n.Close())

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "qatrack:test", pub.channels[0])
	var decoded models.Notification
	require.NoError(t, json.Unmarshal(pub.payloads[0], &decoded))
	assert.Equal(t, "u2", decoded.UserID)
	assert.True(t, pub.closed)
}

func TestNotify_TemplateOverride(t *testing.T) {
	store := &memoryStore{}
	n, err := New(store, WithTemplates(map[string]string{TemplateTeamRestored: "welcome back to {{project}}"}))
	require.NoError(t, err)

	assert.Equal(t, "welcome back to X", n.Render(TemplateTeamRestored, map[string]interface{}{"project": "X"}))
	assert.Empty(t, n.Render("missing", nil))
	require.NoError(t, n.Close())
}

func TestNotify_UnknownTemplateIsDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &memoryStore{}
	n, err := New(store, WithLogger(zap.New(core)))
	require.NoError(t, err)

	n.Notify("u1", "nope", nil, "")
	require.NoError(t, n.Close())

	assert.Empty(t, store.all())
	assert.Equal(t, 1, logs.FilterMessage("unknown notification template").Len())
}

func TestNotify_StoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &memoryStore{err: errors.New("db down")}
	pub := &memoryPublisher{}
	n, err := New(store, WithLogger(zap.New(core)), WithPublisher(pub, "c"))
	require.NoError(t, err)

	n.Notify("u1", TemplateTeamAdded, map[string]interface{}{"project": "P", "role": "qa"}, "")
	require.NoError(t, n.Close())

	assert.Equal(t, 1, logs.FilterMessage("failed to store notification").Len())
	assert.Empty(t, pub.payloads, "nothing is published when storing fails")
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	n.Notify("u1", TemplateTeamAdded, nil, "")
	n.Wait()
	assert.NoError(t, n.Close())
}

func TestNewRedisPublisher_InvalidURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "not a url")
	assert.Error(t, err)
}
