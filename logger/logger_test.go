package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_InvalidLevel(t *testing.T) {
	assert.Error(t, Init("loud", false))
}

func TestSetAndL(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := L()
	t.Cleanup(func() { Set(prev) })

	Set(zap.New(core))
	L().Info("page assigned", zap.String("pageId", "p1"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "page assigned", entry.Message)
	assert.Equal(t, "p1", entry.ContextMap()["pageId"])
}
