package cache

import (
	"log/slog"
	"testing"

	"boutique/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

// nopLifecycle satisfies fx.Lifecycle for constructors under test.
type nopLifecycle struct{}

func (nopLifecycle) Append(fx.Hook) {}

func TestNewRedisClient_MissingConfig(t *testing.T) {
	params := Params{
		Lifecycle: nopLifecycle{},
		Config:    &config.Config{},
		Logger:    slog.New(slog.DiscardHandler),
	}

	client, err := NewRedisClient(params)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "redis configuration")
}
