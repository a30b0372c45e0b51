package conf_test

import (
	"context"
	"testing"

	"github.com/ghostpeony/sidecar/util/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigContext(t *testing.T) {
	ctx := conf.ContextWithConfig(context.Background(), testConfig{Port: 42})

	cfg, err := conf.GetConfigFromContext[testConfig](ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Port)

	_, err = conf.GetConfigFromContext[backendConfig](ctx)
	assert.Error(t, err)

	_, err = conf.GetConfigFromContext[testConfig](context.Background())
	assert.Error(t, err)
}
