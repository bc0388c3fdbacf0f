package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkPresets(t *testing.T) {
	preset, ok := NetworkPresets["localhost"]
	require.True(t, ok, "preset should exist for localhost")
	assert.Equal(t, "http://127.0.0.1:8545", preset.URL)
	assert.Empty(t, preset.User)
}

func TestPublicNetworksHaveNoPreset(t *testing.T) {
	for _, name := range []string{"sepolia", "mainnet"} {
		_, ok := NetworkPresets[name]
		assert.False(t, ok, "%s should not have a default preset", name)
	}
}

func TestResolveConfigFlagsOverrideAll(t *testing.T) {
	flags := &RPCConfig{URL: "http://custom:9999", User: "me", Password: "secret"}
	env := map[string]string{EnvRPCURL: "http://env:1", EnvRPCUser: "envuser"}
	cfg, err := ResolveConfig(flags, env, nil, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://custom:9999", cfg.URL)
	assert.Equal(t, "me", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "localhost", cfg.Network)
}

func TestResolveConfigEnvOverridesPreset(t *testing.T) {
	env := map[string]string{
		"PHANTOM_RPC_URL":  "http://env-node:8545",
		"PHANTOM_RPC_USER": "envuser",
	}
	cfg, err := ResolveConfig(nil, env, nil, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://env-node:8545", cfg.URL)
	assert.Equal(t, "envuser", cfg.User)
	assert.Empty(t, cfg.Password)
}

func TestResolveConfigPresetFallback(t *testing.T) {
	cfg, err := ResolveConfig(nil, nil, nil, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.URL)
}

func TestResolveConfigPublicNetworkRequiresExplicit(t *testing.T) {
	_, err := ResolveConfig(nil, nil, nil, "sepolia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sepolia")

	cfg, err := ResolveConfig(nil, map[string]string{EnvRPCURL: "https://rpc.example"}, nil, "sepolia")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example", cfg.URL)
	assert.Equal(t, "sepolia", cfg.Network)
}

func TestResolveConfigPartialFlags(t *testing.T) {
	flags := &RPCConfig{User: "me"}
	cfg, err := ResolveConfig(flags, nil, nil, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.URL) // from preset
	assert.Equal(t, "me", cfg.User)
}

func TestResolveConfigFileBelowEnv(t *testing.T) {
	file := &RPCConfig{URL: "http://file-node:8545", User: "fileuser"}

	cfg, err := ResolveConfig(nil, nil, file, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://file-node:8545", cfg.URL)
	assert.Equal(t, "fileuser", cfg.User)

	env := map[string]string{EnvRPCURL: "http://env-node:8545"}
	cfg, err = ResolveConfig(nil, env, file, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://env-node:8545", cfg.URL)
	assert.Equal(t, "fileuser", cfg.User)

	cfg, err = ResolveConfig(&RPCConfig{URL: "http://flag-node:1"}, env, file, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "http://flag-node:1", cfg.URL)
}

func TestResolveConfigFileServesPublicNetwork(t *testing.T) {
	cfg, err := ResolveConfig(nil, nil, &RPCConfig{URL: "https://rpc.example"}, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example", cfg.URL)
	assert.Equal(t, "mainnet", cfg.Network)
}
