package network

import "fmt"

// RPCConfig holds the connection parameters for a Phantom Archive node.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// Environment variables read by ResolveConfig.
const (
	EnvRPCURL  = "PHANTOM_RPC_URL"
	EnvRPCUser = "PHANTOM_RPC_USER"
	EnvRPCPass = "PHANTOM_RPC_PASS"
)

// NetworkPresets contains default RPC configurations for known networks.
// Public networks are intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"localhost": {URL: "http://127.0.0.1:8545"},
}

// ResolveConfig merges RPC configuration from four sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (PHANTOM_RPC_URL, PHANTOM_RPC_USER, PHANTOM_RPC_PASS)
//  3. The config file
//  4. Network presets (lowest priority, localhost only)
//
// Any of flags, env and file may be nil.
func ResolveConfig(flags *RPCConfig, env map[string]string, file *RPCConfig, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if file != nil {
		overlay(&result, *file)
	}
	if env != nil {
		overlay(&result, RPCConfig{URL: env[EnvRPCURL], User: env[EnvRPCUser], Password: env[EnvRPCPass]})
	}
	if flags != nil {
		overlay(&result, *flags)
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set --rpc-url, %s, or rpcurl in the config file)", network, EnvRPCURL)
	}

	return &result, nil
}

// overlay copies the non-empty connection fields of src onto dst.
func overlay(dst *RPCConfig, src RPCConfig) {
	if src.URL != "" {
		dst.URL = src.URL
	}
	if src.User != "" {
		dst.User = src.User
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
}
