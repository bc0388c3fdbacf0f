package wallet

import "strings"

// NetworkConfig defines the parameters of a ledger network.
type NetworkConfig struct {
	Name    string `json:"name"`
	ChainID uint64 `json:"chain_id"`
	RPCPort uint16 `json:"rpc_port"`
}

// Predefined network configurations.
var (
	Localhost = NetworkConfig{
		Name:    "localhost",
		ChainID: 31337,
		RPCPort: 8545,
	}

	Sepolia = NetworkConfig{
		Name:    "sepolia",
		ChainID: 11155111,
		RPCPort: 8545,
	}

	MainNet = NetworkConfig{
		Name:    "mainnet",
		ChainID: 1,
		RPCPort: 8545,
	}
)

// GetNetwork returns the predefined network with the given case-insensitive name.
func GetNetwork(name string) (*NetworkConfig, error) {
	switch strings.ToLower(name) {
	case Localhost.Name:
		n := Localhost
		return &n, nil
	case Sepolia.Name:
		n := Sepolia
		return &n, nil
	case MainNet.Name:
		n := MainNet
		return &n, nil
	default:
		return nil, ErrInvalidNetwork
	}
}
