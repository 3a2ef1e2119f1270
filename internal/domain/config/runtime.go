package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	Network *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration
	PollInterval   time.Duration

	// Secrets, hex encoded. OwnerKey falls back to DeployerKey.
	DeployerKey string
	OwnerKey    string

	Artifacts ArtifactsConfig
	Deploy    DeployConfig

	// Config source tracking
	ConfigSource string // path of aadeploy.toml, empty when running on defaults
}

// Network represents network configuration
type Network struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// IsLocal reports whether the network is a local development node.
func (n *Network) IsLocal() bool {
	return n != nil && (n.ChainID == 260 || n.ChainID == 270)
}
