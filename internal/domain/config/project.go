package config

// ProjectConfig is the content of aadeploy.toml
type ProjectConfig struct {
	Networks  map[string]NetworkConfig `toml:"networks"`
	Artifacts ArtifactsConfig          `toml:"artifacts"`
	Deploy    DeployConfig             `toml:"deploy"`
}

// NetworkConfig is a [networks.<name>] table
type NetworkConfig struct {
	RPCURL      string `toml:"rpc_url"`
	ChainID     uint64 `toml:"chain_id"`
	ExplorerURL string `toml:"explorer_url"`
}

// ArtifactsConfig locates the compiled factory and account contracts
type ArtifactsConfig struct {
	Dir     string `toml:"dir"`
	Factory string `toml:"factory"`
	Account string `toml:"account"`
}

// DeployConfig holds deployment defaults
type DeployConfig struct {
	// FactoryAddress reuses an already deployed factory instead of deploying one.
	FactoryAddress string `toml:"factory_address"`
	FactorySalt    string `toml:"factory_salt"`
	GasPerPubdata  uint64 `toml:"gas_per_pubdata"`
	FundingAmount  string `toml:"funding_amount"`
}
