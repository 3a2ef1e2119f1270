package domain

// LocalNode is a local zkSync node (anvil-zksync) managed by aadeploy
type LocalNode struct {
	Name    string `json:"name"`
	Port    string `json:"port"`
	ChainID string `json:"chainId,omitempty"`
	ForkURL string `json:"forkUrl,omitempty"`
	PidFile string `json:"pidFile"`
	LogFile string `json:"logFile"`
}

// NodeStatus is the observed state of a local node
type NodeStatus struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	RPCURL     string `json:"rpcUrl,omitempty"`
	LogFile    string `json:"logFile"`
	RPCHealthy bool   `json:"rpcHealthy"`
	ChainID    uint64 `json:"chainId,omitempty"`
	Error      string `json:"error,omitempty"`
}
