package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract is a compiled contract found in the artifacts directory
type Contract struct {
	Name         string    `json:"name"`
	ArtifactPath string    `json:"artifactPath,omitempty"`
	Artifact     *Artifact `json:"artifact,omitempty"`
}

// BytecodeObject represents bytecode in an artifact. Foundry writes an object
// with the hex under "object"; hardhat writes the hex string directly.
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap,omitempty"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Object)
	}
	type plain BytecodeObject
	return json.Unmarshal(data, (*plain)(b))
}

// Bytes decodes the bytecode hex.
func (b BytecodeObject) Bytes() ([]byte, error) {
	obj := strings.TrimSpace(b.Object)
	if obj == "" || obj == "0x" {
		return nil, fmt.Errorf("bytecode is empty")
	}
	if !strings.HasPrefix(obj, "0x") {
		obj = "0x" + obj
	}
	if strings.Contains(obj, "__") {
		return nil, fmt.Errorf("bytecode has unlinked libraries")
	}
	return hexutil.Decode(obj)
}

// Artifact represents a compilation artifact from foundry-zksync or hardhat-zksync
type Artifact struct {
	ContractName     string          `json:"contractName,omitempty"`
	SourceName       string          `json:"sourceName,omitempty"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         BytecodeObject  `json:"bytecode"`
	DeployedBytecode BytecodeObject  `json:"deployedBytecode"`
	// FactoryDeps maps bytecode hashes to the contracts this one can deploy.
	FactoryDeps map[string]string `json:"factoryDeps,omitempty"`
}
