// Package zksync builds, hashes, signs and encodes zkSync Era EIP-712
// transactions, and derives the addresses the ContractDeployer assigns.
package zksync
