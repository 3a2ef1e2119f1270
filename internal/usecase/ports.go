package usecase

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

// CallRequest describes a call or a transaction to estimate. Meta is set for
// EIP-712 transactions so the node estimates with factory deps and the
// pubdata limit in place.
type CallRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
	Meta  *zksync.Meta
}

// Network is the zkSync node the deployment talks to
type Network interface {
	ChainID(ctx context.Context) (*big.Int, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, req CallRequest) (uint64, error)
	NonceAt(ctx context.Context, account common.Address) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
	Call(ctx context.Context, req CallRequest) ([]byte, error)
	// SendRawTransaction submits a serialized transaction. Refusals are
	// returned as *domain.NetworkRejectionError.
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	// WaitForReceipt blocks until the transaction is included or ctx is done.
	WaitForReceipt(ctx context.Context, hash common.Hash) (*models.Receipt, error)
}

// ArtifactLoader supplies compiled contracts by name
type ArtifactLoader interface {
	Load(ctx context.Context, name string) (*models.Contract, error)
}

// DeploymentStore persists deployment records so interrupted runs can resume
type DeploymentStore interface {
	Load(ctx context.Context, name string) (*models.AccountDeployment, error)
	Save(ctx context.Context, deployment *models.AccountDeployment) error
	List(ctx context.Context) ([]*models.AccountDeployment, error)
	Delete(ctx context.Context, name string) error
}

// SignerProvider resolves the keys used by the deployment
type SignerProvider interface {
	// Deployer signs the factory, account and funding transactions.
	Deployer() (zksync.Signer, error)
	// Owner signs transactions sent from the deployed account.
	Owner() (zksync.Signer, error)
}

// InteractiveSelector asks the user to choose when input is ambiguous
type InteractiveSelector interface {
	SelectDeployment(ctx context.Context, deployments []*models.AccountDeployment, prompt string) (*models.AccountDeployment, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
	// Done marks the last event of an operation.
	Done     bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// NodeManager runs local zkSync nodes for development
type NodeManager interface {
	Start(ctx context.Context, node *domain.LocalNode) error
	Stop(ctx context.Context, node *domain.LocalNode) error
	GetStatus(ctx context.Context, node *domain.LocalNode) (*domain.NodeStatus, error)
	StreamLogs(ctx context.Context, node *domain.LocalNode, w io.Writer) error
}
