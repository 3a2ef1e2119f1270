package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/aadeploy/internal/adapters/fs"
	"github.com/trebuchet-org/aadeploy/internal/adapters/interactive"
	"github.com/trebuchet-org/aadeploy/internal/adapters/node"
	"github.com/trebuchet-org/aadeploy/internal/adapters/progress"
	"github.com/trebuchet-org/aadeploy/internal/adapters/rpc"
	"github.com/trebuchet-org/aadeploy/internal/adapters/senders"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// ProvideProgressSink picks the spinner for terminals and stays silent when
// the output has to be machine readable.
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		return progress.NewNopSink()
	}
	return progress.NewSpinnerProgressReporter()
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewDeploymentStore,
	wire.Bind(new(usecase.DeploymentStore), new(*fs.DeploymentStore)),

	fs.NewArtifactLoader,
	wire.Bind(new(usecase.ArtifactLoader), new(*fs.ArtifactLoader)),
)

// NetworkSet provides the JSON-RPC network client
var NetworkSet = wire.NewSet(
	rpc.ProvideClient,
	wire.Bind(new(usecase.Network), new(*rpc.Client)),
)

// SignerSet provides key-backed signers
var SignerSet = wire.NewSet(
	senders.NewService,
	wire.Bind(new(usecase.SignerProvider), new(*senders.Service)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),
)

// NodeSet provides the local node manager
var NodeSet = wire.NewSet(
	node.NewManager,
	wire.Bind(new(usecase.NodeManager), new(*node.Manager)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideProgressSink,

	FSSet,
	NetworkSet,
	SignerSet,
	InteractiveSet,
	NodeSet,
)
