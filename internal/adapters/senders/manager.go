package senders

import (
	"fmt"
	"sync"

	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

// Service resolves the deployer and owner signers from the runtime config.
// Keys are parsed on first use so commands that never sign do not need them.
type Service struct {
	deployerKey string
	ownerKey    string

	mu       sync.Mutex
	deployer zksync.Signer
	owner    zksync.Signer
}

// NewService creates a new sender service
func NewService(cfg *config.RuntimeConfig) *Service {
	return &Service{
		deployerKey: cfg.DeployerKey,
		ownerKey:    cfg.OwnerKey,
	}
}

// Deployer returns the signer for PRIVATE_KEY
func (s *Service) Deployer() (zksync.Signer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deployer == nil {
		signer, err := parseSigner("deployer", s.deployerKey, "PRIVATE_KEY")
		if err != nil {
			return nil, err
		}
		s.deployer = signer
	}
	return s.deployer, nil
}

// Owner returns the signer for OWNER_PRIVATE_KEY, falling back to the
// deployer key when no separate owner key is configured.
func (s *Service) Owner() (zksync.Signer, error) {
	if s.ownerKey == "" {
		return s.Deployer()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == nil {
		signer, err := parseSigner("owner", s.ownerKey, "OWNER_PRIVATE_KEY")
		if err != nil {
			return nil, err
		}
		s.owner = signer
	}
	return s.owner, nil
}

func parseSigner(role, key, envVar string) (zksync.Signer, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: %s key is not set, export %s or add it to .env",
			domain.ErrInputValidation, role, envVar)
	}
	signer, err := zksync.NewPrivateKeySignerFromHex(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s key: %w", domain.ErrInputValidation, role, err)
	}
	return signer, nil
}

var _ usecase.SignerProvider = (*Service)(nil)
