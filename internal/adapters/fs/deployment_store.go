package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// DeploymentStore keeps one JSON file per deployment under <data dir>/deployments
type DeploymentStore struct {
	dir string
}

// NewDeploymentStore creates a new DeploymentStore
func NewDeploymentStore(cfg *config.RuntimeConfig) *DeploymentStore {
	return &DeploymentStore{
		dir: filepath.Join(cfg.DataDir, "deployments"),
	}
}

func (s *DeploymentStore) path(name string) (string, error) {
	if !validName.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: invalid deployment name %q", domain.ErrInputValidation, name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Load reads a deployment record. Returns domain.ErrNotFound when there is none.
func (s *DeploymentStore) Load(_ context.Context, name string) (*models.AccountDeployment, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return readDeployment(path)
}

// Save writes the record through a temporary file so an interrupted write
// never leaves a truncated record behind.
func (s *DeploymentStore) Save(_ context.Context, deployment *models.AccountDeployment) error {
	path, err := s.path(deployment.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create deployments directory: %w", err)
	}

	data, err := json.MarshalIndent(deployment, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployment: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write deployment file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write deployment file: %w", err)
	}
	return nil
}

// List returns every stored deployment
func (s *DeploymentStore) List(_ context.Context) ([]*models.AccountDeployment, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read deployments directory: %w", err)
	}

	var deployments []*models.AccountDeployment
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		d, err := readDeployment(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		deployments = append(deployments, d)
	}
	return deployments, nil
}

// Delete removes a deployment record
func (s *DeploymentStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: deployment %s", domain.ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete deployment file: %w", err)
	}
	return nil
}

func readDeployment(path string) (*models.AccountDeployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read deployment file: %w", err)
	}

	var d models.AccountDeployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse deployment file %s: %w", path, err)
	}
	return &d, nil
}

var _ usecase.DeploymentStore = (*DeploymentStore)(nil)
