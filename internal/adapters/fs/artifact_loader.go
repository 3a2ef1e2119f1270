package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// ArtifactLoader finds compiled contracts under the artifacts directory. Both
// foundry-zksync (zkout/<File>.sol/<Name>.json) and hardhat-zksync
// (artifacts-zk/contracts/<File>.sol/<Name>.json) layouts are supported.
//
// Names may be qualified as "<File>.sol:<Name>" when a contract name is
// defined in more than one source file.
type ArtifactLoader struct {
	dir string
	log *slog.Logger

	mu    sync.Mutex
	index map[string][]string
}

// NewArtifactLoader creates a loader rooted at the configured artifacts directory
func NewArtifactLoader(cfg *config.RuntimeConfig, log *slog.Logger) *ArtifactLoader {
	dir := cfg.Artifacts.Dir
	if dir == "" {
		dir = "zkout"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return &ArtifactLoader{dir: dir, log: log}
}

// Load reads the artifact for name
func (l *ArtifactLoader) Load(_ context.Context, name string) (*models.Contract, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: contract name is empty", domain.ErrInputValidation)
	}
	if err := l.buildIndex(); err != nil {
		return nil, err
	}

	source, contract := splitQualified(name)
	var matches []string
	for _, path := range l.index[contract] {
		if source == "" || filepath.Base(filepath.Dir(path)) == source {
			matches = append(matches, path)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no artifact for %s under %s", domain.ErrNotFound, name, l.dir)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s is ambiguous, qualify it as one of: %s",
			domain.ErrInputValidation, name, strings.Join(qualifiedNames(matches, contract), ", "))
	}

	artifact, err := readArtifact(matches[0])
	if err != nil {
		return nil, err
	}
	if _, err := artifact.Bytecode.Bytes(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInputValidation, matches[0], err)
	}

	l.log.Debug("loaded artifact", "contract", name, "path", matches[0])
	return &models.Contract{
		Name:         contract,
		ArtifactPath: matches[0],
		Artifact:     artifact,
	}, nil
}

func (l *ArtifactLoader) buildIndex() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index != nil {
		return nil
	}

	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		return fmt.Errorf("%w: artifacts directory %s does not exist, compile the contracts first",
			domain.ErrNotFound, l.dir)
	}

	index := make(map[string][]string)
	err := filepath.WalkDir(l.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		// Hardhat writes debug metadata next to each artifact
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), ".json")
		index[name] = append(index[name], path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan artifacts: %w", err)
	}

	for name := range index {
		sort.Strings(index[name])
	}
	l.index = index
	return nil
}

func readArtifact(path string) (*models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return &artifact, nil
}

func splitQualified(name string) (source, contract string) {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func qualifiedNames(paths []string, contract string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = filepath.Base(filepath.Dir(path)) + ":" + contract
	}
	return out
}

var _ usecase.ArtifactLoader = (*ArtifactLoader)(nil)
