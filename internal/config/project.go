package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
)

// ErrProjectConfig wraps problems in aadeploy.toml
var ErrProjectConfig = errors.New("invalid " + ProjectFile)

const (
	defaultArtifactsDir    = "zkout"
	defaultFactoryContract = "AAFactory"
	defaultAccountContract = "MultiUserMultisig"
)

// LoadProjectConfig loads .env files and aadeploy.toml from projectRoot. A
// missing project file yields the defaults; source is then empty.
func LoadProjectConfig(projectRoot string) (cfg *config.ProjectConfig, source string, err error) {
	loadEnvFiles(projectRoot)

	cfg = &config.ProjectConfig{}
	path := filepath.Join(projectRoot, ProjectFile)
	if _, statErr := os.Stat(path); statErr == nil {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrProjectConfig, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, "", fmt.Errorf("%w: unknown key %s", ErrProjectConfig, undecoded[0])
		}
		source = path
	}

	expand(cfg)
	applyDefaults(cfg)
	return cfg, source, nil
}

// loadEnvFiles loads .env then .env.local. Variables already set in the
// environment win.
func loadEnvFiles(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
		}
	}
}

func expand(cfg *config.ProjectConfig) {
	for name, network := range cfg.Networks {
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.ExplorerURL = os.ExpandEnv(network.ExplorerURL)
		cfg.Networks[name] = network
	}
	cfg.Artifacts.Dir = os.ExpandEnv(cfg.Artifacts.Dir)
	cfg.Deploy.FactoryAddress = os.ExpandEnv(cfg.Deploy.FactoryAddress)
	cfg.Deploy.FactorySalt = os.ExpandEnv(cfg.Deploy.FactorySalt)
	cfg.Deploy.FundingAmount = os.ExpandEnv(cfg.Deploy.FundingAmount)
}

func applyDefaults(cfg *config.ProjectConfig) {
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = defaultArtifactsDir
	}
	if cfg.Artifacts.Factory == "" {
		cfg.Artifacts.Factory = defaultFactoryContract
	}
	if cfg.Artifacts.Account == "" {
		cfg.Artifacts.Account = defaultAccountContract
	}
}
