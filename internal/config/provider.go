package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
)

// ProjectFile is the project configuration file name
const ProjectFile = "aadeploy.toml"

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		projectRoot = FindProjectRoot()
	}

	project, source, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".aadeploy"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		PollInterval:   v.GetDuration("poll_interval"),
		DeployerKey:    firstNonEmpty(v.GetString("private_key"), os.Getenv("PRIVATE_KEY")),
		OwnerKey:       firstNonEmpty(v.GetString("owner_private_key"), os.Getenv("OWNER_PRIVATE_KEY")),
		Artifacts:      project.Artifacts,
		Deploy:         project.Deploy,
		ConfigSource:   source,
	}
	if dataDir := v.GetString("data_dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if gas := v.GetUint64("gas_per_pubdata"); gas != 0 {
		cfg.Deploy.GasPerPubdata = gas
	}

	network, err := ResolveNetwork(project, v.GetString("network"), v.GetString("rpc_url"))
	if err != nil {
		return nil, err
	}
	cfg.Network = network

	return cfg, nil
}

// FindProjectRoot walks up from the current directory to find aadeploy.toml.
// Without one the current directory is the project root.
func FindProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance. Flags are bound by
// their names with dashes mapped to underscores.
func SetupViper(projectRoot string, flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("AADEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", 10*time.Minute)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("project_root", projectRoot)

	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
