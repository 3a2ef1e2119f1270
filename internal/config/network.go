package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
)

// builtinNetworks are known without any project configuration
var builtinNetworks = map[string]config.Network{
	"zksync-era": {
		Name:        "zksync-era",
		ChainID:     324,
		RPCURL:      "https://mainnet.era.zksync.io",
		ExplorerURL: "https://explorer.zksync.io",
	},
	"zksync-sepolia": {
		Name:        "zksync-sepolia",
		ChainID:     300,
		RPCURL:      "https://sepolia.era.zksync.dev",
		ExplorerURL: "https://sepolia.explorer.zksync.io",
	},
	"in-memory": {
		Name:    "in-memory",
		ChainID: 260,
		RPCURL:  "http://127.0.0.1:8011",
	},
	"local": {
		Name:    "local",
		ChainID: 270,
		RPCURL:  "http://localhost:3050",
	},
}

// UnknownNetworkError is returned for network names that are neither configured
// nor built in
type UnknownNetworkError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownNetworkError) Error() string {
	msg := fmt.Sprintf("unknown network %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", strings.Join(e.Suggestions, " or "))
	}
	return msg
}

// ResolveNetwork picks the network for name from the project file, then the
// built-in table. A bare rpcURL without a name describes an ad-hoc network
// whose chain ID is taken from the node. A name may also be a chain ID.
func ResolveNetwork(project *config.ProjectConfig, name, rpcURL string) (*config.Network, error) {
	if name == "" && rpcURL == "" {
		return nil, nil
	}

	if name == "" {
		if _, err := url.ParseRequestURI(rpcURL); err != nil {
			return nil, fmt.Errorf("invalid rpc url %q: %w", rpcURL, err)
		}
		return &config.Network{Name: "custom", RPCURL: rpcURL}, nil
	}

	network, err := lookupNetwork(project, name)
	if err != nil {
		return nil, err
	}
	if rpcURL != "" {
		network.RPCURL = rpcURL
	}
	if network.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no rpc_url", network.Name)
	}
	return network, nil
}

func lookupNetwork(project *config.ProjectConfig, name string) (*config.Network, error) {
	if project != nil {
		if nc, ok := project.Networks[name]; ok {
			network := &config.Network{
				Name:        name,
				ChainID:     nc.ChainID,
				RPCURL:      nc.RPCURL,
				ExplorerURL: nc.ExplorerURL,
			}
			// Fill the blanks of a configured built-in network
			if builtin, ok := builtinNetworks[name]; ok {
				if network.ChainID == 0 {
					network.ChainID = builtin.ChainID
				}
				if network.ExplorerURL == "" {
					network.ExplorerURL = builtin.ExplorerURL
				}
			}
			return network, nil
		}
	}

	if builtin, ok := builtinNetworks[name]; ok {
		network := builtin
		return &network, nil
	}

	if chainID, err := strconv.ParseUint(name, 10, 64); err == nil {
		for _, candidate := range NetworkNames(project) {
			network, _ := lookupNetwork(project, candidate)
			if network != nil && network.ChainID == chainID {
				return network, nil
			}
		}
	}

	return nil, &UnknownNetworkError{Name: name, Suggestions: suggestNetworks(project, name)}
}

// NetworkNames lists the configured and built-in network names, sorted
func NetworkNames(project *config.ProjectConfig) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if project != nil {
		for name := range project.Networks {
			add(name)
		}
	}
	for name := range builtinNetworks {
		add(name)
	}
	sort.Strings(names)
	return names
}

func suggestNetworks(project *config.ProjectConfig, name string) []string {
	names := NetworkNames(project)
	matches := fuzzy.Find(strings.ToLower(name), names)

	var suggestions []string
	for i, match := range matches {
		if i == 3 {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}
