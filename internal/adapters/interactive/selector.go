package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectDeployment selects a deployment from a list
func (s *SelectorAdapter) SelectDeployment(_ context.Context, deployments []*models.AccountDeployment, prompt string) (*models.AccountDeployment, error) {
	if len(deployments) == 0 {
		return nil, fmt.Errorf("%w: no deployments to select from", domain.ErrNotFound)
	}
	if len(deployments) == 1 {
		return deployments[0], nil
	}
	if s.config.NonInteractive {
		names := make([]string, len(deployments))
		for i, d := range deployments {
			names[i] = d.Name
		}
		return nil, fmt.Errorf("%w: several deployments recorded, pass one of: %s",
			domain.ErrInputValidation, strings.Join(names, ", "))
	}

	options := formatDeploymentOptions(deployments)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return deployments[index], nil
}

// Confirm asks a yes/no question. Non-interactive runs answer yes.
func (s *SelectorAdapter) Confirm(_ context.Context, prompt string) (bool, error) {
	if s.config.NonInteractive {
		return true, nil
	}

	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// formatDeploymentOptions creates display strings for deployment selection
func formatDeploymentOptions(deployments []*models.AccountDeployment) []string {
	options := make([]string, len(deployments))
	for i, d := range deployments {
		name := color.New(color.FgWhite, color.Bold).Sprint(d.Name)
		chain := color.New(color.FgBlue).Sprintf("chain %d", d.ChainID)

		stateColor := color.New(color.FgYellow)
		if d.State.IsTerminal() {
			stateColor = color.New(color.FgGreen)
		}
		options[i] = fmt.Sprintf("%s (%s) %s", name, chain, stateColor.Sprint(d.State))
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.InteractiveSelector = (*SelectorAdapter)(nil)
