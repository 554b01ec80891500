// Package envselect resolves which Controle environment a command targets.
package envselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/controle-pgm/controle/internal/cli/config"
	"github.com/controle-pgm/controle/internal/cli/userconfig"
)

// ResolveEnvironment determines which environment to use:
//  1. the --env flag when provided
//  2. the environment selected previously with 'controle select-env'
//  3. the only environment when exactly one is configured
//  4. an interactive prompt otherwise
func ResolveEnvironment(projectConfig *config.Config, envAlias string) (*config.Environment, error) {
	if envAlias != "" {
		return projectConfig.GetEnvironmentByAlias(envAlias)
	}

	selected, err := userconfig.GetSelectedEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if selected != "" {
		env, err := projectConfig.GetEnvironmentByAlias(selected)
		if err != nil {
			// Selected environment no longer exists, clear it and continue.
			_ = userconfig.SetSelectedEnvironment("")
		} else {
			return env, nil
		}
	}

	if len(projectConfig.Environments) == 1 {
		env := &projectConfig.Environments[0]
		if err := userconfig.SetSelectedEnvironment(env.Alias); err != nil {
			fmt.Printf("Warning: failed to save selected environment: %v\n", err)
		}
		return env, nil
	}

	env, err := PromptEnvironmentSelection(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SetSelectedEnvironment(env.Alias); err != nil {
		fmt.Printf("Warning: failed to save selected environment: %v\n", err)
	}
	return env, nil
}

// PromptEnvironmentSelection shows an interactive environment picker.
func PromptEnvironmentSelection(projectConfig *config.Config) (*config.Environment, error) {
	type option struct {
		Label       string
		Environment *config.Environment
	}

	options := make([]option, len(projectConfig.Environments))
	for i := range projectConfig.Environments {
		env := &projectConfig.Environments[i]
		options[i] = option{
			Label:       fmt.Sprintf("%s (%s)", env.Alias, env.URL),
			Environment: env,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an environment",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("environment selection cancelled: %w", err)
	}

	return options[index].Environment, nil
}
