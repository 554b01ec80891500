package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/cli/config"
	"github.com/controle-pgm/controle/internal/cli/envselect"
	"github.com/controle-pgm/controle/internal/cli/userconfig"
)

// NewSelectEnvCmd creates the select-env command
func NewSelectEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-env [alias]",
		Short: "Select the default environment for subsequent commands",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSelectEnv,
	}
}

func runSelectEnv(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'controle init' to create a configuration file", err)
	}

	var env *config.Environment
	if len(args) == 1 {
		env, err = cfg.GetEnvironmentByAlias(args[0])
	} else {
		env, err = envselect.PromptEnvironmentSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedEnvironment(env.Alias); err != nil {
		return fmt.Errorf("failed to save selected environment: %w", err)
	}

	fmt.Printf("✓ Selected environment: %s (%s)\n", env.Alias, env.URL)
	return nil
}
