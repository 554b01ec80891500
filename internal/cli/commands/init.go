package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/controle-pgm/controle/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init <server-url>",
		Short: "Create or extend the project configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0], alias)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "default", "Alias for the environment")

	return cmd
}

func runInit(serverURL, alias string) error {
	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Printf("Found existing %s\n", config.ConfigFileName)
	} else {
		cfg = &config.Config{}
		isNewConfig = true
	}

	for _, env := range cfg.Environments {
		if env.URL == serverURL {
			fmt.Printf("Environment %s (%s) is already configured\n", env.Alias, env.URL)
			return nil
		}
		if env.Alias == alias {
			return fmt.Errorf("alias '%s' is already used by %s, pick another with --alias", alias, env.URL)
		}
	}

	cfg.Environments = append(cfg.Environments, config.Environment{Alias: alias, URL: serverURL})

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Printf("✓ Created %s\n", config.ConfigFileName)
	} else {
		fmt.Printf("✓ Updated %s\n", config.ConfigFileName)
	}
	fmt.Printf("  Environment: %s (%s)\n", alias, serverURL)
	fmt.Println("\nNext: controle login")
	return nil
}
