package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/strainkit/strainkit/internal/config"
)

//go:embed templates
var configTemplates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold the configs directory and a build profile",
		Long: `Init creates the files a build expects to find before its first run:

  configs/auspice_config.json   auspice export configuration
  configs/colors.tsv            metadata value color table
  configs/lat_longs.tsv         location coordinate table
  .strainkit                    build profile for this project

The generated files carry commented examples and are meant to be edited
for the organism under analysis before building.

Examples:
  # Scaffold into the current directory
  strainkit init

  # Scaffold the config tables into a custom directory
  strainkit init -c myconfigs

  # Overwrite existing files
  strainkit init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("configs", "c", config.DefaultConfigsDir,
		"Directory to scaffold the Nextstrain configs into")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	configsDir, err := cmd.Flags().GetString("configs")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	targets := []struct {
		template string
		dest     string
	}{
		{"templates/auspice_config.json", filepath.Join(configsDir, "auspice_config.json")},
		{"templates/colors.tsv", filepath.Join(configsDir, "colors.tsv")},
		{"templates/lat_longs.tsv", filepath.Join(configsDir, "lat_longs.tsv")},
		{"templates/profile.yaml", config.DefaultProfileFile},
	}

	// Refuse before writing anything so a half-scaffolded directory never
	// results from an existing-file collision.
	if !force {
		for _, target := range targets {
			if _, err := os.Stat(target.dest); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", target.dest)
			}
		}
	}

	if err := os.MkdirAll(configsDir, 0750); err != nil {
		return fmt.Errorf("failed to create configs directory: %w", err)
	}

	for _, target := range targets {
		content, err := configTemplates.ReadFile(target.template)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", target.template, err)
		}

		if err := os.WriteFile(target.dest, content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", target.dest, err)
		}

		fmt.Printf("Created %s\n", target.dest)
	}

	fmt.Println("\nEdit these files for the organism under analysis:")
	fmt.Println("  - Pin the sequence, reference, and metadata paths in .strainkit")
	fmt.Println("  - Adjust colorings and geo resolutions in auspice_config.json")
	fmt.Println("  - Extend the color and lat/long tables with your metadata values")

	return nil
}
