package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/automatizamg/seilist/internal/config"
)

//go:embed templates/seilist.yaml templates/env.example
var templates embed.FS

const (
	configTemplate = "templates/seilist.yaml"
	envTemplate    = "templates/env.example"

	// envExampleFile is the name of the generated dotenv template.
	envExampleFile = ".env.example"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create configuration templates",
		Long: `Init writes a commented .seilist.yaml configuration file and a .env.example
file listing the SEI_* variables. Copy .env.example to .env and fill in the
account credentials.

Examples:
  # Create .seilist.yaml and .env.example in the current directory
  seilist init

  # Create the config file at a specific path
  seilist init -o config/seilist.yaml

  # Force overwrite existing files
  seilist init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")
	cmd.Flags().Bool("no-env", false,
		"Do not write "+envExampleFile)

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	noEnv, err := cmd.Flags().GetBool("no-env")
	if err != nil {
		return err
	}

	files := []templateFile{{template: configTemplate, path: outputPath}}
	if !noEnv {
		files = append(files, templateFile{
			template: envTemplate,
			path:     filepath.Join(filepath.Dir(outputPath), envExampleFile),
		})
	}

	// Check every destination before writing anything.
	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", f.path)
			}
		}
	}

	for _, f := range files {
		if err := writeTemplate(f.template, f.path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", f.path)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nSet SEI_USER and SEI_PASS in the environment or in a .env file, then run:")
	fmt.Fprintln(cmd.OutOrStdout(), "  seilist list")
	return nil
}

// templateFile pairs an embedded template with its destination.
type templateFile struct {
	template string
	path     string
}

func writeTemplate(name, path string) error {
	content, err := templates.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
