package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/campaign-editor/internal/config"
)

const configHeader = "# Campaign Editor Configuration Example\n# Copy this file to config.yaml and customize as needed\n\n"

func newGenerateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-config [file|-]",
		Short: "Write an example configuration with every default filled in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := exampleConfig()
			if err != nil {
				return err
			}

			outputFile := "config.example.yaml"
			if len(args) > 0 {
				outputFile = args[0]
			}

			if outputFile == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), output)
				return err
			}

			if err := os.WriteFile(outputFile, []byte(output), 0o644); err != nil {
				return fmt.Errorf(config.ErrWriteConfigContentFmt, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated example config: %s\n", outputFile)
			return nil
		},
	}
}

func exampleConfig() (string, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("error generating YAML: %w", err)
	}
	return configHeader + string(yamlData), nil
}
