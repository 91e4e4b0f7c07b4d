package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/campaign-editor/internal/config"
	"github.com/debemdeboas/campaign-editor/internal/repository"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campaignctl",
		Short:         "Manage stored email campaigns",
		Long:          `campaignctl lists, shows and imports campaigns in the editor's configured storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", config.ConfigPath(), "Path to the configuration file")

	root.AddCommand(
		newGenerateConfigCmd(),
		newListCmd(),
		newShowCmd(),
		newImportCmd(),
	)
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(path)
}

// openRepository opens the configured storage. The caller must call the
// returned close func.
func openRepository(cmd *cobra.Command) (*config.Config, repository.CampaignRepository, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	repo, closeRepo, err := repository.Open(cfg.Storage, config.SecretsFromEnv().RedisPassword)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, repo, closeRepo, nil
}
