package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/render"
	"github.com/debemdeboas/campaign-editor/internal/repository"
)

const timeLayout = "2006-01-02 15:04"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored campaigns, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, closeRepo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			campaigns, err := repo.ListCampaigns(cmd.Context())
			if err != nil {
				return err
			}
			printCampaignList(cmd.OutOrStdout(), campaigns)
			return nil
		},
	}
}

func printCampaignList(w io.Writer, campaigns []model.CampaignSummary) {
	if len(campaigns) == 0 {
		fmt.Fprintln(w, "No campaigns stored.")
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d campaigns", len(campaigns))))
	for _, c := range campaigns {
		fmt.Fprintf(w, "%s  %-8s  %s  %s\n",
			idStyle.Render(string(c.ID)),
			c.Type,
			labelStyle.Render(c.ModifiedDate.Format(timeLayout)),
			c.Name,
		)
	}
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <campaign-id>",
		Short: "Show a stored campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, closeRepo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			stored, err := repo.GetContent(cmd.Context(), model.CampaignID(args[0]))
			if err != nil {
				return err
			}

			withMarkup, _ := cmd.Flags().GetBool("markup")
			printCampaign(cmd.OutOrStdout(), stored, withMarkup)
			return nil
		},
	}
	cmd.Flags().Bool("markup", false, "Print the stored HTML markup")
	return cmd
}

func printCampaign(w io.Writer, stored *model.StoredCampaign, withMarkup bool) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}

	fmt.Fprintln(w, titleStyle.Render(stored.GetTitle()))
	field("ID", idStyle.Render(string(stored.ID)))
	field("Created", stored.CreatedDate.Format(timeLayout))
	field("Modified", stored.ModifiedDate.Format(timeLayout))
	field("Hash", stored.ContentHash)

	if stored.Content == nil {
		return
	}
	field("Type", string(stored.Content.Type()))
	if p := stored.Content.Preview(); p != "" {
		field("Preview", p)
	}
	if d := model.DesignOf(stored.Content); d != nil {
		field("Design", fmt.Sprintf("%d bytes", len(d)))
	}
	field("Markup", fmt.Sprintf("%d bytes", len(stored.Content.HTML())))

	if withMarkup {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(stored.Content.HTML(), "\n"))
	}
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import .html and .md campaigns from a directory",
		Long: `Import every .html and .md file of a directory as a campaign.

Markdown is rendered to HTML. Metadata (id, name, preview_image, date) is read
from %%% TOML front matter and from an optional <name>.toml sidecar file. A
<name>.design.json file is stored as the campaign's design.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, repo, closeRepo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			style, _ := cmd.Flags().GetString("style")
			if style == "" {
				style = cfg.Render.SourceStyle
			}
			if !render.IsStyle(style) {
				return fmt.Errorf("unknown style %q", style)
			}

			imported, err := repository.ImportCampaignDir(cmd.Context(), repo, args[0], style)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range imported {
				fmt.Fprintf(out, "%s %s\n", idStyle.Render(string(c.ID)), c.Path)
			}
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Imported %d campaigns", len(imported))))
			return nil
		},
	}
	cmd.Flags().String("style", "", "Code highlighting style for markdown campaigns (defaults to render.source_style)")
	return cmd
}
