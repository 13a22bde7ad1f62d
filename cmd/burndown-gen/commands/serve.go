package commands

import (
	"burndown-gen/internal/visuals"
	"burndown-gen/internal/web"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the burndown chart and a JSON API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := loadGroups(cmd.Context())
		if err != nil {
			return err
		}

		start, end, err := resolveRange()
		if err != nil {
			return err
		}

		report, err := buildReport(cmd.Context(), groups, start, end)
		if err != nil {
			return err
		}

		html, err := visuals.RenderHTML(report)
		if err != nil {
			return err
		}

		server := web.NewServer(groups, cfg.Pipeline, cfg.DefaultSprint, html)
		return server.Run(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
