package commands

import (
	"context"
	"fmt"
	"time"

	"burndown-gen/internal/burndown"
	"burndown-gen/internal/config"
	"burndown-gen/internal/github"
	"burndown-gen/internal/issue"
	"burndown-gen/internal/logging"
	"burndown-gen/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	offline   bool
	noBrowser bool
	output    string
	startFlag string
	endFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "burndown-gen",
	Short: "burndown-gen renders sprint burndown charts from a GitHub Projects board",
	Long: `Fetches project items from the GitHub Projects V2 GraphQL API, maps them into
stories and tasks, and renders remaining-work-over-time charts under three
accounting policies (story percentage, task based, pipeline based).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("burndown-gen starting")
	},
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

		path, err := visuals.WriteHTML(report, cfg.OutputDir, output)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Burndown chart generated")

		if !noBrowser {
			if err := browser.OpenFile(path); err != nil {
				log.Warn().Err(err).Msg("Could not open the chart in a browser")
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "reuse the cached snapshot instead of fetching")
	rootCmd.PersistentFlags().StringVar(&startFlag, "start", "", "range start (YYYY-MM-DD, default 30 days ago)")
	rootCmd.PersistentFlags().StringVar(&endFlag, "end", "", "range end (YYYY-MM-DD, default today)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "sprint_burndown.html", "output file name")
	rootCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the generated chart")
}

// loadGroups runs the shared ingestion path: fetch (or reload), map to the
// domain model, and group stories with their tasks.
func loadGroups(ctx context.Context) (map[string]*issue.StoryGroup, error) {
	items, err := fetchItems(ctx)
	if err != nil {
		return nil, err
	}

	mapped := issue.MapItems(items, cfg.Fields, cfg.Filters)
	groups := issue.MapStoriesToTasks(mapped)
	log.Info().Int("items", len(mapped)).Int("groups", len(groups)).Msg("Mapped project data")
	return groups, nil
}

// fetchItems fetches from the API, saving a snapshot on success. On fetch
// failure (or with --offline) it falls back to the last saved snapshot.
func fetchItems(ctx context.Context) ([]github.ProjectItemDTO, error) {
	if !offline {
		client := github.NewClient(cfg.GitHub)
		items, err := client.FetchProjectItems(ctx)
		if err == nil {
			if saveErr := github.SaveSnapshot(cfg.CacheDir, cfg.GitHub, items); saveErr != nil {
				log.Warn().Err(saveErr).Msg("Could not persist project snapshot")
			}
			return items, nil
		}
		log.Warn().Err(err).Msg("Fetch failed, trying cached snapshot")
	}

	snap, err := github.LoadSnapshot(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("no usable project data: %w", err)
	}
	return snap.Items, nil
}

func resolveRange() (time.Time, time.Time, error) {
	start, end := burndown.DefaultRange(time.Now())
	var err error
	if startFlag != "" {
		if start, err = burndown.ParseDay(startFlag); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if endFlag != "" {
		if end, err = burndown.ParseDay(endFlag); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	return start, end, nil
}

// buildReport computes every sprint's series under all three algorithms so
// the chart page can switch selections without recomputation.
func buildReport(ctx context.Context, groups map[string]*issue.StoryGroup, start, end time.Time) (visuals.Report, error) {
	dates := burndown.DateRange(start, end)
	sprints := burndown.ListSprints(groups, cfg.DefaultSprint)

	series := make(map[string]map[string][]burndown.Point, len(sprints))
	for _, sprint := range sprints {
		all, err := burndown.CalculateAll(ctx, groups, dates, sprint, cfg.Pipeline)
		if err != nil {
			return visuals.Report{}, err
		}
		perSprint := make(map[string][]burndown.Point, len(all))
		for alg, points := range all {
			perSprint[alg.String()] = points
		}
		series[sprint] = perSprint
	}

	return visuals.Report{
		Title:    "Sprint Burndown",
		Sprints:  sprints,
		Selected: sprints[0],
		Series:   series,
	}, nil
}
