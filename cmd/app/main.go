package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/newsledger/internal"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/newsservice"
	"github.com/starford/newsledger/internal/render"
	pkgconfig "github.com/starford/newsledger/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.Root().String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOrDefault(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version),
	)
}

// openService loads the configured datasets for a one-shot command. Logs,
// including per-operation timings, go to stderr; results go to stdout.
func openService(ctx context.Context, cmd *cli.Command) (*newsservice.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level := cfg.App.LogLevel
	if cmd.Root().Bool("quiet") {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return internal.OpenService(ctx, internal.WithConfig(cfg), internal.WithLogger(logger))
}

// selector resolves the --dataset flag before any data is loaded.
func selector(cmd *cli.Command) (dataset.ID, error) {
	return dataset.ParseID(cmd.String("dataset"))
}

func datasetFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "dataset",
		Aliases: []string{"d"},
		Usage:   "Dataset: true, fake or combined (1, 2, 3)",
		Value:   value,
	}
}

func display(ctx context.Context, cmd *cli.Command) error {
	id, err := selector(cmd)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("sorted") {
		if _, err := svc.Sort(ctx, id); err != nil {
			return err
		}
	}
	page, err := svc.Display(ctx, id, int(cmd.Int("offset")), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if page.Empty {
		_, err := fmt.Fprintf(os.Stdout, "Dataset %s is empty.\n", id)
		return err
	}
	return render.Records(os.Stdout, page.Records)
}

func count(ctx context.Context, cmd *cli.Command) error {
	ids, err := dataset.ParseIDs(cmd.String("dataset"))
	if err != nil {
		return err
	}
	svc, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := svc.CountAll(ctx, ids)
	if err != nil {
		return err
	}
	return printCount(os.Stdout, ids, res)
}

func printCount(w io.Writer, ids []dataset.ID, res *newsservice.CountResult) error {
	if len(ids) == 1 {
		_, err := fmt.Fprintf(w, "Total articles in %s: %d\n", ids[0], res.Total)
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "Articles in %s: %d\n", id, res.Counts[id]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total articles in %s: %d\n", dataset.Both, res.Total)
	return err
}

func search(ctx context.Context, cmd *cli.Command) error {
	id, err := selector(cmd)
	if err != nil {
		return err
	}
	bySubject, byYear := cmd.IsSet("subject"), cmd.IsSet("year")
	if bySubject == byYear {
		return fmt.Errorf("exactly one of --subject or --year is required")
	}
	svc, err := openService(ctx, cmd)
	if err != nil {
		return err
	}

	var res *newsservice.SearchResult
	if bySubject {
		res, err = svc.SearchBySubject(ctx, id, cmd.String("subject"))
	} else {
		res, err = svc.SearchByYear(ctx, id, int(cmd.Int("year")))
	}
	if err != nil {
		return err
	}
	return printSearch(os.Stdout, res)
}

func printSearch(w io.Writer, res *newsservice.SearchResult) error {
	if !res.Found {
		_, err := fmt.Fprintln(w, "No matching articles found.")
		return err
	}
	if err := render.Records(w, res.Records); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d matching articles\n", len(res.Records))
	return err
}

func report(ctx context.Context, cmd *cli.Command) error {
	id, err := selector(cmd)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	rep, err := svc.MonthlyReport(ctx, id, int(cmd.Int("year")))
	if err != nil {
		return err
	}
	return render.Report(os.Stdout, *rep)
}

func main() {
	cmd := &cli.Command{
		Name:    "newsledger",
		Usage:   "Load, sort, search and report on true and fake news article datasets",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log warnings and errors in one-shot commands",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and live updates",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:   "display",
				Usage:  "Print the articles of a dataset",
				Action: display,
				Flags: []cli.Flag{
					datasetFlag("true"),
					&cli.BoolFlag{Name: "sorted", Aliases: []string{"s"}, Usage: "Sort by date before printing"},
					&cli.IntFlag{Name: "offset", Usage: "Articles to skip"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum articles to print (0 = all)"},
				},
			},
			{
				Name:   "count",
				Usage:  "Count the articles of a dataset",
				Action: count,
				Flags: []cli.Flag{&cli.StringFlag{
					Name:    "dataset",
					Aliases: []string{"d"},
					Usage:   "Dataset: true, fake, combined (1, 2, 3) or both for true plus fake",
					Value:   "combined",
				}},
			},
			{
				Name:   "search",
				Usage:  "Find articles by exact subject or by year",
				Action: search,
				Flags: []cli.Flag{
					datasetFlag("combined"),
					&cli.StringFlag{Name: "subject", Usage: "Exact, case-sensitive subject"},
					&cli.IntFlag{Name: "year", Usage: "Four-digit year"},
				},
			},
			{
				Name:   "report",
				Usage:  "Print the monthly share of keyword-tagged articles",
				Action: report,
				Flags: []cli.Flag{
					datasetFlag("fake"),
					&cli.IntFlag{Name: "year", Usage: "Report year (default from config)"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
