package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bopchat/internal/api"
	"bopchat/internal/auth"
	"bopchat/internal/chat"
	"bopchat/internal/config"
	"bopchat/internal/reviews"
	"bopchat/internal/telemetry"
	"bopchat/internal/ui"
)

func main() {
	var configPath string
	var themeFlag string
	var debug bool

	flag.StringVar(&configPath, "config", "", "Path to the TOML config file")
	flag.StringVar(&themeFlag, "theme", "", "Theme override (light|dark|auto)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if debug {
		cfg.Debug = true
	}
	switch themeFlag {
	case "":
	case "auto":
		cfg.Theme = ui.DetectMode()
	case "light", "dark":
		cfg.Theme = themeFlag
	default:
		fmt.Fprintf(os.Stderr, "Unknown theme %q (light|dark|auto)\n", themeFlag)
		os.Exit(1)
	}

	logger, err := telemetry.InitLogger(cfg.DataDir, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx, cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	db, err := telemetry.InitCacheDB(cfg.CachePath())
	if err != nil {
		// The cache is a convenience; run without it.
		logger.Warn("failed to open transcript cache", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	data, err := reviews.LoadBundled()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bundled datasets: %v\n", err)
		os.Exit(1)
	}

	tokens := auth.NewStore(cfg.TokenPath(), logger)
	client := api.NewClient(cfg.BaseURL, cfg.RequestTimeout, tokens, logger, tracer, meter)
	store := chat.NewStore(client, db, logger)
	theme := ui.NewTheme(cfg.Theme)

	app := ui.NewApp(cfg, theme, logger, client, tokens, store, data, os.Stdin, os.Stdout)

	if err := run(ctx, app, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches the subcommand views. Unknown commands fall through
// to the not-found view.
func run(ctx context.Context, app *ui.App, args []string) error {
	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "", "home":
		app.Home()
		return nil

	case "login":
		return app.Login(ctx)

	case "signup":
		return app.Signup(ctx)

	case "chat":
		sessionID := ""
		if len(args) > 1 {
			sessionID = args[1]
		}
		return app.Chat(ctx, sessionID)

	case "reviews":
		if len(args) > 1 && args[1] == "filter" {
			return runReviewsFilter(ctx, app, args[2:])
		}
		if len(args) > 1 {
			app.BranchReviews(args[1])
			return nil
		}
		app.ReviewsSummary()
		return nil

	case "profile":
		term := ""
		if len(args) > 1 {
			term = args[1]
		}
		return app.Profile(ctx, term)

	case "logout":
		return app.Auth.Clear()

	default:
		app.NotFound(command)
		return nil
	}
}

// runReviewsFilter parses the filter flags of `reviews filter` and
// renders the server-side filtered list.
func runReviewsFilter(ctx context.Context, app *ui.App, args []string) error {
	fs := flag.NewFlagSet("reviews filter", flag.ContinueOnError)
	stars := fs.Int("stars", 0, "Filter by star rating (1-5, 0 = all)")
	sentiment := fs.String("sentiment", "", "Filter by sentiment (Positive|Neutral|Negative)")
	location := fs.String("location", "", "Filter by exact location")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return app.ReviewsByRating(ctx, api.ReviewFilter{
		Stars:     *stars,
		Sentiment: *sentiment,
		Location:  *location,
	})
}
