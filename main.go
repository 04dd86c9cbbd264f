package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	flag "github.com/spf13/pflag"

	"local.project/youtube_history/ytsheets"
)

func main() {
	var (
		configFile  = flag.String("config", "config.yaml", "YAML configuration file")
		channelID   = flag.String("channel", "", "YouTube channel id, overrides channel_id")
		spreadsheet = flag.String("spreadsheet", "", "Destination spreadsheet name, skips the prompt")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		noProgress  = flag.Bool("no-progress", false, "Disable the pagination progress bar")
		list        = flag.Bool("list", false, "List visible spreadsheets and exit")
		history     = flag.Int("history", 0, "Print the last N sync runs and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, *configFile, *channelID, *spreadsheet, *logLevel, *noProgress, *list, *history); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, channelID, spreadsheet, logLevel string, noProgress, list bool, history int) error {
	cfg, err := ytsheets.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if channelID != "" {
		cfg.ChannelID = channelID
	}
	if spreadsheet != "" {
		cfg.SpreadsheetName = spreadsheet
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	var log = ytsheets.NewLogger(cfg.LogLevel, os.Stderr)

	var store *ytsheets.Store
	if cfg.HistoryDB != "" {
		if store, err = ytsheets.NewStore(cfg.HistoryDB); err != nil {
			return err
		}
		defer store.Close()
	}
	if history > 0 {
		if store == nil {
			return fmt.Errorf("history_db is not configured")
		}
		return printHistory(ctx, store, history)
	}

	auth, err := ytsheets.NewAuthorizer(cfg, log)
	if err != nil {
		return err
	}
	client, err := auth.Client(ctx)
	if err != nil {
		return err
	}
	session, err := ytsheets.NewSession(ctx, client)
	if err != nil {
		return err
	}

	var progress io.Writer = os.Stderr
	if noProgress {
		progress = nil
	}
	var syncer = ytsheets.NewSyncer(cfg, session, ytsheets.ConsolePrompt(os.Stdin, os.Stdout), store, progress, log)
	if list {
		files, err := syncer.Locator().List(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%s\t%s\n", f.Name, f.ID)
		}
		return nil
	}

	log.Info().Msg("Start")
	report, err := syncer.Run(ctx)
	if err != nil {
		return err
	}
	if report.NoVideos {
		fmt.Printf("No videos found in channel id: %s\n", report.ChannelID)
		return nil
	}
	fmt.Printf("%d rows written to %q\n", report.Rows, report.SpreadsheetName)
	fmt.Printf("https://docs.google.com/spreadsheets/d/%s/edit\n", report.SpreadsheetID)
	return nil
}

func printHistory(ctx context.Context, store *ytsheets.Store, limit int) error {
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s\t%s\t%s\t%d rows\t%s\n",
			r.Finished.Format("2006-01-02 15:04:05"), r.ChannelID, r.SpreadsheetName, r.Rows, r.SpreadsheetID)
	}
	return nil
}
