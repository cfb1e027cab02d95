package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NewsBrief/internal/app"
	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/logging"
)

func main() {
	envErr := config.LoadDotEnv()

	configPath := flag.String("config", os.Getenv("NEWSBRIEF_CONFIG"), "path to config file")
	topic := flag.String("topic", "", "topic of the brief (config default when empty)")
	state := flag.String("state", "", "state for local sources, e.g. new-york")
	city := flag.String("city", "", "city for local sources, e.g. bed-stuy")
	sourceName := flag.String("source", "", "query a single configured source")
	limit := flag.Int("limit", 0, "max items per source")
	days := flag.Int("days", 0, "look-back window in days")
	once := flag.Bool("once", false, "build one brief, print it and exit")
	flag.Parse()

	cfg := config.LoadFile(*configPath)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if envErr != nil {
		logger.Debug(".env not loaded", "error", envErr)
	}

	application, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	if *once {
		brief, err := application.Run(context.Background(), app.QueryParams{
			Topic:  *topic,
			State:  *state,
			City:   *city,
			Source: *sourceName,
			Limit:  *limit,
			Days:   *days,
		})
		// a failed model call leaves no editorial; publish failures still print the brief
		if err == nil || brief.NoContent || brief.Editorial.Body != "" {
			printBrief(os.Stdout, brief)
		}
		if err != nil {
			logger.Error("brief failed", "run_id", brief.RunID, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		logger.Error("scheduler failed to start", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := application.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler stop timed out", "error", err)
	}
}

func printBrief(w io.Writer, brief domain.Brief) {
	u := brief.Usage
	fmt.Fprintf(w, "Prompt tokens: %d\n", u.PromptTokens)
	fmt.Fprintf(w, "Completion tokens: %d\n", u.CompletionTokens)
	fmt.Fprintf(w, "Total tokens: %d\n", u.TotalTokens)
	fmt.Fprintf(w, "Total cost (USD): $%.6f\n", u.TotalCost)
	fmt.Fprintf(w, "Requests: %d\n\n", u.RequestCount)
	fmt.Fprintln(w, brief.Text())
}
