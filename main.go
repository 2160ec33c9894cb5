package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"innoboard/board"
	"innoboard/client"
	"innoboard/config"
)

// app bundles the wired components the commands operate on.
type app struct {
	cfg        config.Config
	api        *client.Client
	dispatcher *board.Dispatcher
	meetings   *board.Meetings
	logger     *log.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.StandardLogger()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	api := client.New(cfg.BaseURL, cfg.RequestTimeout, logger)
	notifier := board.LogNotifier{Logger: logger}
	dispatcher := board.NewDispatcher(board.NewStore(), api, notifier, logger)
	defer dispatcher.Close()

	a := &app{
		cfg:        cfg,
		api:        api,
		dispatcher: dispatcher,
		meetings:   board.NewMeetings(api, notifier, logger),
		logger:     logger,
	}

	root := &cobra.Command{
		Use:           "innoboard",
		Short:         "Administer innovation-board case items and meetings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(tasksCmd(a))
	root.AddCommand(meetingsCmd(a))
	root.AddCommand(reportCmd(a))
	root.AddCommand(importCmd(a))
	root.AddCommand(fixtureCmd(a))

	if err := root.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
