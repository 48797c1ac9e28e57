package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api/notehandler"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/cmd/flags"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/common"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/counters"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/httpserver"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/noteid"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/notestore"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/storage"
)

var serverFlags = append([]cli.Flag{
	flags.ConfigFlag,
	flags.ListenAddrFlag,
	flags.NoteStoreFlag,
	flags.CountersBackendFlag,
	flags.IDLengthFlag,
	flags.CORSOriginsFlag,
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:    "myprivatenote-server",
		Usage:   "Serve one-time encrypted notes",
		Version: common.Version,
		Flags:   serverFlags,
		Action:  runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(cCtx *cli.Context) error {
	cfg, err := flags.LoadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := flags.NewLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ids, err := noteid.NewGenerator(cfg.IDLength)
	if err != nil {
		return err
	}

	store, err := notestore.NoteStoreFor(ctx, cfg.NoteStore, ids, logger)
	if err != nil {
		logger.Error("Failed to open note store", "err", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close note store", "err", err)
		}
	}()
	logger.Info("Note store ready", "store", store.Name())

	locations, err := cfg.CountersLocations()
	if err != nil {
		return err
	}
	backend, err := storage.NewStorageBackendFactory(logger).CreateMultiBackend(locations)
	if err != nil {
		logger.Error("Failed to create counters backend", "err", err)
		return err
	}

	usage, err := counters.Load(ctx, backend, logger)
	if err != nil {
		return err
	}
	totals := usage.Totals()
	logger.Info("Usage counters loaded",
		"backend", backend.LocationURI(),
		"totalCreated", totals.TotalCreated,
		"totalRead", totals.TotalRead)

	persisterDone := make(chan struct{})
	go func() {
		usage.Run(ctx)
		close(persisterDone)
	}()

	handler := notehandler.NewHandler(store, ids, usage, logger)

	server, err := httpserver.New(flags.ConfigureServer(cfg, logger), handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Drain()
	server.Shutdown()

	cancel()
	<-persisterDone

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := usage.Flush(flushCtx); err != nil {
		logger.Error("Failed to persist final usage counters", "err", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
