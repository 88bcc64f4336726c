package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	glog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"draftsmith/pkg/config"
	"draftsmith/pkg/inference"
	"draftsmith/pkg/pipeline"
	"draftsmith/pkg/plot"
	"draftsmith/pkg/queue"
	"draftsmith/pkg/server"
)

const queueSize = 16

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	inf, err := inference.New(ctx, cfg.Inference(logger))
	if err != nil {
		return err
	}

	q := queue.New(queueSize, logger)
	q.Start()

	factory := func(req server.RunRequest) (queue.Job, error) {
		run := *cfg
		if req.Chapters > 0 {
			run.Story.Chapters = req.Chapters
		}
		if req.Theme != "" {
			run.Story.Theme = req.Theme
		}
		if req.Seed != 0 {
			run.Story.Seed = req.Seed
		}
		run.Story.Strict = run.Story.Strict || req.Strict
		return newJob(&run, req, inf, logger)
	}

	srv := server.NewServer(ctx, q, factory, logger)
	if cfg.Level() <= log.DebugLevel {
		srv.Echo.Logger.SetLevel(glog.DEBUG)
	} else {
		srv.Echo.Logger.SetLevel(glog.INFO)
	}

	finishedShutDown := make(chan struct{})
	go func() {
		defer close(finishedShutDown)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if err := srv.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-finishedShutDown
	return nil
}

// newJob prepares the run directory up front so the label is known when the
// job is queued.
func newJob(cfg *config.Config, req server.RunRequest, inf inference.Inferencer, logger *log.Logger) (queue.Job, error) {
	dir, label, err := pipeline.NewRunDir(cfg.Output)
	if err != nil {
		return queue.Job{}, err
	}

	var source pipeline.PlotSource = plotSource(cfg)
	if req.Plot != nil {
		source = plot.Static(*req.Plot)
	}

	return queue.Job{
		Label: label,
		Run: func(ctx context.Context, progress func(pipeline.Event)) (*pipeline.Result, error) {
			p := &pipeline.Pipeline{
				Plot:       source,
				Inferencer: inf,
				Store:      dir,
				Logger:     logger.With("run", label),
				Options:    pipelineOptions(cfg),
				Progress:   progress,
			}
			return p.Run(ctx)
		},
	}, nil
}
