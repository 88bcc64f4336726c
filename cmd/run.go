package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"draftsmith/pkg/inference"
	"draftsmith/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a complete draft into a new run directory",
	Long: `Creates <out>/<label>, generates or loads a plot skeleton and runs the
summary, chapter and scene stages. Artifacts already written are kept when a
stage fails.`,
	Args: cobra.NoArgs,
	RunE: runDraft,
}

func runDraft(cmd *cobra.Command, _ []string) error {
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

	dir, label, err := pipeline.NewRunDir(cfg.Output)
	if err != nil {
		return err
	}
	logger = logger.With("run", label)
	logger.Info("run directory created", "path", dir.Root())

	p := &pipeline.Pipeline{
		Plot:       plotSource(cfg),
		Inferencer: inf,
		Store:      dir,
		Logger:     logger,
		Options:    pipelineOptions(cfg),
	}
	res, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", label, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s (%d chapters, %d scenes, %d tokens)\n",
		filepath.Join(dir.Root(), pipeline.ArtifactManifest), res.Summary.Title,
		len(res.Chapters), len(res.Manifest.Files), res.Usage.Total.TotalTokens)
	return nil
}
