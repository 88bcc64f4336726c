package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"draftsmith/pkg/config"
	"draftsmith/pkg/pipeline"
	"draftsmith/pkg/plot"
	"draftsmith/pkg/story"
	"draftsmith/pkg/utils"
)

const defaultConfigFile = "draftsmith.yaml"

var (
	configPath  string
	provider    string
	model       string
	outDir      string
	chapters    int
	concurrency int
	rounds      int
	plotFile    string
	seed        uint64
	strict      bool
)

var rootCmd = &cobra.Command{
	Use:   "draftsmith",
	Short: "Turn a generated plot skeleton into a chaptered prose draft",
	Long: `draftsmith asks a text generation backend for a title, plot summary and
chapter list, then for the scenes of every chapter, then for the prose of every
scene. Every step is written to a run directory as it completes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "generation backend: openai, gemini, grok, kimi, moonshot or local")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model name passed to the backend")

	for _, c := range []*cobra.Command{runCmd, serveCmd} {
		c.Flags().StringVar(&outDir, "out", "", "directory that receives run directories")
		c.Flags().IntVar(&chapters, "chapters", 0, "number of chapters to request")
		c.Flags().IntVar(&concurrency, "concurrency", 0, "chapters generated in parallel")
		c.Flags().IntVar(&rounds, "rounds", 0, "generation calls per scene")
		c.Flags().BoolVar(&strict, "strict", false, "fail on chapter or scene count mismatches")
	}
	runCmd.Flags().StringVar(&plotFile, "plot-file", "", "read the plot skeleton from a JSON file instead of generating one")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "plot generator seed (0 picks one)")
	parseCmd.Flags().StringVar(&plotFile, "plot-file", "", "plot skeleton whose cast becomes the character roster")

	rootCmd.AddCommand(runCmd, serveCmd, parseCmd, diffCmd, schemaCmd)
}

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" && utils.Exists(defaultConfigFile) {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.LLM.Provider = provider
	}
	if flags.Changed("model") {
		cfg.LLM.Model = model
	}
	if flags.Changed("out") {
		cfg.Output = outDir
	}
	if flags.Changed("chapters") {
		cfg.Story.Chapters = chapters
	}
	if flags.Changed("concurrency") {
		cfg.Story.Concurrency = concurrency
	}
	if flags.Changed("rounds") {
		cfg.Story.Rounds = rounds
	}
	if flags.Changed("strict") {
		cfg.Story.Strict = strict
	}
	if flags.Changed("plot-file") {
		cfg.Story.PlotFile = plotFile
	}
	if flags.Changed("seed") {
		cfg.Story.Seed = seed
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           cfg.Level(),
	})
	log.SetDefault(logger)
	return logger
}

func plotSource(cfg *config.Config) pipeline.PlotSource {
	if cfg.Story.PlotFile != "" {
		return plot.File{Path: cfg.Story.PlotFile}
	}
	return plot.NewGenerator(cfg.Story.Seed)
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	cont := story.Continuation{Rounds: cfg.Story.Rounds}
	if cfg.Story.TokenTarget > 0 {
		cont.Stop = story.TokenTarget(cfg.LLM.Model, cfg.Story.TokenTarget)
	}
	return pipeline.Options{
		Chapters:     cfg.Story.Chapters,
		MinScenes:    cfg.Story.MinScenes,
		Concurrency:  cfg.Story.Concurrency,
		Theme:        cfg.Story.Theme,
		Strict:       cfg.Story.Strict,
		Model:        cfg.LLM.Model,
		Continuation: cont,
	}
}
