package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"draftsmith/pkg/inference"
	"draftsmith/pkg/namegen"
	"draftsmith/pkg/schema"
	"draftsmith/pkg/store"
	"draftsmith/pkg/story"
)

const (
	ArtifactPlot          = "plotto.json"
	ArtifactSummaryText   = "summary.txt"
	ArtifactSummary       = "summary.json"
	ArtifactSummarySchema = "summary.schema.json"
	ArtifactManifest      = "manifest.json"
	ArtifactUsage         = "usage.json"
)

// ChapterArtifact names the scene description artifact of a chapter.
func ChapterArtifact(chapter int) string {
	return fmt.Sprintf("chapters/ch-%d.json", chapter)
}

// PlotSource produces the skeleton a run starts from.
type PlotSource interface {
	Generate() (schema.PlotSkeleton, error)
}

// Options shapes a run. Zero values fall back to the defaults of the story
// package, one chapter worker and ten chapters.
type Options struct {
	Chapters    int
	MinScenes   int
	Concurrency int
	Theme       string
	// Strict turns chapter and scene count mismatches into errors instead of
	// warnings.
	Strict       bool
	Model        string
	Continuation story.Continuation
}

// Event reports run progress.
type Event struct {
	Stage    string `json:"stage"`
	Chapter  int    `json:"chapter,omitempty"`
	Scene    int    `json:"scene,omitempty"`
	Artifact string `json:"artifact,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Manifest lists the scene artifacts in reading order.
type Manifest struct {
	Title    string            `json:"title"`
	Chapters []ManifestChapter `json:"chapters"`
	Files    []string          `json:"files"`
}

type ManifestChapter struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Scenes []string `json:"scenes"`
}

// Usage is the content of usage.json.
type Usage struct {
	Stages map[string]inference.Totals `json:"stages"`
	Total  inference.Totals            `json:"total"`
}

// Result is what a finished run produced.
type Result struct {
	Plot     schema.PlotSkeleton `json:"plot"`
	Summary  schema.Summary      `json:"summary"`
	Chapters []schema.Chapter    `json:"chapters"`
	Manifest Manifest            `json:"manifest"`
	Usage    Usage               `json:"usage"`
}

// Pipeline runs plot, summary, chapters and scenes in order against the
// injected collaborators.
type Pipeline struct {
	Plot       PlotSource
	Inferencer inference.Inferencer
	Store      store.Store
	Logger     *log.Logger
	Options    Options
	// Progress, when set, receives events one at a time.
	Progress func(Event)

	mu sync.Mutex
}

// NewRunDir creates <out>/<label> and returns its store.
func NewRunDir(out string) (*store.Dir, string, error) {
	label := namegen.Generate()
	d, err := store.NewDir(filepath.Join(out, label))
	if err != nil {
		return nil, "", err
	}
	return d, label, nil
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

func (p *Pipeline) emit(e Event) {
	if p.Progress == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Progress(e)
}

func (p *Pipeline) chapters() int {
	if p.Options.Chapters <= 0 {
		return 10
	}
	return p.Options.Chapters
}

// Run executes the whole pipeline. Artifacts written before a failure stay
// in the store.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := p.logger()
	ledger := inference.NewLedger()
	w := &story.Writer{
		Inferencer:   p.Inferencer,
		Store:        p.Store,
		Model:        p.Options.Model,
		Logger:       logger,
		Ledger:       ledger,
		Continuation: p.Options.Continuation,
		MinScenes:    p.Options.MinScenes,
	}

	plot, err := p.Plot.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate plot: %w", err)
	}
	if err := p.writeJSON(ctx, ArtifactPlot, plot); err != nil {
		return nil, err
	}
	logger.Info("plot ready", "cast", len(plot.Cast))
	p.emit(Event{Stage: "plot", Artifact: ArtifactPlot})

	raw, err := w.GenerateSummary(ctx, plot, p.chapters(), p.Options.Theme)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	if err := p.write(ctx, ArtifactSummaryText, []byte(raw)); err != nil {
		return nil, err
	}
	p.emit(Event{Stage: "summary", Artifact: ArtifactSummaryText})

	summary, err := story.ParseSummary(raw, plot.Cast)
	if err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	if err := p.check(story.CheckChapterCount(summary, p.chapters())); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	if err := p.writeJSON(ctx, ArtifactSummary, summary); err != nil {
		return nil, err
	}
	schemaJSON, err := schema.SummarySchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("summary schema: %w", err)
	}
	if err := p.write(ctx, ArtifactSummarySchema, schemaJSON); err != nil {
		return nil, err
	}
	logger.Info("summary parsed", "title", summary.Title, "chapters", len(summary.ChapterList))
	p.emit(Event{Stage: "parsed", Artifact: ArtifactSummary, Message: summary.Title})

	chapters := make([]schema.Chapter, len(summary.ChapterList))
	scenes := make([][]string, len(summary.ChapterList))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Options.Concurrency, 1))
	for i, item := range summary.ChapterList {
		g.Go(func() error {
			ch, names, err := p.chapter(gctx, w, summary, i+1, item)
			chapters[i], scenes[i] = ch, names
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := Manifest{Title: summary.Title, Files: []string{}}
	for i, ch := range chapters {
		manifest.Chapters = append(manifest.Chapters, ManifestChapter{Number: i + 1, Title: ch.Title, Scenes: scenes[i]})
		manifest.Files = append(manifest.Files, scenes[i]...)
	}
	if err := p.writeJSON(ctx, ArtifactManifest, manifest); err != nil {
		return nil, err
	}

	usage := Usage{Stages: ledger.Stages(), Total: ledger.Total()}
	if err := p.writeJSON(ctx, ArtifactUsage, usage); err != nil {
		return nil, err
	}
	logger.Info("draft finished", "scenes", len(manifest.Files), "tokens", usage.Total.TotalTokens)
	p.emit(Event{Stage: "done", Artifact: ArtifactManifest})

	return &Result{
		Plot:     plot,
		Summary:  summary,
		Chapters: chapters,
		Manifest: manifest,
		Usage:    usage,
	}, nil
}

// chapter generates the scene descriptions of one chapter, then its scenes
// in order.
func (p *Pipeline) chapter(ctx context.Context, w *story.Writer, summary schema.Summary, n int, item schema.ChapterListItem) (schema.Chapter, []string, error) {
	ch, err := w.ChapterScenes(ctx, summary, n, item)
	if err := p.check(err); err != nil {
		return ch, nil, fmt.Errorf("chapter %d: %w", n, err)
	}
	if err := p.writeJSON(ctx, ChapterArtifact(n), ch); err != nil {
		return ch, nil, err
	}
	p.emit(Event{Stage: "chapter", Chapter: n, Artifact: ChapterArtifact(n), Message: ch.Title})

	names := make([]string, 0, len(ch.SceneDescriptions))
	for i, desc := range ch.SceneDescriptions {
		name, err := w.WriteScene(ctx, summary, ch, n, i+1, desc)
		if err != nil {
			return ch, names, fmt.Errorf("chapter %d: %w", n, err)
		}
		names = append(names, name)
		p.emit(Event{Stage: "scene", Chapter: n, Scene: i + 1, Artifact: name})
	}
	return ch, names, nil
}

// check applies the strict policy to count mismatches. Other errors pass
// through unchanged.
func (p *Pipeline) check(err error) error {
	if err == nil {
		return nil
	}
	if p.Options.Strict || !(errors.Is(err, story.ErrChapterCount) || errors.Is(err, story.ErrSceneCount)) {
		return err
	}
	p.logger().Warn("count mismatch, continuing", "error", err)
	p.emit(Event{Stage: "warning", Message: err.Error()})
	return nil
}

func (p *Pipeline) write(ctx context.Context, name string, data []byte) error {
	if err := p.Store.Write(ctx, name, data); err != nil {
		return &story.PersistenceError{Artifact: name, Err: err}
	}
	return nil
}

func (p *Pipeline) writeJSON(ctx context.Context, name string, v any) error {
	if err := store.WriteJSON(ctx, p.Store, name, v); err != nil {
		return &story.PersistenceError{Artifact: name, Err: err}
	}
	return nil
}
