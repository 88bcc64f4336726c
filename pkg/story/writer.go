package story

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"draftsmith/pkg/inference"
	"draftsmith/pkg/schema"
	"draftsmith/pkg/store"
	"draftsmith/pkg/utils"
)

// DefaultMinScenes is the scene count requested for every chapter.
const DefaultMinScenes = 4

const (
	StageSummary = "summary"
	StageChapter = "chapter"
	StageScene   = "scene"
)

// SceneArtifact names the prose artifact of a scene. Both numbers are
// 1-based.
func SceneArtifact(chapter, scene int) string {
	return fmt.Sprintf("src/ch-%d-sc-%d.md", chapter, scene)
}

// Writer issues the generation requests of a run.
type Writer struct {
	Inferencer inference.Inferencer
	Store      store.Store
	// Model is passed through to the backend. Empty selects its default.
	Model  string
	Logger *log.Logger
	// Ledger, when set, receives the usage of every request. Usage the
	// backend does not report is then estimated with the model's tokenizer.
	Ledger       *inference.Ledger
	Continuation Continuation
	// MinScenes is the scene count asked for. Zero means DefaultMinScenes.
	MinScenes int
}

func (w *Writer) logger() *log.Logger {
	if w.Logger == nil {
		return log.Default()
	}
	return w.Logger
}

func (w *Writer) minScenes() int {
	if w.MinScenes <= 0 {
		return DefaultMinScenes
	}
	return w.MinScenes
}

// GenerateSummary sends the single summary request and returns its raw text.
func (w *Writer) GenerateSummary(ctx context.Context, plot schema.PlotSkeleton, chapters int, theme string) (string, error) {
	messages := []inference.Message{inference.UserMessage(SummaryPrompt(plot, chapters, theme))}
	text, err := w.infer(ctx, StageSummary, messages)
	if err != nil {
		return "", &GenerationError{Stage: StageSummary, Err: err}
	}
	return text, nil
}

// ChapterScenes asks for the scene descriptions of one chapter. A short
// answer is returned together with a SceneCountError so callers can decide
// whether it is fatal.
func (w *Writer) ChapterScenes(ctx context.Context, summary schema.Summary, chNum int, item schema.ChapterListItem) (schema.Chapter, error) {
	messages := []inference.Message{inference.UserMessage(ChapterPrompt(summary, item, w.minScenes()))}
	text, err := w.infer(ctx, StageChapter, messages)
	if err != nil {
		return schema.Chapter{}, &GenerationError{Stage: StageChapter, Chapter: chNum, Err: err}
	}

	ch := schema.Chapter{
		ChapterListItem:   item,
		SceneDescriptions: SplitScenes(text),
	}
	if got := len(ch.SceneDescriptions); got < w.minScenes() {
		return ch, &SceneCountError{Chapter: chNum, Want: w.minScenes(), Got: got}
	}
	return ch, nil
}

// WriteScene generates the prose of one scene through the continuation
// rounds and persists it. It returns the artifact name.
func (w *Writer) WriteScene(ctx context.Context, summary schema.Summary, ch schema.Chapter, chNum, scNum int, desc string) (string, error) {
	w.logger().Debug("writing scene", "chapter", chNum, "scene", scNum, "desc", utils.LimitStr(desc, 50))
	prompt := ScenePrompt(summary, ch, chNum, scNum, desc)

	gen := func(ctx context.Context, messages []inference.Message) (string, error) {
		return w.infer(ctx, StageScene, messages)
	}
	prose, err := w.Continuation.Run(ctx, gen, prompt)
	if err != nil {
		return "", &GenerationError{Stage: StageScene, Chapter: chNum, Scene: scNum, Err: err}
	}

	name := SceneArtifact(chNum, scNum)
	if err := w.Store.Write(ctx, name, []byte(prose)); err != nil {
		return "", &PersistenceError{Artifact: name, Err: err}
	}
	w.logger().Info("scene written", "artifact", name, "chars", len(prose))
	return name, nil
}

func (w *Writer) infer(ctx context.Context, stage string, messages []inference.Message) (string, error) {
	c, err := w.Inferencer.Infer(ctx, w.Model, messages)
	if err != nil {
		return "", err
	}
	if err := inference.Verify(c); err != nil {
		return "", err
	}

	usage, estimated := c.Usage, false
	if usage == nil && w.Ledger != nil {
		usage, estimated = w.estimate(messages, c.Text), true
	}
	if usage == nil {
		return c.Text, nil
	}
	if w.Ledger != nil {
		w.Ledger.Record(stage, *usage, estimated)
	}
	w.logger().Debug("usage", "stage", stage, "tokens", usage.TotalTokens,
		"prompt", usage.PromptTokens, "completion", usage.CompletionTokens, "estimated", estimated)
	return c.Text, nil
}

// estimate counts tokens locally. It returns nil when no encoding is
// available.
func (w *Writer) estimate(messages []inference.Message, text string) *inference.Usage {
	var prompt int
	for _, m := range messages {
		n, err := utils.CountTokens(w.Model, m.Content)
		if err != nil {
			return nil
		}
		prompt += n
	}
	completion, err := utils.CountTokens(w.Model, text)
	if err != nil {
		return nil
	}
	return &inference.Usage{
		PromptTokens:     int64(prompt),
		CompletionTokens: int64(completion),
		TotalTokens:      int64(prompt + completion),
	}
}
