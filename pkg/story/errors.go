package story

import (
	"errors"
	"fmt"
)

var (
	ErrFormat       = errors.New("generated text does not follow the expected layout")
	ErrChapterCount = errors.New("chapter count mismatch")
	ErrSceneCount   = errors.New("too few scenes")
	ErrGeneration   = errors.New("generation failed")
	ErrPersistence  = errors.New("artifact write failed")
)

// FormatError reports which part of the positional layout could not be
// recovered from the generated text.
type FormatError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	// Line is the offending line, when there is one.
	Line string `json:"line,omitempty"`
}

func (e *FormatError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("malformed %s: %s (got %q)", e.Field, e.Reason, e.Line)
	}
	return fmt.Sprintf("malformed %s: %s", e.Field, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

type ChapterCountError struct {
	Want int
	Got  int
}

func (e *ChapterCountError) Error() string {
	return fmt.Sprintf("expected %d chapters, parsed %d", e.Want, e.Got)
}

func (e *ChapterCountError) Is(target error) bool { return target == ErrChapterCount }

type SceneCountError struct {
	Chapter int
	Want    int
	Got     int
}

func (e *SceneCountError) Error() string {
	return fmt.Sprintf("chapter %d: expected at least %d scenes, got %d", e.Chapter, e.Want, e.Got)
}

func (e *SceneCountError) Is(target error) bool { return target == ErrSceneCount }

// GenerationError wraps a backend failure with the item being generated.
// Chapter and Scene are zero when not applicable.
type GenerationError struct {
	Stage   string
	Chapter int
	Scene   int
	Err     error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Scene > 0:
		return fmt.Sprintf("%s for chapter %d scene %d: %v", e.Stage, e.Chapter, e.Scene, e.Err)
	case e.Chapter > 0:
		return fmt.Sprintf("%s for chapter %d: %v", e.Stage, e.Chapter, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

type PersistenceError struct {
	Artifact string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Artifact, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
