package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftsmith/pkg/inference"
	"draftsmith/pkg/pipeline"
	"draftsmith/pkg/plot"
	"draftsmith/pkg/queue"
	"draftsmith/pkg/schema"
	"draftsmith/pkg/store"
)

const summaryText = `Title: "Fresh Beginnings"

Plot Summary: Two strangers share a network connection and a secret.

Chapter Summaries

- "The Signal" - A mysterious packet arrives.`

func respond(messages []inference.Message) (inference.Completion, error) {
	u := &inference.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}
	switch prompt := messages[0].Content; {
	case strings.Contains(prompt, "Chapter Summaries"):
		return inference.Completion{Text: summaryText, Usage: u}, nil
	case strings.Contains(prompt, "write descriptions of scenes"):
		return inference.Completion{Text: "One.\n\nTwo.", Usage: u}, nil
	default:
		return inference.Completion{Text: "Prose.", Usage: u}, nil
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	q := queue.New(4, logger)
	q.Start()
	t.Cleanup(q.Stop)

	factory := func(req RunRequest) (queue.Job, error) {
		p := &pipeline.Pipeline{
			Plot:       plot.Static{Plot: "Ada meets Bo."},
			Inferencer: &inference.Scripted{Respond: respond},
			Store:      store.NewMemory(),
			Logger:     logger,
			Options:    pipeline.Options{Chapters: max(req.Chapters, 1), MinScenes: 2, Strict: req.Strict},
		}
		return queue.Job{Label: "test-run", Run: func(ctx context.Context, progress func(pipeline.Event)) (*pipeline.Result, error) {
			p.Progress = progress
			return p.Run(ctx)
		}}, nil
	}

	s := NewServer(context.Background(), q, factory, logger)
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestGetRoot(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"draftsmith"`)
}

func TestPostParse(t *testing.T) {
	s := newTestServer(t)
	body, err := json.Marshal(map[string]any{
		"text": summaryText,
		"cast": []schema.CastMember{{Name: "Ada", Symbol: "A", Description: "the protagonist"}},
	})
	require.NoError(t, err)

	rec := do(s, http.MethodPost, "/api/parse", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var got schema.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Fresh Beginnings", got.Title)
	assert.Equal(t, []schema.ChapterListItem{{Title: "The Signal", Summary: "A mysterious packet arrives."}}, got.ChapterList)
	assert.Equal(t, "the protagonist", got.Characters[0].Role)
}

func TestPostParseFormatError(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/parse", `{"text":"no title here"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var fe map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fe))
	assert.Equal(t, "title", fe["field"])
	assert.Equal(t, "no title here", fe["line"])

	rec = do(s, http.MethodPost, "/api/parse", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostRunsStreamsProgress(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/runs", `{"chapters":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: queued\n")
	assert.Contains(t, body, `"stage":"scene","chapter":1,"scene":2,"artifact":"src/ch-1-sc-2.md"`)
	assert.Contains(t, body, "event: done\n")
	assert.True(t, strings.HasSuffix(body, "event: close\ndata: null\n\n"))

	runs := do(s, http.MethodGet, "/api/runs", "")
	var list []queue.Info
	require.NoError(t, json.Unmarshal(runs.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, queue.StatusDone, list[0].Status)
	assert.Nil(t, list[0].Result)

	one := do(s, http.MethodGet, "/api/runs/"+list[0].ID, "")
	require.Equal(t, http.StatusOK, one.Code)
	var info queue.Info
	require.NoError(t, json.Unmarshal(one.Body.Bytes(), &info))
	require.NotNil(t, info.Result)
	assert.Equal(t, []string{"src/ch-1-sc-1.md", "src/ch-1-sc-2.md"}, info.Result.Manifest.Files)
}

func TestPostRunsFailure(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/runs", `{"chapters":3,"strict":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error\n")
	assert.Contains(t, rec.Body.String(), "expected 3 chapters, parsed 1")

	rec = do(s, http.MethodPost, "/api/runs", `{"chapters":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
