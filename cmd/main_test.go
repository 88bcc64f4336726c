package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftsmith/pkg/config"
	"draftsmith/pkg/plot"
)

func TestPipelineOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Story.Rounds = 3
	cfg.Story.Theme = "Adapt the story to be about peer to peer networks somehow."

	opts := pipelineOptions(cfg)
	assert.Equal(t, 3, opts.Continuation.Rounds)
	assert.Nil(t, opts.Continuation.Stop)
	assert.Equal(t, 10, opts.Chapters)
	assert.Equal(t, cfg.Story.Theme, opts.Theme)

	cfg.Story.TokenTarget = 2000
	assert.NotNil(t, pipelineOptions(cfg).Continuation.Stop)
}

func TestPlotSource(t *testing.T) {
	cfg := config.Default()
	_, ok := plotSource(cfg).(*plot.Generator)
	assert.True(t, ok)

	cfg.Story.PlotFile = "plotto.json"
	assert.Equal(t, plot.File{Path: "plotto.json"}, plotSource(cfg))
}

func TestParseCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, os.WriteFile(path, []byte("Title: \"X\"\n\nPlot Summary: Y\n\n- \"A\" - B"), 0o644))

	var out bytes.Buffer
	parseCmd.SetOut(&out)
	require.NoError(t, parseCmd.RunE(parseCmd, []string{path}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "X", got["title"])
	assert.Equal(t, "Y", got["plotSummary"])
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	schemaCmd.SetOut(&out)
	require.NoError(t, schemaCmd.RunE(schemaCmd, nil))
	assert.Contains(t, out.String(), `"chapterList"`)
}
