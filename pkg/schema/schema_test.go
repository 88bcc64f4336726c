package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarySchema(t *testing.T) {
	data, err := SummarySchemaJSON()
	require.NoError(t, err)

	var doc struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "object", doc.Type)
	assert.ElementsMatch(t, []string{"title", "chapterList", "plotSummary", "characters"}, doc.Required)
	assert.Contains(t, string(doc.Properties["chapterList"]), `"summary"`)
}

func TestChapterJSONFlattensListItem(t *testing.T) {
	data, err := json.Marshal(Chapter{
		ChapterListItem:   ChapterListItem{Title: "The Signal", Summary: "A packet arrives."},
		SceneDescriptions: []string{"S1"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"The Signal","summary":"A packet arrives.","sceneDescriptions":["S1"]}`, string(data))
}
