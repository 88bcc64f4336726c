package story

import (
	"fmt"
	"strings"

	"draftsmith/pkg/schema"
)

// ContinuePrompt is the user turn that asks the backend to keep going after
// the replayed anchor.
const ContinuePrompt = "Continue writing the story."

const summaryPrompt = `Write the following about the plot summary below for a novel:

- A two to five word title for the novel starting with "Title: " and followed by two newlines. For example: "Fresh Beginnings" or "Jared's Adventure through Crime".
- A detailed plot summary for the story starting with "Plot Summary: " and followed by two newlines. The plot summary must be on the same line as the prefix.%s
- The string "Chapter Summaries" followed by two newlines.
- A markdown list of detailed chapter summaries of at least 3 sentences and titles for each of the %d chapters that a novel based on the plot summary would have. Surround each chapter title in quotes and put a dash after it like this:

- "Chapter name" - Chapter summary goes here. More words in the summary go here.
- "Second chapter name" - Second chapter summary goes here.

%s`

const chapterPrompt = `Given the following plot summary, character information, and chapter information, write descriptions of scenes that would happen in that chapter. End each description with two newlines. Write at least %d scenes. DO NOT only write one scene. Use detail and be creative. DO NOT include the chapter title in your output. ONLY output the scenes separated by blank lines like this:

What happens first.

What happens after that.

Plot summary: %s
Character information:
%s
Chapter title: %s
Chapter summary: %s`

const scenePrompt = `Given the following information, write the scene of the novel. Be detailed about the setting and character descriptions. End each paragraph with two newlines. Write many sentences. ONLY return the text of the novel.
%s
Chapter title: %s
Chapter summary: %s
Scene summary: %s`

const openingScene = "\nWrite details about what the character in the scene and their environment looks like."

// SummaryPrompt builds the instructions for the single summary request.
// theme, when set, is appended to the plot summary bullet.
func SummaryPrompt(plot schema.PlotSkeleton, chapters int, theme string) string {
	if theme = strings.TrimSpace(theme); theme != "" {
		theme = " " + theme
	}
	return fmt.Sprintf(summaryPrompt, theme, chapters, plot.Plot)
}

// ChapterPrompt asks for at least minScenes scene descriptions of item.
func ChapterPrompt(summary schema.Summary, item schema.ChapterListItem, minScenes int) string {
	return fmt.Sprintf(chapterPrompt, minScenes, summary.PlotSummary, rosterLines(summary.Characters), item.Title, item.Summary)
}

// ScenePrompt asks for the prose of one scene. The very first scene of the
// book also asks for the point-of-view character and setting.
func ScenePrompt(summary schema.Summary, ch schema.Chapter, chNum, sceneNum int, scene string) string {
	p := fmt.Sprintf(scenePrompt, rosterLines(summary.Characters), ch.Title, ch.Summary, scene)
	if chNum == 1 && sceneNum == 1 {
		p += openingScene
	}
	return p
}

func rosterLines(chars []schema.Character) string {
	lines := make([]string, len(chars))
	for i, c := range chars {
		lines[i] = fmt.Sprintf("- %s: %s", c.Name, c.Role)
	}
	return strings.Join(lines, "\n")
}
