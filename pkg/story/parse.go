package story

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"draftsmith/pkg/schema"
)

// The summary text is read positionally: the first line carries the title,
// paragraph 1 the plot summary and the last paragraph the chapter list.
// Chapter lines follow one grammar:
//
//	- "Title" - Summary
//	- Title - Summary
//
// Quotes around the title are optional. Without quotes the title ends at the
// first " - ". A "*" bullet is accepted in place of "-".
var (
	titleRX       = regexp.MustCompile(`^Title:[ \t]*(.+?)[ \t]*$`)
	plotSummaryRX = regexp.MustCompile(`(?m)^Plot Summary:[ \t]*(.+?)[ \t]*$`)
	chapterRX     = regexp.MustCompile(`^[-*][ \t]+(?:"([^"]+)"|(.+?))[ \t]+-[ \t]+(.+?)[ \t]*$`)
	paragraphRX   = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)*`)
)

const (
	paraTitle       = 0
	paraPlotSummary = 1
	// title, plot summary and at least one more paragraph for the list
	minParagraphs = 3
)

// Paragraphs normalises line endings and splits text on blank lines.
func Paragraphs(text string) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	return paragraphRX.Split(text, -1)
}

// ParseSummary recovers a Summary from the raw summary response. The roster
// comes from cast, never from the generated text.
func ParseSummary(raw string, cast []schema.CastMember) (schema.Summary, error) {
	paras := Paragraphs(raw)

	title, err := ParseTitle(paras)
	if err != nil {
		return schema.Summary{}, err
	}
	plotSummary, err := ParsePlotSummary(paras)
	if err != nil {
		return schema.Summary{}, err
	}
	chapters, err := ParseChapterList(paras)
	if err != nil {
		return schema.Summary{}, err
	}

	return schema.Summary{
		Title:       title,
		ChapterList: chapters,
		PlotSummary: plotSummary,
		Characters:  Roster(cast),
	}, nil
}

func ParseTitle(paras []string) (string, error) {
	if len(paras) == 0 {
		return "", &FormatError{Field: "title", Reason: "text is empty"}
	}
	first, _, _ := strings.Cut(paras[paraTitle], "\n")
	m := titleRX.FindStringSubmatch(first)
	if m == nil {
		return "", &FormatError{Field: "title", Reason: `first line must start with "Title: "`, Line: first}
	}
	title := strings.TrimSpace(unquote(m[1]))
	if title == "" {
		return "", &FormatError{Field: "title", Reason: "title is empty", Line: first}
	}
	return title, nil
}

func ParsePlotSummary(paras []string) (string, error) {
	if len(paras) <= paraPlotSummary {
		return "", &FormatError{Field: "plot summary", Reason: "missing paragraph after the title"}
	}
	m := plotSummaryRX.FindStringSubmatch(paras[paraPlotSummary])
	if m == nil {
		return "", &FormatError{Field: "plot summary", Reason: `paragraph must start with "Plot Summary: "`, Line: firstLine(paras[paraPlotSummary])}
	}
	return m[1], nil
}

// ParseChapterList reads the last paragraph. Lines outside the grammar, such
// as a "Chapter Summaries" heading, are dropped.
func ParseChapterList(paras []string) ([]schema.ChapterListItem, error) {
	if len(paras) < minParagraphs {
		return nil, &FormatError{Field: "chapter list", Reason: "missing paragraph after the plot summary"}
	}
	last := paras[len(paras)-1]

	var out []schema.ChapterListItem
	for _, line := range strings.Split(last, "\n") {
		if item, ok := ParseChapterLine(line); ok {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, &FormatError{Field: "chapter list", Reason: `no line of the form - "Title" - Summary`, Line: firstLine(last)}
	}
	return out, nil
}

// ParseChapterLine matches a single chapter list line.
func ParseChapterLine(line string) (schema.ChapterListItem, bool) {
	m := chapterRX.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return schema.ChapterListItem{}, false
	}
	title := m[1]
	if title == "" {
		title = unquote(m[2])
	}
	item := schema.ChapterListItem{
		Title:   strings.TrimSpace(title),
		Summary: strings.TrimSpace(m[3]),
	}
	if item.Title == "" || item.Summary == "" {
		return schema.ChapterListItem{}, false
	}
	return item, true
}

// Roster turns the plot cast into characters. Desc is left empty.
func Roster(cast []schema.CastMember) []schema.Character {
	out := make([]schema.Character, 0, len(cast))
	for _, c := range cast {
		out = append(out, schema.Character{
			Name:   c.Name,
			Symbol: c.Symbol,
			Role:   c.Description,
		})
	}
	return out
}

// CheckChapterCount compares the parsed list with the count the prompt asked
// for. want <= 0 disables the check.
func CheckChapterCount(s schema.Summary, want int) error {
	if want <= 0 || len(s.ChapterList) == want {
		return nil
	}
	return &ChapterCountError{Want: want, Got: len(s.ChapterList)}
}

// SplitScenes splits a chapter response on blank lines into trimmed,
// non-empty scene descriptions.
func SplitScenes(text string) []string {
	var out []string
	for _, p := range Paragraphs(text) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LastLine returns the text after the final line break, or s itself when it
// has none.
func LastLine(s string) string {
	i := strings.LastIndex(s, "\n")
	if i == -1 {
		return s
	}
	return s[i+1:]
}

// closers maps each opening quote to the rune that closes it.
var closers = map[rune]rune{
	'"': '"',
	'\'': '\'',
	'“': '”',
	'‘': '’',
	'«': '»',
}

// unquote strips one surrounding quote pair. A leading double quote is always
// dropped. Other openers are kept unless their closer ends s.
func unquote(s string) string {
	open, size := utf8.DecodeRuneInString(s)
	closer, ok := closers[open]
	if !ok {
		return s
	}
	last, lastSize := utf8.DecodeLastRuneInString(s)
	paired := len(s) > size && last == closer
	switch {
	case paired:
		return s[size : len(s)-lastSize]
	case open == '"':
		return s[size:]
	}
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
