package diff

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aryann/difflib"

	"draftsmith/pkg/schema"
	"draftsmith/pkg/utils"
)

type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

type WordDelta struct {
	Op   Op
	Text string
}

type StringDiff struct {
	Old    string
	New    string
	Deltas []WordDelta
}

type FieldDiff struct {
	Path string
	Str  StringDiff
}

// ChapterDiff compares the chapters at the same position of two lists.
type ChapterDiff struct {
	Number     int
	Title      string
	State      ChangeType
	FieldDiffs []FieldDiff
}

type CharacterDiff struct {
	Name       string
	State      ChangeType
	FieldDiffs []FieldDiff
}

// SummaryDiff is the word level difference between two summaries. Fields
// are nil when equal.
type SummaryDiff struct {
	Title       *FieldDiff
	PlotSummary *FieldDiff
	Chapters    []ChapterDiff
	Characters  []CharacterDiff
}

func Summaries(oldS, newS schema.Summary) SummaryDiff {
	d := SummaryDiff{
		Chapters:   Chapters(oldS.ChapterList, newS.ChapterList),
		Characters: Characters(oldS.Characters, newS.Characters),
	}
	if oldS.Title != newS.Title {
		d.Title = &FieldDiff{Path: "Title", Str: strDiff(oldS.Title, newS.Title)}
	}
	if oldS.PlotSummary != newS.PlotSummary {
		d.PlotSummary = &FieldDiff{Path: "PlotSummary", Str: strDiff(oldS.PlotSummary, newS.PlotSummary)}
	}
	return d
}

// Changed reports whether anything differs.
func (d SummaryDiff) Changed() bool {
	if d.Title != nil || d.PlotSummary != nil {
		return true
	}
	for _, c := range d.Chapters {
		if c.State != Unchanged {
			return true
		}
	}
	for _, c := range d.Characters {
		if c.State != Unchanged {
			return true
		}
	}
	return false
}

// Chapters pairs chapters by position.
func Chapters(oldC, newC []schema.ChapterListItem) []ChapterDiff {
	out := make([]ChapterDiff, 0, max(len(oldC), len(newC)))
	for i := range max(len(oldC), len(newC)) {
		n := i + 1
		switch {
		case i >= len(newC):
			out = append(out, ChapterDiff{Number: n, Title: oldC[i].Title, State: Removed})
		case i >= len(oldC):
			out = append(out, ChapterDiff{
				Number: n,
				Title:  newC[i].Title,
				State:  Added,
				FieldDiffs: []FieldDiff{
					{Path: "Title", Str: strEq("", newC[i].Title)},
					{Path: "Summary", Str: strEq("", newC[i].Summary)},
				},
			})
		default:
			var fd []FieldDiff
			if oldC[i].Title != newC[i].Title {
				fd = append(fd, FieldDiff{Path: "Title", Str: strDiff(oldC[i].Title, newC[i].Title)})
			}
			if oldC[i].Summary != newC[i].Summary {
				fd = append(fd, FieldDiff{Path: "Summary", Str: strDiff(oldC[i].Summary, newC[i].Summary)})
			}
			state := Unchanged
			if len(fd) > 0 {
				state = Modified
			}
			out = append(out, ChapterDiff{Number: n, Title: newC[i].Title, State: state, FieldDiffs: fd})
		}
	}
	return out
}

// Characters pairs characters by case-insensitive name.
func Characters(oldC, newC []schema.Character) []CharacterDiff {
	omap := map[string]schema.Character{}
	nmap := map[string]schema.Character{}
	keys := map[string]struct{}{}

	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	for _, c := range oldC {
		k := norm(c.Name)
		omap[k] = c
		keys[k] = struct{}{}
	}
	for _, c := range newC {
		k := norm(c.Name)
		nmap[k] = c
		keys[k] = struct{}{}
	}

	out := make([]CharacterDiff, 0, len(keys))
	for k := range keys {
		o, okO := omap[k]
		n, okN := nmap[k]
		switch {
		case okO && !okN:
			out = append(out, CharacterDiff{Name: o.Name, State: Removed})
		case !okO && okN:
			out = append(out, CharacterDiff{
				Name:  n.Name,
				State: Added,
				FieldDiffs: []FieldDiff{
					{Path: "Symbol", Str: strEq("", n.Symbol)},
					{Path: "Role", Str: strEq("", n.Role)},
					{Path: "Desc", Str: strEq("", n.Desc)},
				},
			})
		default:
			fd := make([]FieldDiff, 0, 3)
			addFieldDiff := func(path, a, b string) {
				if a == b {
					return
				}
				fd = append(fd, FieldDiff{Path: path, Str: strDiff(a, b)})
			}

			addFieldDiff("Symbol", o.Symbol, n.Symbol)
			addFieldDiff("Role", o.Role, n.Role)
			addFieldDiff("Desc", o.Desc, n.Desc)

			state := Unchanged
			if len(fd) > 0 {
				state = Modified
			}
			out = append(out, CharacterDiff{Name: n.Name, State: state, FieldDiffs: fd})
		}
	}
	slices.SortFunc(out, func(a, b CharacterDiff) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func strEq(a, b string) StringDiff {
	return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Insert, Text: b}}}
}

func strDiff(a, b string) StringDiff {
	if a == b {
		return StringDiff{Old: a, New: b, Deltas: []WordDelta{{Op: Equal, Text: a}}}
	}
	at := utils.TokenizeWords(a)
	bt := utils.TokenizeWords(b)
	recs := difflib.Diff(at, bt)
	deltas := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			deltas = append(deltas, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			deltas = append(deltas, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			deltas = append(deltas, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return StringDiff{Old: a, New: b, Deltas: coalesce(deltas)}
}

// coalesce merges consecutive deltas of one op.
func coalesce(in []WordDelta) []WordDelta {
	out := make([]WordDelta, 0, len(in))
	for _, d := range in {
		if n := len(out); n > 0 && out[n-1].Op == d.Op {
			out[n-1].Text += d.Text
			continue
		}
		out = append(out, d)
	}
	return out
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgYellow  = "\x1b[33m"
	fgCyan    = "\x1b[36m"
	faint     = "\x1b[2m"
	uline     = "\x1b[4m"
	strike    = "\x1b[9m"
)

var tags = map[ChangeType]string{
	Added:     fgGreen + "[+]" + ansiReset,
	Removed:   fgRed + "[-]" + ansiReset,
	Modified:  fgYellow + "[~]" + ansiReset,
	Unchanged: faint + "[=]" + ansiReset,
}

func renderStringDiff(sd StringDiff) string {
	var b strings.Builder
	for _, d := range sd.Deltas {
		switch d.Op {
		case Equal:
			b.WriteString(d.Text)
		case Insert:
			fmt.Fprintf(&b, "%s%s%s%s", fgGreen, uline, d.Text, ansiReset)
		case Delete:
			fmt.Fprintf(&b, "%s%s%s%s", fgRed, strike, d.Text, ansiReset)
		}
	}
	return b.String()
}

func (d SummaryDiff) Print(w io.Writer) {
	for _, f := range []*FieldDiff{d.Title, d.PlotSummary} {
		if f != nil {
			fmt.Fprintf(w, "%s%s%s: %s\n", fgCyan, f.Path, ansiReset, renderStringDiff(f.Str))
		}
	}
	if len(d.Chapters) > 0 {
		fmt.Fprintln(w, fgCyan+"Chapters"+ansiReset)
		for _, c := range d.Chapters {
			fmt.Fprintf(w, "  %s %d. %s\n", tags[c.State], c.Number, c.Title)
			for _, f := range c.FieldDiffs {
				fmt.Fprintf(w, "    %s: %s\n", f.Path, renderStringDiff(f.Str))
			}
		}
	}
	if len(d.Characters) > 0 {
		fmt.Fprintln(w, fgCyan+"Characters"+ansiReset)
		for _, c := range d.Characters {
			fmt.Fprintf(w, "  %s %s\n", tags[c.State], c.Name)
			for _, f := range c.FieldDiffs {
				fmt.Fprintf(w, "    %s: %s\n", f.Path, renderStringDiff(f.Str))
			}
		}
	}
}
