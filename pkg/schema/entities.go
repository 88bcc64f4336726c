package schema

// PlotSkeleton is the procedurally generated outline a run starts from.
type PlotSkeleton struct {
	Plot string       `json:"plot" jsonschema_description:"Plot text handed to the summary prompt"`
	Cast []CastMember `json:"cast" jsonschema_description:"Ordered cast of the plot"`
}

type CastMember struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol" jsonschema_description:"Short symbolic role such as A or B-2"`
	Description string `json:"description"`
}

type ChapterListItem struct {
	Title   string `json:"title" jsonschema_description:"Chapter title without surrounding quotes"`
	Summary string `json:"summary" jsonschema_description:"Chapter summary as written by the model"`
}

type Chapter struct {
	ChapterListItem
	SceneDescriptions []string `json:"sceneDescriptions" jsonschema_description:"Scene descriptions in reading order"`
}

type Character struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Role   string `json:"role" jsonschema_description:"Role taken from the cast description"`
	Desc   string `json:"desc" jsonschema_description:"Free-form description, empty when created"`
}

type Summary struct {
	Title       string            `json:"title" jsonschema_description:"Two to five word novel title"`
	ChapterList []ChapterListItem `json:"chapterList" jsonschema_description:"Chapters in order"`
	PlotSummary string            `json:"plotSummary" jsonschema_description:"One paragraph plot summary"`
	Characters  []Character       `json:"characters" jsonschema_description:"Roster derived from the plot cast"`
}
