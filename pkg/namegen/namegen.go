package namegen

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

var adjectives = []string{
	"amber", "brave", "crimson", "distant", "eager", "faded", "gentle", "hollow",
	"idle", "jagged", "keen", "lucid", "misty", "narrow", "olive", "patient",
	"quiet", "restless", "silver", "tender", "umber", "velvet", "wild", "young",
}

var nouns = []string{
	"anchor", "beacon", "cinder", "delta", "ember", "fable", "garden", "harbor",
	"island", "journey", "kettle", "lantern", "meadow", "nomad", "orchard", "pilgrim",
	"quarry", "river", "signal", "thicket", "umbra", "valley", "willow", "zephyr",
}

// suffixLen is how much of the ksuid ends up in a label.
const suffixLen = 8

// Label is a human readable run label such as "amber-harbor-2Bq3xY7k".
type Label struct {
	ID ksuid.KSUID
}

func New() Label {
	return Label{ID: ksuid.New()}
}

// String derives the words from the id so a label always renders the same.
func (l Label) String() string {
	payload := l.ID.Payload()
	adj := adjectives[int(payload[0])%len(adjectives)]
	noun := nouns[int(payload[1])%len(nouns)]
	return fmt.Sprintf("%s-%s-%s", adj, noun, l.ID.String()[:suffixLen])
}

// Generate returns a fresh label string.
func Generate() string {
	return New().String()
}
