package utils

import (
	"cmp"

	"github.com/pkoukk/tiktoken-go"

	"draftsmith/pkg/flight"
)

const fallbackEncoding = "cl100k_base"

var encodings = flight.NewCache(func(model string) (*tiktoken.Tiktoken, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return tkm, nil
	}
	return tiktoken.GetEncoding(fallbackEncoding)
})

// CountTokens estimates the number of tokens text occupies for model. Unknown
// models fall back to the cl100k_base encoding.
func CountTokens(model, text string) (int, error) {
	tkm, err := encodings.Get(cmp.Or(model, "gpt-4o-mini"))
	if err != nil {
		return 0, err
	}
	return len(tkm.Encode(text, nil, nil)), nil
}
