package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestLimitStr(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 9, "truncated..."},
		{"héllo", 2, "h..."},
		{"日本語", 4, "日..."},
		{"日本語", 0, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := LimitStr(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
