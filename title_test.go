package edubot_test

import (
	"strings"
	"testing"

	"github.com/edubot/edubot"
	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "What is a prime number?", "What is a prime number?"},
		{"exactly max", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"one over max", strings.Repeat("x", 51), strings.Repeat("x", 50) + "..."},
		{"sixty", strings.Repeat("a", 60), strings.Repeat("a", 50) + "..."},
		{"empty", "", ""},
		{"vietnamese", strings.Repeat("ữ", 55), strings.Repeat("ữ", 50) + "..."},
		{"combining marks", strings.Repeat("é", 52), strings.Repeat("é", 50) + "..."},
		{"emoji", strings.Repeat("👩‍🏫", 51), strings.Repeat("👩‍🏫", 50) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, edubot.DeriveTitle(tt.content))
		})
	}
}
