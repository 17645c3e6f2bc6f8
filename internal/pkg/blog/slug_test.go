package blog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"mixed case", "My First Post", "my-first-post"},
		{"numbers kept", "Top 10 Songs of 2026", "top-10-songs-of-2026"},
		{"punctuation collapses", "Hello, World! Again?", "hello-world-again"},
		{"consecutive separators collapse", "a  --  b", "a-b"},
		{"leading and trailing trimmed", "  !hello!  ", "hello"},
		{"ampersand becomes and", "Salt & Pepper", "salt-and-pepper"},
		{"at becomes at", "me@home", "me-at-home"},
		{"german umlauts", "Über Äpfel & Öl", "ueber-aepfel-and-oel"},
		{"sharp s", "Straße", "strasse"},
		{"french accents", "Café à l'été", "cafe-a-l-ete"},
		{"empty input", "", ""},
		{"only punctuation", "!?!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateSlug(tt.title))
		})
	}
}
