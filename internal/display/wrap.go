package display

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to width, preserving ANSI escape sequences.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}

// Block wraps text to fit under an indent of n spaces.
func Block(text string, width int, n int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	inner := width - n
	if inner < 10 {
		inner = 10
	}
	return indent.String(wordwrap.String(strings.TrimRight(text, "\n"), inner), uint(n))
}
