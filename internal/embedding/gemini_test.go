package embedding

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_ShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hello", truncate("hello", 5))
}

func TestTruncate_CutsAtByteLimit(t *testing.T) {
	out := truncate("abcdef", 4)
	assert.Equal(t, "abcd", out)
}

func TestTruncate_DoesNotSplitRune(t *testing.T) {
	// "é" is two bytes; a limit landing inside it must back up to the
	// previous rune boundary.
	text := strings.Repeat("a", 3) + "é"

	out := truncate(text, 4)
	assert.Equal(t, "aaa", out)
	assert.True(t, utf8.ValidString(out))
}

func TestTruncate_MultiByteText(t *testing.T) {
	text := strings.Repeat("日", 100)

	out := truncate(text, 40)
	assert.LessOrEqual(t, len(out), 40)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(text, out))
}
