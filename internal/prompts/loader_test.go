package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("decomposer.json", "extract-job-description")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "{{.JobText}}")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("decomposer.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	assert.NotPanics(t, func() {
		prompt := MustGet("decomposer.json", "extract-job-description")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	result := Format(template, map[string]string{})
	assert.Equal(t, template, result) // Placeholder remains
}

func TestFormat_FillsExtractionPrompt(t *testing.T) {
	prompt := MustGet("decomposer.json", "extract-job-description")
	filled := Format(prompt, map[string]string{"JobText": "Senior Go Engineer at Acme"})

	assert.Contains(t, filled, "Senior Go Engineer at Acme")
	assert.False(t, strings.Contains(filled, "{{.JobText}}"))
}

func TestCaching(t *testing.T) {
	// First call loads from the embedded file, second from cache.
	prompt1, err := Get("decomposer.json", "extract-job-description")
	require.NoError(t, err)

	prompt2, err := Get("decomposer.json", "extract-job-description")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
