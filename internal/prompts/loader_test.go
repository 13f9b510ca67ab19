package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(QuestionsFile, KeySystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Does the candidate")
	assert.Contains(t, prompt, "technical_skills")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(ScoringFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet(ScoringFile, KeySystem))
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "single placeholder",
			template: "Hello {{.Name}}!",
			data:     map[string]string{"Name": "World"},
			expected: "Hello World!",
		},
		{
			name:     "repeated placeholder",
			template: "{{.A}} and {{.A}}",
			data:     map[string]string{"A": "x"},
			expected: "x and x",
		},
		{
			name:     "values are not re-expanded",
			template: "{{.Question}} / {{.Evidence}}",
			data:     map[string]string{"Question": "{{.Evidence}}", "Evidence": "ev"},
			expected: "{{.Evidence}} / ev",
		},
		{
			name:     "unknown placeholder left alone",
			template: "{{.Missing}}",
			data:     map[string]string{},
			expected: "{{.Missing}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(ScoringFile, KeyUser, map[string]string{
		"Question": "Does the candidate hold a driver's license?",
		"Evidence": "Valid class B driver's license.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Does the candidate hold a driver's license?")
	assert.Contains(t, out, "Valid class B driver's license.")
	assert.NotContains(t, out, "{{.")

	_, err = Render(ScoringFile, KeyUser, map[string]string{"Question": "q"})
	assert.ErrorContains(t, err, "Evidence")
}

func TestVerify(t *testing.T) {
	ClearCache()
	require.NoError(t, Verify())
}

func TestVerify_MissingKey(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	cacheMu.Lock()
	cache[ScoringFile] = map[string]string{KeySystem: "system only"}
	cacheMu.Unlock()

	err := Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ScoringFile)
	assert.Contains(t, err.Error(), `"user"`)
}

func TestAllPromptFilesHaveSystemAndUser(t *testing.T) {
	ClearCache()

	for _, file := range Files {
		keys, err := List(file)
		require.NoError(t, err)
		assert.Equal(t, []string{KeySystem, KeyUser}, keys, file)
	}
}
