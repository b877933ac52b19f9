package videos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestURLsDerivesCanonicalPaths(t *testing.T) {
	t.Parallel()

	records := Decode([]byte(`[{"id": 1, "title": "Hello World!"}]`), zap.NewNop())
	assert.Equal(t, []string{"https://example.com/hello-world-1/"}, URLs("https://example.com", records))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	payload := `[
		{"id": "abc", "title": "Crème Brûlée", "duration": 93},
		{"id": 7},
		{"id": 8, "title": ""},
		{"title": "no id"},
		{"id": null, "title": "null id"},
		"not an object",
		{"id": 12.5, "title": 42}
	]`

	records := Decode([]byte(payload), zap.New(core))
	require.Equal(t, []Record{
		{ID: "abc", Title: "Crème Brûlée"},
		{ID: "7"},
		{ID: "8"},
		{ID: "12.5", Title: "42"},
	}, records)
	assert.Equal(t, 3, logs.Len(), "one warning per skipped entry")

	assert.Equal(t, []string{
		"https://example.com/creme-brulee-abc/",
		"https://example.com/untitled-video-7/",
		"https://example.com/untitled-video-8/",
		"https://example.com/42-12.5/",
	}, URLs("https://example.com/", records))
}

func TestDecodeNonArray(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	for _, payload := range []string{`{"videos": []}`, `not json`, ``} {
		records := Decode([]byte(payload), zap.New(core))
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
	assert.Equal(t, 3, logs.FilterMessage("Video data is not a JSON array; no URLs derived").Len())
}

func TestLoadURLs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "videos.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"title":"One"},{"id":2,"title":"Two Words"}]`), 0o600))

	urls := LoadURLs(path, "https://example.com", zap.NewNop())
	assert.Equal(t, []string{"https://example.com/one-1/", "https://example.com/two-words-2/"}, urls)

	missing := LoadURLs(filepath.Join(dir, "missing.json"), "https://example.com", zap.NewNop())
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestDecodeNormalizesNumericIDs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw      string
		expected string
	}{
		{"1", "1"},
		{"1.0", "1"},
		{"1e3", "1000"},
		{"-0", "0"},
		{"12.50", "12.5"},
		{"12345678901234567890", "12345678901234567000"},
		{"1e21", "1e+21"},
		{"1.5e-7", "1.5e-7"},
		{"0.000001", "0.000001"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			records := Decode([]byte(`[{"id": `+tc.raw+`, "title": "x"}]`), zap.NewNop())
			require.Len(t, records, 1)
			assert.Equal(t, tc.expected, records[0].ID)
		})
	}

	records := Decode([]byte(`[{"id": 1.0, "title": "X"}]`), zap.NewNop())
	assert.Equal(t, []string{"https://example.com/x-1/"}, URLs("https://example.com", records))
}

func TestNilLoggerIsAllowed(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		assert.Empty(t, Decode([]byte(`{"not": "an array"}`), nil))
		assert.Empty(t, Decode([]byte(`[{"title": "no id"}]`), nil))
		assert.Empty(t, Load(filepath.Join(t.TempDir(), "missing.json"), nil))
		assert.Empty(t, LoadURLs(filepath.Join(t.TempDir(), "missing.json"), "https://example.com", nil))
	})
}
