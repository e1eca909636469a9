package server

import (
	"errors"
	"strings"
	"testing"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/types"
)

func TestParseYTDLPInfo(t *testing.T) {
	t.Run("uses the last json line", func(t *testing.T) {
		stdout := `[download] Destination: x
{"title":"first"}
{"title":"Clip","duration":61.5,"view_count":42,"uploader":"Someone","extractor":"youtube","formats":[{},{}]}`

		info, err := parseYTDLPInfo(stdout)
		require.NoError(t, err)

		m := info.metadata()
		assert.Equal(t, "Clip", m.Title)
		require.NotNil(t, m.Duration)
		assert.Equal(t, 61.5, *m.Duration)
		require.NotNil(t, m.ViewCount)
		assert.Equal(t, int64(42), *m.ViewCount)
		require.NotNil(t, m.Uploader)
		assert.Equal(t, "Someone", *m.Uploader)
		assert.True(t, m.FormatsAvailable)
		assert.Nil(t, m.Description)
		assert.Nil(t, m.Thumbnail)
	})

	t.Run("no json", func(t *testing.T) {
		_, err := parseYTDLPInfo("nothing here\n")
		assert.Error(t, err)
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := parseYTDLPInfo(`{"title":`)
		assert.Error(t, err)
	})
}

func TestYTDLPInfo_Metadata(t *testing.T) {
	t.Run("uploader falls back to channel", func(t *testing.T) {
		info, err := parseYTDLPInfo(`{"title":"Clip","channel":"Chan"}`)
		require.NoError(t, err)

		m := info.metadata()
		require.NotNil(t, m.Uploader)
		assert.Equal(t, "Chan", *m.Uploader)
		assert.False(t, m.FormatsAvailable)
	})

	t.Run("empty description is unset", func(t *testing.T) {
		info, err := parseYTDLPInfo(`{"title":"Clip","description":""}`)
		require.NoError(t, err)
		assert.Nil(t, info.metadata().Description)
	})

	t.Run("long description is truncated", func(t *testing.T) {
		info, err := parseYTDLPInfo(`{"title":"Clip","description":"` + strings.Repeat("a", 900) + `"}`)
		require.NoError(t, err)

		m := info.metadata()
		require.NotNil(t, m.Description)
		assert.Len(t, *m.Description, types.MaxDescriptionLength)
	})
}

func TestYTDLPInfo_ProducedPath(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected string
	}{
		{
			name:     "requested downloads first",
			json:     `{"requested_downloads":[{"filepath":"/d/abc_Clip.mp4"}],"filename":"/d/abc_Clip.webm","_filename":"/d/abc_Clip.f137.mp4"}`,
			expected: "/d/abc_Clip.mp4",
		},
		{
			name:     "filename next",
			json:     `{"filename":"/d/abc_Clip.webm","_filename":"/d/abc_Clip.f137.mp4"}`,
			expected: "/d/abc_Clip.webm",
		},
		{
			name:     "legacy filename last",
			json:     `{"_filename":"/d/abc_Clip.f137.mp4"}`,
			expected: "/d/abc_Clip.f137.mp4",
		},
		{
			name:     "nothing",
			json:     `{"title":"Clip"}`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseYTDLPInfo(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, info.producedPath())
		})
	}
}

func TestEngineError(t *testing.T) {
	runErr := errors.New("exit status 1")

	t.Run("keeps stderr", func(t *testing.T) {
		err := engineError("fetch", &ytdlp.Result{Stderr: "  ERROR: Private video\n"}, runErr)

		assert.Equal(t, "ERROR: Private video", err.Error())
		assert.ErrorIs(t, err, runErr)
	})

	t.Run("falls back to run error", func(t *testing.T) {
		err := engineError("probe", nil, runErr)
		assert.Equal(t, "exit status 1", err.Error())
	})

	t.Run("caps very long output", func(t *testing.T) {
		err := engineError("fetch", &ytdlp.Result{Stderr: strings.Repeat("x", maxEngineOutput*2)}, runErr)
		assert.Len(t, err.Output, maxEngineOutput)
	})
}
