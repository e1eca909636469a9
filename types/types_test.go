package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
	types "github.com/vidgrab/vidgrab/types"
)

func TestMetadata_TruncateDescription(t *testing.T) {
	tests := []struct {
		name        string
		description *string
		expectedLen int
		expectNil   bool
	}{
		{name: "nil description", description: nil, expectNil: true},
		{name: "short description", description: ptr("hello"), expectedLen: 5},
		{name: "exactly at the limit", description: ptr(strings.Repeat("a", types.MaxDescriptionLength)), expectedLen: types.MaxDescriptionLength},
		{name: "over the limit", description: ptr(strings.Repeat("a", 2000)), expectedLen: types.MaxDescriptionLength},
		{name: "multibyte characters are kept whole", description: ptr(strings.Repeat("é", 600)), expectedLen: types.MaxDescriptionLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &types.Metadata{Title: "T", Description: tt.description}

			m.TruncateDescription()

			if tt.expectNil {
				assert.Nil(t, m.Description)
				return
			}
			require.NotNil(t, m.Description)
			assert.Equal(t, tt.expectedLen, len([]rune(*m.Description)))
		})
	}
}

func TestMetadata_TruncateDescriptionNilReceiver(t *testing.T) {
	var m *types.Metadata
	assert.NotPanics(t, m.TruncateDescription)
}

func TestMetadata_AbsentFieldsAreNull(t *testing.T) {
	data, err := json.Marshal(types.Metadata{Title: "Clip"})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"title": "Clip",
		"thumbnail": null,
		"duration": null,
		"uploader": null,
		"view_count": null,
		"description": null,
		"webpage_url": null,
		"extractor": null,
		"formats_available": false
	}`, string(data))
}

func TestDownloadResponse_FailureOmitsSuccessFields(t *testing.T) {
	data, err := json.Marshal(types.DownloadResponse{Success: false, Error: "Download failed: boom"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"error":"Download failed: boom"}`, string(data))
}

func ptr(s string) *string {
	return &s
}
