package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type video struct {
	Title      string `json:"title" yaml:"title"`
	Visibility string `json:"visibility" yaml:"visibility"`
}

var exportedAt = time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

func sampleDoc() Document[video] {
	return NewDocument("videos", []domain.Record[video]{
		{ID: "v1", CreatedAt: exportedAt, UpdatedAt: exportedAt, Data: video{Title: "Intro", Visibility: "public"}},
	}, exportedAt)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.True(t, domain.IsValidation(err))
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleDoc()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "videos", got["kind"])
	assert.EqualValues(t, 1, got["count"])
	items := got["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Intro", items[0].(map[string]any)["data"].(map[string]any)["title"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleDoc()))
	assert.Contains(t, buf.String(), "kind: videos")
	assert.Contains(t, buf.String(), "visibility: public")

	var got struct {
		Count int `yaml:"count"`
		Items []struct {
			ID string `yaml:"id"`
		} `yaml:"items"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "v1", got.Items[0].ID)
}

func TestNewDocument_EmptyCollection(t *testing.T) {
	doc := NewDocument[video]("videos", nil, exportedAt)
	assert.NotNil(t, doc.Items)
	assert.Zero(t, doc.Count)
	assert.Equal(t, "videos-20240502.yaml", Filename("videos", FormatYAML, exportedAt))
}
