package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigDocument_JSONObject(t *testing.T) {
	raw := `{
		"style": {"windowTitle": "Launcher", "systemTrayIcon": "tray.png"},
		"entries": [
			{"name": "a", "title": "Alpha", "manifestRef": "a.json"},
			{"name": "b", "title": "Beta", "hidden": true, "startup": true}
		],
		"subManifestRefs": ["sub.json"],
		"applicationManifests": ["legacy.json"]
	}`

	var doc ConfigDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	require.NotNil(t, doc.Style)
	assert.Equal(t, "Launcher", doc.Style.WindowTitle)
	assert.Equal(t, "tray.png", doc.Style.SystemTrayIcon)
	assert.Empty(t, doc.Style.SearchBarColor)

	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "a", doc.Entries[0].ID)
	assert.Equal(t, "a.json", doc.Entries[0].ManifestRef)
	assert.True(t, doc.Entries[1].Hidden)
	assert.True(t, doc.Entries[1].Startup)

	assert.Equal(t, []string{"sub.json", "legacy.json"}, doc.SubManifestRefs)
}

func TestConfigDocument_JSONArrayIsEntriesOnly(t *testing.T) {
	raw := `[{"name": "c", "title": "Gamma", "manifest_url": "https://example.com/c.json"}]`

	var doc ConfigDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Nil(t, doc.Style)
	assert.Empty(t, doc.SubManifestRefs)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "https://example.com/c.json", doc.Entries[0].ManifestRef)
}

func TestConfigDocument_YAML(t *testing.T) {
	raw := `
style:
  listBackgroundColor: "#222"
entries:
  - name: slack
    title: Slack
    manifest_url: slack.json
subManifestRefs:
  - more.yaml
`
	var doc ConfigDocument
	require.NoError(t, yaml.Unmarshal([]byte(raw), &doc))

	require.NotNil(t, doc.Style)
	assert.Equal(t, "#222", doc.Style.ListBackgroundColor)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "slack", doc.Entries[0].ID)
	assert.Equal(t, "slack.json", doc.Entries[0].ManifestRef)
	assert.Equal(t, []string{"more.yaml"}, doc.SubManifestRefs)
}

func TestConfigDocument_YAMLSequence(t *testing.T) {
	raw := "- name: x\n  title: X\n  hidden: true\n"

	var doc ConfigDocument
	require.NoError(t, yaml.Unmarshal([]byte(raw), &doc))
	require.Len(t, doc.Entries, 1)
	assert.True(t, doc.Entries[0].Hidden)
}

func TestVisible(t *testing.T) {
	entries := []AppEntry{
		{ID: "a", Title: "Alpha"},
		{ID: "b", Title: "Beta", Hidden: true},
		{ID: "c", Title: "Gamma"},
	}

	got := Visible(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
