package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"launchtray/model"
)

func TestFilter(t *testing.T) {
	secret := entry("s", "Slack Admin")
	secret.Hidden = true
	all := []model.AppEntry{entry("slack", "Slack"), entry("notes", "Notes"), secret, entry("strasse", "Straße")}

	assert.Equal(t, []string{"Slack"}, titles(Filter(all, "slack")), "case-insensitive, hidden excluded")
	assert.Equal(t, []string{"Slack", "Notes"}, titles(Filter(all, "S")[:2]))
	assert.Equal(t, []string{"Straße"}, titles(Filter(all, "STRASSE")), "full case folding")
	assert.Empty(t, Filter(all, "zzz"))
	assert.Equal(t, []string{"Slack", "Notes", "Straße"}, titles(Filter(all, "")))
	assert.Len(t, all, 4, "input untouched")
}
