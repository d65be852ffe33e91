package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StyleConfig carries the ten theme fields a root document may set. Absent
// fields are empty strings and apply nothing.
type StyleConfig struct {
	WindowTitle           string `json:"windowTitle" yaml:"windowTitle" hcl:"window_title,optional"`
	Icon                  string `json:"icon" yaml:"icon" hcl:"icon,optional"`
	IconBackgroundImage   string `json:"iconBackgroundImage" yaml:"iconBackgroundImage" hcl:"icon_background_image,optional"`
	SystemTrayIcon        string `json:"systemTrayIcon" yaml:"systemTrayIcon" hcl:"system_tray_icon,optional"`
	HotbarBackgroundColor string `json:"hotbarBackgroundColor" yaml:"hotbarBackgroundColor" hcl:"hotbar_background_color,optional"`
	ListBackgroundColor   string `json:"listBackgroundColor" yaml:"listBackgroundColor" hcl:"list_background_color,optional"`
	ListAppHoverColor     string `json:"listAppHoverColor" yaml:"listAppHoverColor" hcl:"list_app_hover_color,optional"`
	ListAppTextColor      string `json:"listAppTextColor" yaml:"listAppTextColor" hcl:"list_app_text_color,optional"`
	SearchBarColor        string `json:"searchBarColor" yaml:"searchBarColor" hcl:"search_bar_color,optional"`
	SearchBarTextColor    string `json:"searchBarTextColor" yaml:"searchBarTextColor" hcl:"search_bar_text_color,optional"`
}

// ConfigDocument is one fetched configuration document. It is consumed once
// by the loader and discarded.
type ConfigDocument struct {
	Style           *StyleConfig `json:"style,omitempty" yaml:"style"`
	Entries         []AppEntry   `json:"entries,omitempty" yaml:"entries"`
	SubManifestRefs []string     `json:"subManifestRefs,omitempty" yaml:"subManifestRefs"`
}

// documentWire also accepts the legacy "applicationManifests" key.
type documentWire struct {
	Style                *StyleConfig `json:"style" yaml:"style"`
	Entries              []AppEntry   `json:"entries" yaml:"entries"`
	SubManifestRefs      []string     `json:"subManifestRefs" yaml:"subManifestRefs"`
	ApplicationManifests []string     `json:"applicationManifests" yaml:"applicationManifests"`
}

func (w documentWire) document() ConfigDocument {
	refs := append([]string(nil), w.SubManifestRefs...)
	refs = append(refs, w.ApplicationManifests...)
	return ConfigDocument{
		Style:           w.Style,
		Entries:         w.Entries,
		SubManifestRefs: refs,
	}
}

// UnmarshalJSON decodes either an object document or a bare array of
// entries.
func (d *ConfigDocument) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []AppEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return fmt.Errorf("decode entry list: %w", err)
		}
		*d = ConfigDocument{Entries: entries}
		return nil
	}
	var w documentWire
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return err
	}
	*d = w.document()
	return nil
}

// UnmarshalYAML decodes either a mapping document or a sequence of entries.
func (d *ConfigDocument) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var entries []AppEntry
		if err := value.Decode(&entries); err != nil {
			return fmt.Errorf("decode entry list: %w", err)
		}
		*d = ConfigDocument{Entries: entries}
		return nil
	}
	var w documentWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*d = w.document()
	return nil
}

// HotbarRecord is one element of the persisted hotbar membership blob.
type HotbarRecord struct {
	Name string `json:"name"`
}
