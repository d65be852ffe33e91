// Package model defines the launchable entries and configuration documents
// shared by the loader and the tray.
package model

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppEntry is a single launchable application as declared in a
// configuration document. Entries are immutable once decoded; ID is the
// de-duplication and remembered-membership key.
type AppEntry struct {
	ID          string `json:"name" yaml:"name"`
	Title       string `json:"title" yaml:"title"`
	IconRef     string `json:"icon" yaml:"icon"`
	ManifestRef string `json:"manifestRef" yaml:"manifestRef"`
	Description string `json:"description,omitempty" yaml:"description"`
	Hidden      bool   `json:"hidden,omitempty" yaml:"hidden"`
	Startup     bool   `json:"startup,omitempty" yaml:"startup"`
}

// appEntryWire accepts both the current and the legacy manifest key.
type appEntryWire struct {
	ID          string `json:"name"`
	Title       string `json:"title"`
	IconRef     string `json:"icon"`
	ManifestRef string `json:"manifestRef"`
	ManifestURL string `json:"manifest_url"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
	Startup     bool   `json:"startup"`
}

// UnmarshalJSON decodes an entry, falling back to "manifest_url" when
// "manifestRef" is absent.
func (e *AppEntry) UnmarshalJSON(data []byte) error {
	var w appEntryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = AppEntry{
		ID:          strings.TrimSpace(w.ID),
		Title:       w.Title,
		IconRef:     w.IconRef,
		ManifestRef: w.ManifestRef,
		Description: w.Description,
		Hidden:      w.Hidden,
		Startup:     w.Startup,
	}
	if e.ManifestRef == "" {
		e.ManifestRef = w.ManifestURL
	}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (e *AppEntry) UnmarshalYAML(value *yaml.Node) error {
	var w struct {
		ID          string `yaml:"name"`
		Title       string `yaml:"title"`
		IconRef     string `yaml:"icon"`
		ManifestRef string `yaml:"manifestRef"`
		ManifestURL string `yaml:"manifest_url"`
		Description string `yaml:"description"`
		Hidden      bool   `yaml:"hidden"`
		Startup     bool   `yaml:"startup"`
	}
	if err := value.Decode(&w); err != nil {
		return err
	}
	*e = AppEntry{
		ID:          strings.TrimSpace(w.ID),
		Title:       w.Title,
		IconRef:     w.IconRef,
		ManifestRef: w.ManifestRef,
		Description: w.Description,
		Hidden:      w.Hidden,
		Startup:     w.Startup,
	}
	if e.ManifestRef == "" {
		e.ManifestRef = w.ManifestURL
	}
	return nil
}

// Visible returns the entries that are not hidden, preserving order.
func Visible(entries []AppEntry) []AppEntry {
	out := make([]AppEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}
