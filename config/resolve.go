package config

import (
	"net/url"
	"path/filepath"
)

// ResolveRef resolves a sub-manifest reference against the document that
// declared it. Absolute URLs and absolute paths are returned unchanged.
func ResolveRef(parent, ref string) string {
	if ref == "" || refScheme(ref) != "" {
		return ref
	}

	if refScheme(parent) != "" {
		base, err := url.Parse(parent)
		if err != nil {
			return ref
		}
		rel, err := url.Parse(filepath.ToSlash(ref))
		if err != nil {
			return ref
		}
		return base.ResolveReference(rel).String()
	}

	if filepath.IsAbs(ref) || parent == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(parent), ref)
}
