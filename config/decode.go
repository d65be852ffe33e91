package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"launchtray/model"
)

// Format identifies the encoding of a configuration document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// DetectFormat picks the document format from the reference extension,
// falling back to the content type and finally JSON.
func DetectFormat(ref, contentType string) Format {
	p := ref
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	case ".json":
		return FormatJSON
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	case strings.Contains(ct, "hcl"):
		return FormatHCL
	}
	return FormatJSON
}

// Decode parses res as a configuration document in the format implied by
// ref and the response content type.
func Decode(ref string, res Resource) (model.ConfigDocument, error) {
	var doc model.ConfigDocument
	switch DetectFormat(ref, res.ContentType) {
	case FormatYAML:
		if err := yaml.Unmarshal(res.Data, &doc); err != nil {
			return model.ConfigDocument{}, fmt.Errorf("yaml: %w", err)
		}
	case FormatHCL:
		return decodeHCL(ref, res.Data)
	default:
		if err := json.Unmarshal(res.Data, &doc); err != nil {
			return model.ConfigDocument{}, fmt.Errorf("json: %w", err)
		}
	}
	return doc, nil
}

// hclDocument is the HCL shape of a configuration document:
//
//	style { window_title = "Apps" }
//	entry "slack" {
//	  title    = "Slack"
//	  manifest = "${env.HOME}/manifests/slack.json"
//	}
//	sub_manifests = ["more.hcl"]
type hclDocument struct {
	Style        *model.StyleConfig `hcl:"style,block"`
	Entries      []*hclEntry        `hcl:"entry,block"`
	SubManifests []string           `hcl:"sub_manifests,optional"`
	Remain       hcl.Body           `hcl:",remain"`
}

type hclEntry struct {
	Name        string `hcl:"name,label"`
	Title       string `hcl:"title,optional"`
	Icon        string `hcl:"icon,optional"`
	Manifest    string `hcl:"manifest,optional"`
	Description string `hcl:"description,optional"`
	Hidden      bool   `hcl:"hidden,optional"`
	Startup     bool   `hcl:"startup,optional"`
}

func decodeHCL(ref string, data []byte) (model.ConfigDocument, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, ref)
	if diags.HasErrors() {
		return model.ConfigDocument{}, fmt.Errorf("hcl parse: %w", diags)
	}

	var raw hclDocument
	diags = gohcl.DecodeBody(file.Body, hclEvalContext(), &raw)
	if diags.HasErrors() {
		return model.ConfigDocument{}, fmt.Errorf("hcl decode: %w", diags)
	}

	doc := model.ConfigDocument{
		Style:           raw.Style,
		SubManifestRefs: raw.SubManifests,
	}
	for _, e := range raw.Entries {
		doc.Entries = append(doc.Entries, model.AppEntry{
			ID:          strings.TrimSpace(e.Name),
			Title:       e.Title,
			IconRef:     e.Icon,
			ManifestRef: e.Manifest,
			Description: e.Description,
			Hidden:      e.Hidden,
			Startup:     e.Startup,
		})
	}
	return doc, nil
}

// hclEvalContext exposes the process environment as the "env" object.
func hclEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !validEnvName(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// validEnvName keeps only names usable as HCL attribute names.
func validEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}
