package build

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"svgsprite/config"
)

// StubValues is a struct that holds variables we make available for stub
// template expansion.
type StubValues struct {
	// ID of the symbol to be used in <use href="#ID">.
	ID string
	// Name is document display name.
	Name string
	// Source is document identifier.
	Source string
	// URL of emitted spritesheet asset, empty in file mode.
	URL string
}

// AssetValues is a struct that holds variables we make available for asset
// name template expansion.
type AssetValues struct {
	// Name and Ext are parts of configured output name.
	Name string
	Ext  string
	// Hash is hex encoded SHA-256 of spritesheet content.
	Hash string
}

func parseTemplate(field config.TemplateFieldName, text string) (*template.Template, error) {
	tmpl, err := template.New(string(field)).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s template: %w", field, err)
	}
	return tmpl, nil
}

func expandTemplate(tmpl *template.Template, values any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("unable to execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func assetValues(output string, data []byte) AssetValues {
	sum := sha256.Sum256(data)
	ext := filepath.Ext(output)
	return AssetValues{
		Name: strings.TrimSuffix(filepath.Base(output), ext),
		Ext:  ext,
		Hash: hex.EncodeToString(sum[:]),
	}
}

// assetURL joins public path and emitted asset name.
func assetURL(publicPath, name string) string {
	if publicPath == "" {
		return name
	}
	return strings.TrimSuffix(publicPath, "/") + "/" + name
}

// stubPath returns slash separated stub location relative to stub directory:
// document identifier with source extension replaced.
func stubPath(docID, ext string) string {
	return strings.TrimSuffix(docID, path.Ext(docID)) + ext
}
