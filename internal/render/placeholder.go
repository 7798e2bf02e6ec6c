// Package render turns on-disk page templates into HTML. Templates are plain
// text with %name% placeholders; there are no loops or conditionals.
package render

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"
)

var placeholderRe = regexp.MustCompile(`%\w+%`)

// Replace substitutes every %key% token whose key exists in placeholders.
// Tokens without a key are kept as they are.
func Replace(template string, placeholders map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		if v, ok := placeholders[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}

// Renderer reads templates from FS on every call. Nothing is cached.
type Renderer struct {
	FS  afero.Fs
	Dir string
	Ext string
}

func NewRenderer(fs afero.Fs, dir, ext string) *Renderer {
	return &Renderer{FS: fs, Dir: dir, Ext: ext}
}

func (r *Renderer) path(name string) string {
	return filepath.Join(r.Dir, name+r.Ext)
}

// Load returns the raw template text.
func (r *Renderer) Load(name string) (string, error) {
	b, err := afero.ReadFile(r.FS, r.path(name))
	if err != nil {
		return "", fmt.Errorf("load template %q: %w", name, err)
	}
	return string(b), nil
}

func (r *Renderer) Render(name string, placeholders map[string]string) (string, error) {
	tmpl, err := r.Load(name)
	if err != nil {
		return "", err
	}
	return Replace(tmpl, placeholders), nil
}
