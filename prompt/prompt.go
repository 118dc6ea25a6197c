// Package prompt loads the system prompt templates used by the pipeline
// stages and renders them with text/template.
//
// Defaults are embedded in the binary. A directory overlay replaces
// individual templates by file name (<name>.txt).
package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// Template names, one per stage.
const (
	GuardrailsSystem = "guardrails_system"
	PlannerSystem    = "planner_system"
	ResearcherSystem = "researcher_system"
	GeneratorSystem  = "generator_system"
	CriticSystem     = "critic_system"
	SEOSystem        = "seo_system"
)

// ErrNotFound is returned when no template exists under a name.
var ErrNotFound = errors.New("prompt not found")

//go:embed templates/*.txt
var embedded embed.FS

// Loader resolves a template name to its raw text.
type Loader interface {
	Load(name string) (string, error)
}

// Names returns the template names shipped with the binary, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(embedded, "templates")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(names)
	return names
}

// Options configure a Store.
type Options struct {
	// Dir overlays <Dir>/<name>.txt on top of the embedded defaults.
	Dir string
	// DisableDefaults makes Dir the only source.
	DisableDefaults bool
}

// Store is the default Loader.
type Store struct {
	opts Options
}

// New creates a Store.
func New(optFns ...func(o *Options)) *Store {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{opts: opts}
}

// Load implements Loader.
func (s *Store) Load(name string) (string, error) {
	text, _, err := s.lookup(name)
	return text, err
}

// Source reports where name resolves from: a file path or "embedded".
func (s *Store) Source(name string) (string, error) {
	_, src, err := s.lookup(name)
	return src, err
}

func (s *Store) lookup(name string) (string, string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}

	if s.opts.Dir != "" {
		path := filepath.Join(s.opts.Dir, name+".txt")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return string(data), path, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", "", fmt.Errorf("read prompt %s: %w", path, err)
		}
	}

	if !s.opts.DisableDefaults {
		data, err := embedded.ReadFile("templates/" + name + ".txt")
		if err == nil {
			return string(data), "embedded", nil
		}
	}

	return "", "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// MapLoader serves templates from memory.
type MapLoader map[string]string

// Load implements Loader.
func (m MapLoader) Load(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return text, nil
}

// Render executes text as a text/template against data. Text without
// template markers is returned unchanged.
func Render(name, text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// LoadAndRender loads name from l and renders it against data.
func LoadAndRender(l Loader, name string, data any) (string, error) {
	text, err := l.Load(name)
	if err != nil {
		return "", err
	}
	return Render(name, text, data)
}

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},
}
