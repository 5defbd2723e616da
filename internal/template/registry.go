package template

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultName is the template used when a lookup misses.
const DefaultName = "boothlist_division"

// Calibration page size of the builtin templates (A4 at 300 DPI).
const (
	calibratedWidth  = 2480
	calibratedHeight = 3509
)

func builtins() []Template {
	mk := func(name string, l, r, t, b, minWords, minBlocks int) Template {
		return Template{
			Name: name, Left: l, Right: r, Top: t, Bottom: b,
			Rows: 10, Cols: 3,
			MinWordAnnotations:    minWords,
			MinValidBlocksForPage: minBlocks,
			CalibratedWidth:       calibratedWidth,
			CalibratedHeight:      calibratedHeight,
		}
	}
	return []Template{
		mk(DefaultName, 61, 85, 390, 168, 20, 2),
		mk("ac_wise_low_quality", 50, 50, 80, 60, 15, 1),
		mk("boothwise", 65, 306, 313, 254, 20, 2),
		mk("zp_boothwise", 65, 366, 390, 138, 20, 2),
		mk("wardwise", 65, 275, 334, 231, 20, 1),
		mk("mahanagpalika", 65, 274, 333, 228, 20, 1),
	}
}

var builtinAliases = map[string]string{
	"assembly_standard": DefaultName,
	"ward_wise_data":    "wardwise",
}

// Registry resolves templates by case-insensitive name or alias. It is safe
// for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
	aliases   map[string]string
	logger    *slog.Logger
}

// NewRegistry returns a registry loaded with the builtin templates.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		templates: make(map[string]Template),
		aliases:   make(map[string]string),
		logger:    logger,
	}
	for _, t := range builtins() {
		r.templates[key(t.Name)] = t
	}
	for a, n := range builtinAliases {
		r.aliases[key(a)] = key(n)
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds or replaces a template after validating it.
func (r *Registry) Register(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[key(t.Name)] = t
	return nil
}

// Alias maps an additional name to an existing template.
func (r *Registry) Alias(alias, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[key(name)]; !ok {
		return fmt.Errorf("alias %q: unknown template %q", alias, name)
	}
	r.aliases[key(alias)] = key(name)
	return nil
}

// Get returns the template registered under name or alias.
func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k := key(name)
	if target, ok := r.aliases[k]; ok {
		k = target
	}
	t, ok := r.templates[k]
	return t, ok
}

// Lookup returns the named template, falling back to the default template
// with a warning when the name is unknown.
func (r *Registry) Lookup(name string) Template {
	if t, ok := r.Get(name); ok {
		return t
	}
	r.logger.Warn("unknown template, using default", "requested", name, "default", DefaultName)
	t, _ := r.Get(DefaultName)
	return t
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// File is the YAML layout of a user template file.
type File struct {
	Templates []Template        `yaml:"templates"`
	Aliases   map[string]string `yaml:"aliases"`
}

// LoadFile registers every template and alias found in a YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse template file %s: %w", path, err)
	}
	for _, t := range f.Templates {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("template file %s: %w", path, err)
		}
	}
	for alias, name := range f.Aliases {
		if err := r.Alias(alias, name); err != nil {
			return fmt.Errorf("template file %s: %w", path, err)
		}
	}
	r.logger.Debug("loaded template file", "path", path, "templates", len(f.Templates), "aliases", len(f.Aliases))
	return nil
}
