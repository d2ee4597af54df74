// Package plan loads patch plans from YAML.
//
// A plan names the files to edit and the ops to apply to each one. The
// built-in plans are embedded YAML documents; users can run their own with
// `respatch apply`.
//
//	name: button-strings
//	targets:
//	  - locales: [ru, pt]          # expands to values-ru/strings.xml, ...
//	    ops:
//	      - insert:
//	          fragments: ['<string name="button_ok">OK</string>']
//	  - path: values-ku/strings.xml
//	    ops:
//	      - remove: {name: about_summary}
package plan

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/minios-linux/respatch/android"
	"github.com/minios-linux/respatch/patch"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level plan document.
type File struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Indent overrides the configured indentation for this plan.
	Indent  string       `yaml:"indent,omitempty"`
	Targets []TargetSpec `yaml:"targets"`
}

// TargetSpec selects files by explicit paths, by locale, or both.
type TargetSpec struct {
	// Path is relative to the res directory.
	Path string `yaml:"path,omitempty"`
	// Paths are additional relative paths sharing the same ops.
	Paths []string `yaml:"paths,omitempty"`
	// Locales expand to values-XX/strings.xml each.
	Locales []string `yaml:"locales,omitempty"`
	Ops     []OpSpec `yaml:"ops"`
}

// OpSpec holds exactly one op.
type OpSpec struct {
	Insert         *InsertSpec  `yaml:"insert,omitempty"`
	Replace        *ReplaceSpec `yaml:"replace,omitempty"`
	Remove         *RemoveSpec  `yaml:"remove,omitempty"`
	ReplaceSection *SectionSpec `yaml:"replace_section,omitempty"`
}

// InsertSpec configures patch.InsertOp.
type InsertSpec struct {
	Fragments      []string `yaml:"fragments"`
	LeadingNewline bool     `yaml:"leading_newline,omitempty"`
	UnlessContains string   `yaml:"unless_contains,omitempty"`
}

// ReplaceSpec configures patch.ReplaceOp.
type ReplaceSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	// Required fails the file when the entry does not exist.
	Required bool `yaml:"required,omitempty"`
}

// RemoveSpec configures patch.RemoveOp.
type RemoveSpec struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required,omitempty"`
}

// SectionSpec configures patch.SectionOp.
type SectionSpec struct {
	Start    string   `yaml:"start"`
	Ends     []string `yaml:"ends"`
	Lines    []string `yaml:"lines"`
	Required bool     `yaml:"required,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Parse decodes and validates a plan document. indent is used unless the
// plan sets its own.
func Parse(data []byte, indent string) (*patch.Plan, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Build(indent)
}

// LoadFile reads a plan from disk.
func LoadFile(file, indent string) (*patch.Plan, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	p, err := Parse(data, indent)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	return p, nil
}

// Build validates f and converts it to a runnable plan.
func (f *File) Build(indent string) (*patch.Plan, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("plan has no name")
	}
	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("plan %q has no targets", f.Name)
	}
	if f.Indent != "" {
		indent = f.Indent
	}

	p := &patch.Plan{Name: f.Name, Description: f.Description}
	for i, ts := range f.Targets {
		paths := ts.paths()
		if len(paths) == 0 {
			return nil, fmt.Errorf("plan %q: target #%d selects no files", f.Name, i+1)
		}
		if len(ts.Ops) == 0 {
			return nil, fmt.Errorf("plan %q: target #%d has no ops", f.Name, i+1)
		}

		ops := make([]patch.Op, 0, len(ts.Ops))
		for j, spec := range ts.Ops {
			op, err := spec.build(indent)
			if err != nil {
				return nil, fmt.Errorf("plan %q: target #%d op #%d: %w", f.Name, i+1, j+1, err)
			}
			ops = append(ops, op)
		}
		for _, rel := range paths {
			p.Targets = append(p.Targets, patch.Target{Path: rel, Ops: ops})
		}
	}
	return p, nil
}

func (ts TargetSpec) paths() []string {
	var out []string
	if ts.Path != "" {
		out = append(out, ts.Path)
	}
	out = append(out, ts.Paths...)
	for _, loc := range ts.Locales {
		out = append(out, path.Join(android.LocaleDirName(loc), android.StringsFile))
	}
	return out
}

func (s OpSpec) build(indent string) (patch.Op, error) {
	var ops []patch.Op
	if s.Insert != nil {
		ops = append(ops, patch.InsertOp{
			Fragments:      s.Insert.Fragments,
			Indent:         indent,
			LeadingNewline: s.Insert.LeadingNewline,
			UnlessContains: s.Insert.UnlessContains,
		})
	}
	if s.Replace != nil {
		if s.Replace.Name == "" {
			return nil, fmt.Errorf("replace: name is required")
		}
		ops = append(ops, patch.ReplaceOp{Name: s.Replace.Name, Value: s.Replace.Value, Indent: indent, Required: s.Replace.Required})
	}
	if s.Remove != nil {
		if s.Remove.Name == "" {
			return nil, fmt.Errorf("remove: name is required")
		}
		ops = append(ops, patch.RemoveOp{Name: s.Remove.Name, Indent: indent, Required: s.Remove.Required})
	}
	if s.ReplaceSection != nil {
		if s.ReplaceSection.Start == "" || len(s.ReplaceSection.Ends) == 0 {
			return nil, fmt.Errorf("replace_section: start and ends are required")
		}
		ops = append(ops, patch.SectionOp{
			Section:  patch.Section{Start: s.ReplaceSection.Start, Ends: s.ReplaceSection.Ends},
			Lines:    s.ReplaceSection.Lines,
			Required: s.ReplaceSection.Required,
		})
	}

	if len(ops) != 1 {
		return nil, fmt.Errorf("expected exactly one of insert, replace, remove, replace_section; got %d", len(ops))
	}
	return ops[0], nil
}

// ---------------------------------------------------------------------------
// Built-in plans
// ---------------------------------------------------------------------------

// BuiltinNames returns the names of the embedded plans, sorted.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Builtin loads an embedded plan by name.
func Builtin(name, indent string) (*patch.Plan, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown plan %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	p, err := Parse(data, indent)
	if err != nil {
		return nil, fmt.Errorf("built-in plan %s: %w", name, err)
	}
	return p, nil
}
