// Package config — .respatch.yaml configuration file support and
// auto-detection of the Android res/ directory.
//
// Every setting has a default, so the file is optional. When it is absent
// respatch behaves exactly like the maintenance scripts it replaces.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".respatch.yaml"

// DefaultResDir is the res directory of a standard single-module Android project.
const DefaultResDir = "app/src/main/res"

// Config is the top-level .respatch.yaml structure.
type Config struct {
	// ResDir is the Android res/ directory relative to the project root.
	ResDir string `yaml:"res_dir,omitempty"`
	// ReferenceLocale is the locale every other locale is compared against.
	// "default" is the unsuffixed values/ directory.
	ReferenceLocale string `yaml:"reference_locale,omitempty"`
	// Indent prefixes every inserted or rewritten entry.
	Indent string `yaml:"indent,omitempty"`
	// RTLLocales are checked separately in the report and flagged in the checklist.
	RTLLocales []string `yaml:"rtl_locales,omitempty"`
	// DialogStrings are string names whose coverage is reported individually.
	DialogStrings []string `yaml:"dialog_strings,omitempty"`
	// EnglishWords are matched as whole words, case-insensitively, when
	// looking for untranslated text.
	EnglishWords []string `yaml:"english_words,omitempty"`
	// SkipLeakage lists locales excluded from the English-text scan.
	SkipLeakage []string `yaml:"skip_leakage,omitempty"`
	// Plans are additional plan files, relative to the project root.
	Plans []string `yaml:"plans,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ResDir:          DefaultResDir,
		ReferenceLocale: "default",
		Indent:          "    ",
		RTLLocales:      []string{"ar", "ku"},
		DialogStrings: []string{
			"dialog_add_task_title",
			"dialog_about_title",
			"dialog_theme_title",
			"about_title",
			"about_summary",
			"about_developer",
			"about_email",
			"about_github",
			"theme_dialog_title",
			"theme_light",
			"theme_dark",
			"theme_system_default",
		},
		EnglishWords: []string{
			"Task", "Add", "Cancel", "OK", "Settings",
			"About", "Theme", "Pending", "Completed",
			"Priority", "High", "Medium", "Low",
		},
		SkipLeakage: []string{"en", "default"},
	}
}

// Load reads .respatch.yaml from rootDir and fills unset fields with
// defaults. A missing file yields Default().
func Load(rootDir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var fc Config
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.merge(&fc)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// merge overrides defaults with every field set in fc.
func (c *Config) merge(fc *Config) {
	if fc.ResDir != "" {
		c.ResDir = fc.ResDir
	}
	if fc.ReferenceLocale != "" {
		c.ReferenceLocale = fc.ReferenceLocale
	}
	if fc.Indent != "" {
		c.Indent = fc.Indent
	}
	if fc.RTLLocales != nil {
		c.RTLLocales = fc.RTLLocales
	}
	if fc.DialogStrings != nil {
		c.DialogStrings = fc.DialogStrings
	}
	if fc.EnglishWords != nil {
		c.EnglishWords = fc.EnglishWords
	}
	if fc.SkipLeakage != nil {
		c.SkipLeakage = fc.SkipLeakage
	}
	c.Plans = fc.Plans
}

// Validate checks settings that would otherwise fail later in surprising ways.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Indent) != "" {
		return fmt.Errorf("indent must be whitespace, got %q", c.Indent)
	}
	for _, w := range c.EnglishWords {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("english_words contains an empty word")
		}
	}
	if filepath.IsAbs(c.ResDir) {
		return fmt.Errorf("res_dir must be relative to the project root, got %q", c.ResDir)
	}
	return nil
}

// ResolveResDir returns the absolute res directory under rootDir. When the
// configured directory does not exist, module directories one level down
// (e.g. mobile/src/main/res) are searched; a single hit is used.
func (c *Config) ResolveResDir(rootDir string) string {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	configured := filepath.Join(absRoot, c.ResDir)
	if isDir(configured) {
		return configured
	}

	if found := detectResDirs(absRoot); len(found) == 1 {
		return found[0]
	}
	return configured
}

// detectResDirs finds */src/main/res directories that contain values/.
func detectResDirs(absRoot string) []string {
	matches, err := filepath.Glob(filepath.Join(absRoot, "*", "src", "main", "res"))
	if err != nil {
		return nil
	}
	var dirs []string
	for _, m := range matches {
		if isDir(filepath.Join(m, "values")) {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// PlanPaths returns the configured plan files as absolute paths.
func (c *Config) PlanPaths(rootDir string) []string {
	paths := make([]string, len(c.Plans))
	for i, p := range c.Plans {
		if filepath.IsAbs(p) {
			paths[i] = p
		} else {
			paths[i] = filepath.Join(rootDir, p)
		}
	}
	return paths
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
