// Package android reads Android strings.xml resource files and the
// values-XX/ directory layout that holds them.
//
// Supported resource types:
//   - <string>        — simple key/value string
//   - <string-array>  — ordered list of strings
//   - <plurals>       — quantity-keyed plural forms
//
// Only <string> resources take part in locale tables; arrays and plurals are
// parsed so that their <item> children are not mistaken for strings.
package android

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// EntryKind identifies the type of a resource entry.
type EntryKind int

const (
	// KindString is a plain <string> resource.
	KindString EntryKind = iota
	// KindStringArray is a <string-array> resource.
	KindStringArray
	// KindPlurals is a <plurals> resource.
	KindPlurals
	// KindComment is an XML comment directly under <resources>.
	KindComment
)

// Entry is a single item under <resources>.
type Entry struct {
	Kind EntryKind
	// Name is the name="…" attribute. Empty for comments.
	Name string
	// Translatable reflects translatable="…". Defaults to true.
	Translatable bool
	// Value is the text of a <string>, with inline child elements such as
	// <xliff:g> reconstructed as raw markup.
	Value string
	// Items holds <item> values of a <string-array>, or of a <plurals> block
	// in document order.
	Items []string
	// Comment is the trimmed comment text for KindComment.
	Comment string
}

// File is a parsed strings.xml.
type File struct {
	// Entries in document order.
	Entries []*Entry
	byName  map[string]int
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a strings.xml file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses strings.xml data. Malformed markup is an error; a document
// without a <resources> root yields an empty File.
func Parse(data []byte) (*File, error) {
	f := &File{byName: make(map[string]int)}

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if t.Name.Local != "resources" {
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					depth--
				}
				continue
			}

			var e *Entry
			switch t.Name.Local {
			case "string":
				e, err = parseString(dec, t)
			case "string-array":
				e, err = parseItems(dec, t, KindStringArray)
			case "plurals":
				e, err = parseItems(dec, t, KindPlurals)
			default:
				err = dec.Skip()
			}
			if err != nil {
				return nil, err
			}
			// the parse helpers consume the matching end element
			depth--
			if e != nil {
				f.addEntry(e)
			}

		case xml.Comment:
			if depth == 1 {
				if c := strings.TrimSpace(string(t)); c != "" {
					f.Entries = append(f.Entries, &Entry{Kind: KindComment, Comment: c})
				}
			}

		case xml.EndElement:
			depth--
		}
	}

	return f, nil
}

func (f *File) addEntry(e *Entry) {
	f.byName[e.Name] = len(f.Entries)
	f.Entries = append(f.Entries, e)
}

func parseAttrs(elem xml.StartElement) (name string, translatable bool) {
	translatable = true
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "name":
			name = attr.Value
		case "translatable":
			if strings.EqualFold(attr.Value, "false") {
				translatable = false
			}
		}
	}
	return
}

func parseString(dec *xml.Decoder, elem xml.StartElement) (*Entry, error) {
	name, translatable := parseAttrs(elem)
	var b strings.Builder
	if err := readElementContent(dec, &b); err != nil {
		return nil, fmt.Errorf("reading <string name=%q>: %w", name, err)
	}
	return &Entry{Kind: KindString, Name: name, Translatable: translatable, Value: b.String()}, nil
}

// parseItems reads the <item> children of a <string-array> or <plurals>.
func parseItems(dec *xml.Decoder, elem xml.StartElement, kind EntryKind) (*Entry, error) {
	name, translatable := parseAttrs(elem)
	e := &Entry{Kind: kind, Name: name, Translatable: translatable}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <%s name=%q>: %w", elem.Name.Local, name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				var b strings.Builder
				if err := readElementContent(dec, &b); err != nil {
					return nil, fmt.Errorf("reading <item> in %q: %w", name, err)
				}
				e.Items = append(e.Items, b.String())
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// readElementContent reads the inner content of an element up to its close
// tag. Inline child elements are written back as raw markup so that
// placeholders like <xliff:g id="n">%d</xliff:g> survive.
func readElementContent(dec *xml.Decoder, b *strings.Builder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
			b.WriteString("<" + qualified(t.Name))
			for _, attr := range t.Attr {
				fmt.Fprintf(b, ` %s="%s"`, attr.Name.Local, attr.Value)
			}
			b.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</" + qualified(t.Name) + ">")
			}
		}
	}
	return nil
}

// xliffNS is the namespace Android declares for the xliff prefix.
const xliffNS = "urn:oasis:names:tc:xliff:document:1.2"

// qualified renders an element name with its prefix. encoding/xml puts the
// resolved namespace URI in Name.Space when the prefix is declared, and the
// bare prefix when it is not.
func qualified(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case xliffNS:
		return "xliff:" + n.Local
	}
	return n.Space + ":" + n.Local
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Get returns the value of a <string> resource.
func (f *File) Get(name string) (string, bool) {
	e := f.GetEntry(name)
	if e == nil || e.Kind != KindString {
		return "", false
	}
	return e.Value, true
}

// GetEntry returns the entry for a resource name, or nil.
func (f *File) GetEntry(name string) *Entry {
	idx, ok := f.byName[name]
	if !ok {
		return nil
	}
	return f.Entries[idx]
}

// Table maps every <string> name to its text. Elements with no text map to "".
func (f *File) Table() map[string]string {
	t := make(map[string]string)
	for _, e := range f.Entries {
		if e.Kind == KindString {
			t[e.Name] = e.Value
		}
	}
	return t
}

// StringNames returns <string> names in document order.
func (f *File) StringNames() []string {
	var names []string
	for _, e := range f.Entries {
		if e.Kind == KindString {
			names = append(names, e.Name)
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// res/ directory layout
// ---------------------------------------------------------------------------

// DefaultLocale is the locale code used for the unsuffixed values/ directory.
const DefaultLocale = "default"

// StringsFile is the resource file name inside each values directory.
const StringsFile = "strings.xml"

// LocaleDir describes one values directory that contains a strings.xml.
type LocaleDir struct {
	// Locale is the BCP-47 style code ("pt-BR"), or DefaultLocale.
	Locale string
	// Dir is the directory name, e.g. "values-pt-rBR".
	Dir string
	// Path is the full path to strings.xml.
	Path string
}

// DetectLocales scans an Android res/ directory for values/ and values-XX/
// directories containing strings.xml. Qualifiers that are not language tags
// (values-night, values-v21, values-land) are ignored. The result is sorted
// by locale with DefaultLocale first.
func DetectLocales(resDir string) ([]LocaleDir, error) {
	entries, err := os.ReadDir(resDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resDir, err)
	}

	var dirs []LocaleDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		locale, ok := LocaleFromDir(name)
		if !ok {
			continue
		}
		path := filepath.Join(resDir, name, StringsFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		dirs = append(dirs, LocaleDir{Locale: locale, Dir: name, Path: path})
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].Locale == DefaultLocale || dirs[j].Locale == DefaultLocale {
			return dirs[i].Locale == DefaultLocale
		}
		return dirs[i].Locale < dirs[j].Locale
	})
	return dirs, nil
}

// LocaleFromDir maps a values directory name to a locale code.
// "values" → DefaultLocale, "values-pt-rBR" → "pt-BR", "values-b+sr+Latn" →
// "sr-Latn". It reports false for non-locale qualifiers.
func LocaleFromDir(dir string) (string, bool) {
	if dir == "values" {
		return DefaultLocale, true
	}
	qualifier, ok := strings.CutPrefix(dir, "values-")
	if !ok || qualifier == "" {
		return "", false
	}
	locale := androidLocaleToStandard(qualifier)
	if _, err := language.Parse(locale); err != nil {
		return "", false
	}
	return locale, true
}

// LocaleDirName converts a locale code to a values directory name
// ("pt-BR" → "values-pt-rBR", "ru" → "values-ru", DefaultLocale → "values").
func LocaleDirName(locale string) string {
	if locale == DefaultLocale || locale == "" {
		return "values"
	}
	return "values-" + standardToAndroidLocale(locale)
}

// StringsXMLPath returns the strings.xml path for a locale under resDir.
func StringsXMLPath(resDir, locale string) string {
	return filepath.Join(resDir, LocaleDirName(locale), StringsFile)
}

// androidLocaleToStandard converts Android qualifiers to BCP-47.
// "pt-rBR" → "pt-BR", "b+zh+Hant" → "zh-Hant", "ru" → "ru".
func androidLocaleToStandard(q string) string {
	if rest, ok := strings.CutPrefix(q, "b+"); ok {
		return strings.ReplaceAll(rest, "+", "-")
	}
	if idx := strings.Index(q, "-r"); idx >= 0 {
		return q[:idx] + "-" + q[idx+2:]
	}
	return q
}

// standardToAndroidLocale converts BCP-47 to the Android qualifier form.
func standardToAndroidLocale(lang string) string {
	parts := strings.Split(lang, "-")
	switch {
	case len(parts) == 1:
		return lang
	case len(parts) == 2 && len(parts[1]) == 2:
		return parts[0] + "-r" + strings.ToUpper(parts[1])
	default:
		return "b+" + strings.Join(parts, "+")
	}
}
