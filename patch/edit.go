// Package patch edits Android strings.xml files as raw text.
//
// Edits never go through an XML writer: everything outside the matched
// region is kept byte-for-byte, so a patched file produces a minimal diff.
// The price is the usual regex fragility: anchors are assumed to be unique
// and replacement values are inserted verbatim, without XML escaping.
package patch

import (
	"errors"
	"regexp"
	"strings"
)

// ClosingTag is the root close tag insertions are anchored on.
const ClosingTag = "</resources>"

// DefaultIndent is the indentation used for entries directly under <resources>.
const DefaultIndent = "    "

var (
	// ErrNoClosingTag is returned when a file has no </resources> tag.
	ErrNoClosingTag = errors.New("could not find " + ClosingTag + " tag")
	// ErrEntryNotFound marks a replace or remove whose target is absent.
	ErrEntryNotFound = errors.New("entry not found")
)

// Outcome is the result of applying one edit to a document.
type Outcome int

const (
	// Changed means the document was modified.
	Changed Outcome = iota
	// Unchanged means the target was found and already in the desired state.
	Unchanged
	// NotFound means the target entry or section does not exist.
	NotFound
	// Skipped means a guard prevented the edit.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	case NotFound:
		return "not found"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Insert places fragments immediately before the last </resources> tag,
// one per line, each prefixed with indent. An empty fragment produces an
// empty line. With leadingNewline the block starts on a fresh line.
//
// The content is returned unchanged with ErrNoClosingTag when the tag is
// missing. Insert does not check for existing entries: inserting the same
// fragments twice duplicates them.
func Insert(content string, fragments []string, indent string, leadingNewline bool) (string, error) {
	at := strings.LastIndex(content, ClosingTag)
	if at == -1 {
		return content, ErrNoClosingTag
	}
	if len(fragments) == 0 {
		return content, nil
	}

	var b strings.Builder
	b.Grow(len(content) + 64*len(fragments))
	b.WriteString(content[:at])
	if leadingNewline {
		b.WriteString("\n")
	}
	for _, f := range fragments {
		if f != "" {
			b.WriteString(indent)
			b.WriteString(f)
		}
		b.WriteString("\n")
	}
	b.WriteString(content[at:])
	return b.String(), nil
}

// StringElement renders <string name="name">value</string> with indent.
// The value is raw markup.
func StringElement(indent, name, value string) string {
	return indent + `<string name="` + name + `">` + value + `</string>`
}

// entryPattern matches an indented <string name="name"> element. The body
// match is non-greedy; dotAll lets it span lines.
func entryPattern(indent, name string, dotAll, trailingNewline bool) *regexp.Regexp {
	expr := regexp.QuoteMeta(indent+`<string name="`+name+`">`) + `.*?</string>`
	if trailingNewline {
		expr += `\n`
	}
	if dotAll {
		expr = `(?s)` + expr
	}
	return regexp.MustCompile(expr)
}

// ReplaceEntry replaces every <string name="name"> element at the given
// indentation with the same element holding value. The element may span lines.
func ReplaceEntry(content, indent, name, value string) (string, Outcome) {
	re := entryPattern(indent, name, true, false)
	if !re.MatchString(content) {
		return content, NotFound
	}
	out := re.ReplaceAllLiteralString(content, StringElement(indent, name, value))
	if out == content {
		return content, Unchanged
	}
	return out, Changed
}

// RemoveEntry deletes the <string name="name"> element at the given
// indentation, including its trailing newline. The element may span lines.
func RemoveEntry(content, indent, name string) (string, Outcome) {
	re := entryPattern(indent, name, true, true)
	if !re.MatchString(content) {
		return content, NotFound
	}
	return re.ReplaceAllLiteralString(content, ""), Changed
}

// Section identifies a region of the document: start is a regular
// expression for the header that stays in place, ends are literal anchors
// that terminate the region (the first one found wins) and also stay.
type Section struct {
	Start string
	Ends  []string
}

func (s Section) compile() (*regexp.Regexp, error) {
	ends := make([]string, len(s.Ends))
	for i, e := range s.Ends {
		ends[i] = regexp.QuoteMeta(e)
	}
	return regexp.Compile(`(?s)(` + s.Start + `)(.*?)(` + strings.Join(ends, "|") + `)`)
}

// ReplaceSection replaces the body of every occurrence of a section with
// lines (each followed by a newline) plus one blank line.
func ReplaceSection(content string, s Section, lines []string) (string, Outcome, error) {
	re, err := s.compile()
	if err != nil {
		return content, NotFound, err
	}

	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, NotFound, nil
	}

	body := strings.Join(lines, "\n") + "\n\n"
	var b strings.Builder
	last := 0
	for _, m := range matches {
		// m[2:4] header, m[4:6] body, m[6:8] end anchor
		b.WriteString(content[last:m[3]])
		b.WriteString(body)
		b.WriteString(content[m[6]:m[7]])
		last = m[1]
	}
	b.WriteString(content[last:])

	out := b.String()
	if out == content {
		return content, Unchanged, nil
	}
	return out, Changed, nil
}
