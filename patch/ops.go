package patch

import (
	"fmt"
	"strings"
)

// Op is a single edit applied to the text of one file.
type Op interface {
	// Apply edits content and reports what happened. A non-nil error fails
	// the whole file; the caller must not write anything in that case.
	Apply(content string) (string, Outcome, error)
	// String describes the op. It is stable and used to fingerprint a target.
	String() string
}

// Guarded is implemented by ops that skip themselves when the file already
// contains a marker. Guard returns that marker.
type Guarded interface {
	Guard() string
}

// InsertOp inserts fragments before </resources>.
type InsertOp struct {
	Fragments      []string
	Indent         string
	LeadingNewline bool
	// UnlessContains skips the insertion when the file already contains
	// this substring anywhere.
	UnlessContains string
}

// Apply implements Op.
func (op InsertOp) Apply(content string) (string, Outcome, error) {
	if !strings.Contains(content, ClosingTag) {
		return content, NotFound, ErrNoClosingTag
	}
	if op.UnlessContains != "" && strings.Contains(content, op.UnlessContains) {
		return content, Skipped, nil
	}
	out, err := Insert(content, op.Fragments, op.Indent, op.LeadingNewline)
	if err != nil {
		return content, NotFound, err
	}
	if out == content {
		return content, Unchanged, nil
	}
	return out, Changed, nil
}

// Guard implements Guarded.
func (op InsertOp) Guard() string { return op.UnlessContains }

func (op InsertOp) String() string {
	s := fmt.Sprintf("insert %d fragment(s)", len(op.Fragments))
	if op.UnlessContains != "" {
		s += fmt.Sprintf(" unless %q present", op.UnlessContains)
	}
	return s + "\n" + strings.Join(op.Fragments, "\n")
}

// ReplaceOp rewrites the value of a named <string>.
type ReplaceOp struct {
	Name   string
	Value  string
	Indent string
	// Required turns a missing entry into ErrEntryNotFound.
	Required bool
}

// Apply implements Op.
func (op ReplaceOp) Apply(content string) (string, Outcome, error) {
	out, outcome := ReplaceEntry(content, op.Indent, op.Name, op.Value)
	return out, outcome, required(op.Required, outcome, op.Name)
}

func (op ReplaceOp) String() string {
	return fmt.Sprintf("replace %s = %q", op.Name, op.Value)
}

// RemoveOp deletes a named <string>.
type RemoveOp struct {
	Name     string
	Indent   string
	Required bool
}

// Apply implements Op.
func (op RemoveOp) Apply(content string) (string, Outcome, error) {
	out, outcome := RemoveEntry(content, op.Indent, op.Name)
	return out, outcome, required(op.Required, outcome, op.Name)
}

func (op RemoveOp) String() string {
	return "remove " + op.Name
}

// SectionOp replaces the body of a section with fixed lines.
type SectionOp struct {
	Section  Section
	Lines    []string
	Required bool
}

// Apply implements Op.
func (op SectionOp) Apply(content string) (string, Outcome, error) {
	out, outcome, err := ReplaceSection(content, op.Section, op.Lines)
	if err != nil {
		return content, outcome, fmt.Errorf("section %q: %w", op.Section.Start, err)
	}
	return out, outcome, required(op.Required, outcome, "section "+op.Section.Start)
}

func (op SectionOp) String() string {
	return fmt.Sprintf("replace section %q\n%s", op.Section.Start, strings.Join(op.Lines, "\n"))
}

func required(req bool, outcome Outcome, target string) error {
	if req && outcome == NotFound {
		return fmt.Errorf("%s: %w", target, ErrEntryNotFound)
	}
	return nil
}
