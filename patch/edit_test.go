package patch

import (
	"errors"
	"strings"
	"testing"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- About dialog strings -->
    <string name="about_title">Acerca de</string>
    <string name="about_summary">Una app
        de tareas</string>
    <string name="about_developer">Desarrollado por: alguien</string>
    <string name="about_email">Correo: viejo@example.com</string>

    <!-- Theme selection strings -->
    <string name="theme_dark">Oscuro</string>
</resources>
`

func TestInsert_AppendsBeforeClosingTag(t *testing.T) {
	content := "<resources>\n    <string name=\"a\">A</string>\n</resources>\n"
	frags := []string{`<string name="b">B</string>`, `<string name="c">C</string>`}

	got, err := Insert(content, frags, DefaultIndent, true)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	want := "<resources>\n    <string name=\"a\">A</string>\n" +
		"\n    <string name=\"b\">B</string>\n    <string name=\"c\">C</string>\n" +
		"</resources>\n"
	if got != want {
		t.Fatalf("Insert() = %q, want %q", got, want)
	}

	// everything outside the inserted block is byte-identical
	at := strings.LastIndex(content, ClosingTag)
	if !strings.HasPrefix(got, content[:at]) || !strings.HasSuffix(got, content[at:]) {
		t.Fatalf("Insert() altered content outside the insertion point")
	}
}

func TestInsert_WithoutLeadingNewline(t *testing.T) {
	got, err := Insert("<resources>\n</resources>", []string{"<string name=\"ok\">OK</string>"}, DefaultIndent, false)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	want := "<resources>\n    <string name=\"ok\">OK</string>\n</resources>"
	if got != want {
		t.Fatalf("Insert() = %q, want %q", got, want)
	}
}

func TestInsert_UsesLastClosingTag(t *testing.T) {
	content := "<resources>\n<!-- </resources> -->\n</resources>"
	got, err := Insert(content, []string{"X"}, "", false)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	want := "<resources>\n<!-- </resources> -->\nX\n</resources>"
	if got != want {
		t.Fatalf("Insert() = %q, want %q", got, want)
	}
}

func TestInsert_EmptyFragmentIsBlankLine(t *testing.T) {
	got, err := Insert("</resources>", []string{"A", "", "B"}, DefaultIndent, false)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if want := "    A\n\n    B\n</resources>"; got != want {
		t.Fatalf("Insert() = %q, want %q", got, want)
	}
}

func TestInsert_MissingClosingTag(t *testing.T) {
	content := "<resources>\n    <string name=\"a\">A</string>\n"
	got, err := Insert(content, []string{"<string name=\"b\">B</string>"}, DefaultIndent, true)
	if !errors.Is(err, ErrNoClosingTag) {
		t.Fatalf("Insert() error = %v, want ErrNoClosingTag", err)
	}
	if got != content {
		t.Fatalf("Insert() modified content on failure: %q", got)
	}
}

func TestInsert_NotIdempotent(t *testing.T) {
	frag := []string{`<string name="b">B</string>`}
	once, _ := Insert("<resources>\n</resources>", frag, DefaultIndent, false)
	twice, _ := Insert(once, frag, DefaultIndent, false)
	if n := strings.Count(twice, `name="b"`); n != 2 {
		t.Fatalf("second Insert() produced %d copies, want 2", n)
	}
}

func TestReplaceEntry(t *testing.T) {
	got, outcome := ReplaceEntry(sample, DefaultIndent, "about_email", "Email: jwtiyar@gmail.com")
	if outcome != Changed {
		t.Fatalf("outcome = %v, want changed", outcome)
	}
	if !strings.Contains(got, `    <string name="about_email">Email: jwtiyar@gmail.com</string>`) {
		t.Fatalf("replacement missing from output:\n%s", got)
	}
	if strings.Contains(got, "viejo@example.com") {
		t.Fatalf("old value still present:\n%s", got)
	}
}

func TestReplaceEntry_Idempotent(t *testing.T) {
	once, _ := ReplaceEntry(sample, DefaultIndent, "about_developer", "Developed by: Jwtyar Nariman")
	twice, outcome := ReplaceEntry(once, DefaultIndent, "about_developer", "Developed by: Jwtyar Nariman")
	if twice != once {
		t.Fatalf("second ReplaceEntry() changed content")
	}
	if outcome != Unchanged {
		t.Fatalf("second outcome = %v, want unchanged", outcome)
	}
}

func TestReplaceEntry_NotFound(t *testing.T) {
	got, outcome := ReplaceEntry(sample, DefaultIndent, "about_github", "GitHub: x")
	if outcome != NotFound || got != sample {
		t.Fatalf("ReplaceEntry(absent) = outcome %v, changed=%v; want not found, unchanged", outcome, got != sample)
	}
}

func TestReplaceEntry_ValueIsLiteral(t *testing.T) {
	got, _ := ReplaceEntry(sample, DefaultIndent, "theme_dark", "$1 cost")
	if !strings.Contains(got, `<string name="theme_dark">$1 cost</string>`) {
		t.Fatalf("replacement was expanded:\n%s", got)
	}
}

func TestReplaceEntry_Multiline(t *testing.T) {
	content := "<resources>\n    <string name=\"about_developer\">Desarrollado\n        por: X</string>\n" +
		"    <string name=\"about_email\">Email: x</string>\n</resources>\n"
	got, outcome := ReplaceEntry(content, DefaultIndent, "about_developer", "Developed by: Jwtyar Nariman")
	if outcome != Changed {
		t.Fatalf("outcome = %v, want changed", outcome)
	}
	want := "<resources>\n    <string name=\"about_developer\">Developed by: Jwtyar Nariman</string>\n" +
		"    <string name=\"about_email\">Email: x</string>\n</resources>\n"
	if got != want {
		t.Fatalf("ReplaceEntry() = %q, want %q", got, want)
	}
}

func TestRemoveEntry_Multiline(t *testing.T) {
	got, outcome := RemoveEntry(sample, DefaultIndent, "about_summary")
	if outcome != Changed {
		t.Fatalf("outcome = %v, want changed", outcome)
	}
	if strings.Contains(got, "about_summary") || strings.Contains(got, "de tareas") {
		t.Fatalf("about_summary not fully removed:\n%s", got)
	}
	want := strings.Replace(sample, "    <string name=\"about_summary\">Una app\n        de tareas</string>\n", "", 1)
	if got != want {
		t.Fatalf("RemoveEntry() = %q, want %q", got, want)
	}
}

func TestRemoveEntry_SecondRemovalIsNoop(t *testing.T) {
	once, _ := RemoveEntry(sample, DefaultIndent, "about_summary")
	twice, outcome := RemoveEntry(once, DefaultIndent, "about_summary")
	if outcome != NotFound {
		t.Fatalf("second outcome = %v, want not found", outcome)
	}
	if twice != once {
		t.Fatalf("second RemoveEntry() altered the content")
	}
}

var aboutSection = Section{
	Start: `    <!-- About dialog strings -->.*?<string name="about_title">.*?</string>\n`,
	Ends: []string{
		"    <!-- Theme selection strings -->",
		"\n    <!-- Navigation drawer strings -->",
		"</resources>",
	},
}

var contactLines = []string{
	`    <string name="about_developer">Developed by: Jwtyar Nariman</string>`,
	`    <string name="about_email">Email: jwtiyar@gmail.com</string>`,
}

func TestReplaceSection(t *testing.T) {
	got, outcome, err := ReplaceSection(sample, aboutSection, contactLines)
	if err != nil {
		t.Fatalf("ReplaceSection() error: %v", err)
	}
	if outcome != Changed {
		t.Fatalf("outcome = %v, want changed", outcome)
	}
	want := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- About dialog strings -->
    <string name="about_title">Acerca de</string>
    <string name="about_developer">Developed by: Jwtyar Nariman</string>
    <string name="about_email">Email: jwtiyar@gmail.com</string>

    <!-- Theme selection strings -->
    <string name="theme_dark">Oscuro</string>
</resources>
`
	if got != want {
		t.Fatalf("ReplaceSection() =\n%s\nwant\n%s", got, want)
	}

	again, outcome, err := ReplaceSection(got, aboutSection, contactLines)
	if err != nil || outcome != Unchanged || again != got {
		t.Fatalf("second ReplaceSection() = outcome %v err %v, want unchanged", outcome, err)
	}
}

func TestReplaceSection_FallsBackToClosingTag(t *testing.T) {
	content := "<resources>\n    <!-- About dialog strings -->\n    <string name=\"about_title\">T</string>\n    <string name=\"x\">X</string>\n</resources>"
	got, outcome, err := ReplaceSection(content, aboutSection, []string{"    L"})
	if err != nil || outcome != Changed {
		t.Fatalf("ReplaceSection() outcome %v err %v", outcome, err)
	}
	want := "<resources>\n    <!-- About dialog strings -->\n    <string name=\"about_title\">T</string>\n    L\n\n</resources>"
	if got != want {
		t.Fatalf("ReplaceSection() = %q, want %q", got, want)
	}
}

func TestReplaceSection_NotFound(t *testing.T) {
	content := "<resources>\n</resources>"
	got, outcome, err := ReplaceSection(content, aboutSection, contactLines)
	if err != nil || outcome != NotFound || got != content {
		t.Fatalf("ReplaceSection(no section) = outcome %v err %v", outcome, err)
	}
}

func TestReplaceSection_BadPattern(t *testing.T) {
	_, _, err := ReplaceSection(sample, Section{Start: "(", Ends: []string{"x"}}, nil)
	if err == nil {
		t.Fatal("ReplaceSection(bad regex) error = nil, want error")
	}
}
