package android

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// Parse tests
// ---------------------------------------------------------------------------

func TestParse_BasicString(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name">My App</string>
    <string name="hello">Hello World</string>
</resources>`

	f, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(f.Entries))
	}
	v, ok := f.Get("app_name")
	if !ok || v != "My App" {
		t.Errorf("app_name: got %q ok=%v, want %q", v, ok, "My App")
	}
	v, ok = f.Get("hello")
	if !ok || v != "Hello World" {
		t.Errorf("hello: got %q ok=%v, want %q", v, ok, "Hello World")
	}
}

func TestParse_EmptyElementHasEmptyValue(t *testing.T) {
	xml := `<resources>
    <string name="blank"></string>
    <string name="self_closed"/>
</resources>`

	f, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := map[string]string{"blank": "", "self_closed": ""}
	if diff := cmp.Diff(want, f.Table()); diff != "" {
		t.Errorf("Table() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TranslatableFalse(t *testing.T) {
	xml := `<resources>
    <string name="app_name" translatable="false">MyApp</string>
    <string name="greeting">Hello</string>
</resources>`

	f, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if e := f.GetEntry("app_name"); e == nil || e.Translatable {
		t.Errorf("app_name: got %+v, want Translatable=false", e)
	}
	if e := f.GetEntry("greeting"); e == nil || !e.Translatable {
		t.Errorf("greeting: got %+v, want Translatable=true", e)
	}
}

func TestParse_ArraysAndPluralsStayOutOfTable(t *testing.T) {
	xml := `<resources>
    <!-- Priorities -->
    <string-array name="priorities">
        <item>Low</item>
        <item>High</item>
    </string-array>
    <plurals name="tasks_left">
        <item quantity="one">%d task</item>
        <item quantity="other">%d tasks</item>
    </plurals>
    <string name="title">Tasks</string>
</resources>`

	f, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(f.Entries))
	}
	if f.Entries[0].Kind != KindComment || f.Entries[0].Comment != "Priorities" {
		t.Errorf("entry 0: got %+v, want comment", f.Entries[0])
	}
	arr := f.GetEntry("priorities")
	if arr == nil || arr.Kind != KindStringArray {
		t.Fatalf("priorities: got %+v", arr)
	}
	if diff := cmp.Diff([]string{"Low", "High"}, arr.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if p := f.GetEntry("tasks_left"); p == nil || p.Kind != KindPlurals || len(p.Items) != 2 {
		t.Errorf("tasks_left: got %+v", p)
	}

	if diff := cmp.Diff(map[string]string{"title": "Tasks"}, f.Table()); diff != "" {
		t.Errorf("Table() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"title"}, f.StringNames()); diff != "" {
		t.Errorf("StringNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_InlineXliffPreserved(t *testing.T) {
	xml := `<resources xmlns:xliff="urn:oasis:names:tc:xliff:document:1.2">
    <string name="removed">Removed <xliff:g id="count">%d</xliff:g> tasks</string>
</resources>`

	f, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := `Removed <xliff:g id="count">%d</xliff:g> tasks`
	if v, _ := f.Get("removed"); v != want {
		t.Errorf("removed: got %q, want %q", v, want)
	}
}

func TestParse_MalformedIsError(t *testing.T) {
	xml := `<resources>
    <string name="a">unterminated
</resources>`

	if _, err := Parse([]byte(xml)); err == nil {
		t.Fatal("Parse() error = nil, want error for malformed XML")
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Fatal("ParseFile(missing) error = nil, want error")
	}
}

// ---------------------------------------------------------------------------
// Layout tests
// ---------------------------------------------------------------------------

func TestLocaleFromDir(t *testing.T) {
	tests := []struct {
		dir    string
		want   string
		wantOK bool
	}{
		{"values", DefaultLocale, true},
		{"values-ru", "ru", true},
		{"values-pt-rBR", "pt-BR", true},
		{"values-b+sr+Latn", "sr-Latn", true},
		{"values-v21", "", false},
		{"values-night", "", false},
		{"values-", "", false},
		{"drawable", "", false},
	}

	for _, tc := range tests {
		got, ok := LocaleFromDir(tc.dir)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("LocaleFromDir(%q) = %q, %v; want %q, %v", tc.dir, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestLocaleDirName(t *testing.T) {
	tests := map[string]string{
		DefaultLocale: "values",
		"ru":          "values-ru",
		"pt-BR":       "values-pt-rBR",
		"zh-Hant":     "values-b+zh+Hant",
	}
	for in, want := range tests {
		if got := LocaleDirName(in); got != want {
			t.Errorf("LocaleDirName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectLocales(t *testing.T) {
	res := t.TempDir()
	for _, dir := range []string{"values", "values-ru", "values-ar", "values-v21", "values-de"} {
		if err := os.MkdirAll(filepath.Join(res, dir), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if dir == "values-de" {
			continue // no strings.xml
		}
		if err := os.WriteFile(filepath.Join(res, dir, StringsFile), []byte("<resources/>"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := DetectLocales(res)
	if err != nil {
		t.Fatalf("DetectLocales() error: %v", err)
	}
	var locales []string
	for _, d := range got {
		locales = append(locales, d.Locale)
	}
	want := []string{DefaultLocale, "ar", "ru"}
	if diff := cmp.Diff(want, locales); diff != "" {
		t.Errorf("DetectLocales() mismatch (-want +got):\n%s", diff)
	}
	if got[2].Path != StringsXMLPath(res, "ru") {
		t.Errorf("ru path = %q, want %q", got[2].Path, StringsXMLPath(res, "ru"))
	}
}

func TestDetectLocales_MissingDir(t *testing.T) {
	if _, err := DetectLocales(filepath.Join(t.TempDir(), "res")); err == nil {
		t.Fatal("DetectLocales(missing) error = nil, want error")
	}
}
