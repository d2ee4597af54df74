package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/respatch/langmeta"
)

const (
	rule       = "================================================================================"
	maxMissing = 10
	maxHits    = 5
	maxDialog  = 5
)

// printer remembers the first write error so the report code can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) f(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) ln(s string) { p.f("%s\n", s) }

func (p *printer) header(title string) {
	p.ln(rule)
	p.ln(title)
	p.ln(rule)
}

// Write prints the analysis report, the manual testing checklist and the
// summary, in that order.
func (r *Result) Write(w io.Writer) error {
	if err := r.WriteReport(w); err != nil {
		return err
	}
	if err := r.WriteChecklist(w); err != nil {
		return err
	}
	return r.WriteSummary(w)
}

func statusLabel(st LocaleStats) string {
	if st.ParseErr != nil {
		return "❌ PARSE ERROR"
	}
	switch st.Band() {
	case BandComplete:
		return "✅ COMPLETE"
	case BandIncomplete:
		return "⚠️  INCOMPLETE"
	}
	return "❌ MISSING MANY"
}

func displayName(locale string) string {
	if m := langmeta.Resolve(locale); m.English != locale {
		return m.English
	}
	return ""
}

// WriteReport prints the inventory, completeness, missing keys, RTL,
// dialog coverage and English leakage sections.
func (r *Result) WriteReport(w io.Writer) error {
	p := &printer{w: w}

	for _, err := range r.ParseErrors {
		p.f("Error %v\n", err)
	}

	p.header("LOCALIZATION TESTING REPORT")
	p.ln("")

	p.f("SUPPORTED LOCALES (%d):\n", len(r.Locales))
	for i, loc := range r.Locales {
		if name := displayName(loc); name != "" {
			p.f("%2d. %-8s %s\n", i+1, loc, name)
		} else {
			p.f("%2d. %s\n", i+1, loc)
		}
	}
	p.ln("")

	p.ln("LOCALIZATION COMPLETENESS ANALYSIS:")
	p.ln(strings.Repeat("-", 50))
	for _, st := range r.Stats {
		p.f("%-8s: %6.1f%% complete - %3d/%3d strings %s\n",
			st.Locale, st.Percent, st.Keys, st.RefKeys, statusLabel(st))
	}
	p.ln("")

	p.ln("MISSING TRANSLATIONS BY LOCALE:")
	p.ln(strings.Repeat("-", 40))
	for _, st := range r.Stats {
		if len(st.Missing) == 0 {
			continue
		}
		p.f("\n%s - Missing %d strings:\n", strings.ToUpper(st.Locale), len(st.Missing))
		for i, key := range st.Missing[:min(len(st.Missing), maxMissing)] {
			p.f("  %2d. %s\n", i+1, key)
		}
		if len(st.Missing) > maxMissing {
			p.f("     ... and %d more\n", len(st.Missing)-maxMissing)
		}
	}

	p.ln("\nRTL (RIGHT-TO-LEFT) LANGUAGE SUPPORT:")
	p.ln(strings.Repeat("-", 40))
	for _, rtl := range r.RTL {
		if rtl.Present {
			p.f("✅ %s: %.1f%% complete\n", rtl.Locale, rtl.Stats.Percent)
		} else {
			p.f("❌ %s: Not supported\n", rtl.Locale)
		}
	}

	p.ln("\nDIALOG-SPECIFIC STRING ANALYSIS:")
	p.ln(strings.Repeat("-", 35))
	p.ln("Key dialog strings coverage:")
	for _, dc := range r.Dialog {
		if len(dc.Missing) == 0 {
			p.f("✅ %s: Complete in all locales\n", dc.Name)
			continue
		}
		shown := dc.Missing[:min(len(dc.Missing), maxDialog)]
		p.f("❌ %s: Missing in %d locales: %s\n", dc.Name, len(dc.Missing), strings.Join(shown, ", "))
	}

	p.ln("\nPOTENTIAL ENGLISH TEXT IN TRANSLATIONS:")
	p.ln(strings.Repeat("-", 42))
	for _, lk := range r.Leakage {
		p.f("\n%s - Potential English text found:\n", strings.ToUpper(lk.Locale))
		for _, h := range lk.Hits[:min(len(lk.Hits), maxHits)] {
			p.f("  %s: \"%s\"\n", h.Key, h.Value)
		}
		if len(lk.Hits) > maxHits {
			p.f("  ... and %d more\n", len(lk.Hits)-maxHits)
		}
	}

	return p.err
}

// rtlNames renders the configured right-to-left languages as "Arabic & Kurdish".
func (r *Result) rtlNames() string {
	names := make([]string, len(r.Options.RTLLocales))
	for i, loc := range r.Options.RTLLocales {
		names[i] = langmeta.Resolve(loc).English
	}
	return strings.Join(names, " & ")
}

// WriteChecklist prints the manual testing checklist for a human tester.
func (r *Result) WriteChecklist(w io.Writer) error {
	p := &printer{w: w}

	p.ln("")
	p.header("MANUAL TESTING CHECKLIST")

	p.ln("\n1. BUILD VERIFICATION:")
	p.ln("   ✅ App builds successfully")
	p.ln("   ⚠️  Warning about missing theme_system default value noted")

	p.ln("\n2. LOCALE TESTING PROCEDURE:")
	p.ln("   For each supported locale, test the following:")

	p.ln("\n   DEVICE/EMULATOR SETUP:")
	p.ln("   a) Change system language to target locale")
	p.ln("   b) Force-stop and restart the app")
	p.ln("   c) Verify app language switches correctly")

	p.ln("\n   DIALOG TESTING:")
	p.ln("   d) Open 'Add Task' dialog - check all text is translated")
	p.ln("   e) Open 'About' dialog - verify all content is localized")
	p.ln("   f) Open 'Theme Selection' dialog - check options are translated")

	if len(r.Options.RTLLocales) > 0 {
		p.f("\n   RTL TESTING (%s):\n", r.rtlNames())
		p.ln("   g) Verify text flows right-to-left")
		p.ln("   h) Check UI layout adapts to RTL (buttons, icons, etc.)")
		p.ln("   i) Ensure no text is cut off or overlapping")
	}

	p.ln("\n3. LOCALES TO TEST:")
	for i, loc := range r.Locales {
		marker := ""
		if r.IsRTL(loc) {
			marker = " (RTL)"
		}
		p.f("   %2d. %s%s\n", i+1, loc, marker)
	}

	p.ln("\n4. ISSUES TO LOOK FOR:")
	p.ln("   • English text appearing in non-English locales")
	p.ln("   • Text truncation or UI layout problems")
	p.ln("   • Missing translations (fallback to English)")
	p.ln("   • Incorrect RTL text direction")
	p.ln("   • Dialog buttons not properly translated")

	p.ln("\n5. RECOMMENDED TESTING ORDER:")
	p.ln("   1) English (baseline)")
	p.ln("   2) Arabic (RTL, complex script)")
	p.ln("   3) Kurdish (RTL, different script)")
	p.ln("   4) German (long words, compound terms)")
	p.ln("   5) Japanese (different character set)")
	p.ln("   6) Spanish, French, Italian (Romance languages)")

	return p.err
}

// WriteSummary prints the closing summary block.
func (r *Result) WriteSummary(w io.Writer) error {
	p := &printer{w: w}

	var rtl []string
	for _, s := range r.RTL {
		if s.Present {
			rtl = append(rtl, langmeta.Label(s.Locale))
		}
	}
	supported := "none"
	if len(rtl) > 0 {
		supported = strings.Join(rtl, ", ")
	}

	p.ln("")
	p.header("SUMMARY")
	p.f("Total supported locales: %d\n", len(r.Locales))
	p.f("Locales below 100%%: %d\n", len(r.Incomplete()))
	p.f("RTL languages supported: %s\n", supported)
	p.ln("Build status: ✅ Successful (with minor warning)")
	p.ln("Ready for manual device/emulator testing: ✅ Yes")

	return p.err
}

type jsonLocale struct {
	Locale  string   `json:"locale"`
	Name    string   `json:"name,omitempty"`
	Keys    int      `json:"keys"`
	Percent float64  `json:"percent"`
	Band    string   `json:"band"`
	RTL     bool     `json:"rtl,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
	Error   string   `json:"error,omitempty"`
	Leakage []Hit    `json:"leakage,omitempty"`
}

type jsonReport struct {
	Reference     string           `json:"reference"`
	ReferenceKeys int              `json:"reference_keys"`
	Locales       []jsonLocale     `json:"locales"`
	MissingRTL    []string         `json:"missing_rtl,omitempty"`
	Dialog        []DialogCoverage `json:"dialog"`
}

// WriteJSON prints the analysis as one indented JSON document.
func (r *Result) WriteJSON(w io.Writer) error {
	hits := make(map[string][]Hit, len(r.Leakage))
	for _, lk := range r.Leakage {
		hits[lk.Locale] = lk.Hits
	}

	out := jsonReport{
		Reference:     r.Reference.Name,
		ReferenceKeys: r.Reference.Len(),
		Locales:       make([]jsonLocale, 0, len(r.Stats)),
		Dialog:        r.Dialog,
	}
	for _, st := range r.Stats {
		jl := jsonLocale{
			Locale:  st.Locale,
			Name:    displayName(st.Locale),
			Keys:    st.Keys,
			Percent: st.Percent,
			Band:    st.Band().String(),
			RTL:     r.IsRTL(st.Locale),
			Missing: st.Missing,
			Extra:   st.Extra,
			Leakage: hits[st.Locale],
		}
		if st.ParseErr != nil {
			jl.Error = st.ParseErr.Error()
		}
		out.Locales = append(out.Locales, jl)
	}
	for _, s := range r.RTL {
		if !s.Present {
			out.MissingRTL = append(out.MissingRTL, s.Locale)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
