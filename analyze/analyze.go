// Package analyze compares every locale of an Android res/ directory with a
// reference locale and collects what a translator or tester needs to know:
// missing and extra keys, completeness, right-to-left coverage, dialog
// string coverage and values that still look English.
package analyze

import (
	"regexp"
	"sort"

	"github.com/minios-linux/respatch/android"
)

// Locale is the <string> table of one strings.xml file.
type Locale struct {
	Name string
	Path string
	// Table maps string names to their text.
	Table map[string]string
	// Names holds the keys of Table in document order.
	Names []string
	// ParseErr is set when the file could not be parsed; Table is empty then.
	ParseErr error
}

// Len returns the number of distinct string names.
func (l *Locale) Len() int { return len(l.Table) }

// Has reports whether the locale defines name.
func (l *Locale) Has(name string) bool {
	_, ok := l.Table[name]
	return ok
}

// Set is every locale found under a res directory.
type Set struct {
	// Reference is never nil; it is empty when its file does not exist.
	Reference *Locale
	// Locales excludes the reference and is sorted by name.
	Locales []*Locale
}

// Get returns the locale with the given name, or nil.
func (s *Set) Get(name string) *Locale {
	if s.Reference.Name == name {
		return s.Reference
	}
	for _, l := range s.Locales {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Names returns the non-reference locale names.
func (s *Set) Names() []string {
	names := make([]string, len(s.Locales))
	for i, l := range s.Locales {
		names[i] = l.Name
	}
	return names
}

// NewSet returns a set with an empty reference locale and no translations.
func NewSet(reference string) *Set {
	return &Set{Reference: &Locale{Name: reference, Table: map[string]string{}}}
}

// Load parses every strings.xml under resDir. A file that fails to parse is
// kept as an empty locale with ParseErr set, so one broken translation does
// not hide the others. Only an unreadable resDir is an error.
func Load(resDir, reference string) (*Set, error) {
	dirs, err := android.DetectLocales(resDir)
	if err != nil {
		return nil, err
	}

	set := NewSet(reference)
	for _, d := range dirs {
		l := loadLocale(d)
		if d.Locale == reference {
			set.Reference = l
			continue
		}
		set.Locales = append(set.Locales, l)
	}
	sort.Slice(set.Locales, func(i, j int) bool { return set.Locales[i].Name < set.Locales[j].Name })
	return set, nil
}

func loadLocale(d android.LocaleDir) *Locale {
	l := &Locale{Name: d.Locale, Path: d.Path, Table: map[string]string{}}
	f, err := android.ParseFile(d.Path)
	if err != nil {
		l.ParseErr = err
		return l
	}
	l.Table = f.Table()
	seen := make(map[string]bool, len(l.Table))
	for _, name := range f.StringNames() {
		if !seen[name] {
			seen[name] = true
			l.Names = append(l.Names, name)
		}
	}
	return l
}

// ---------------------------------------------------------------------------
// Completeness
// ---------------------------------------------------------------------------

// Band classifies a completeness percentage.
type Band int

const (
	BandComplete Band = iota
	BandIncomplete
	BandMissingMany
)

func (b Band) String() string {
	switch b {
	case BandComplete:
		return "complete"
	case BandIncomplete:
		return "incomplete"
	}
	return "missing many"
}

// BandOf returns the band for a percentage: 100 and above is complete,
// 90 and above is incomplete, anything lower is missing many.
func BandOf(pct float64) Band {
	switch {
	case pct >= 100:
		return BandComplete
	case pct >= 90:
		return BandIncomplete
	}
	return BandMissingMany
}

// LocaleStats is the comparison of one locale with the reference.
type LocaleStats struct {
	Locale  string
	Keys    int
	RefKeys int
	// Missing keys are in reference document order.
	Missing []string
	// Extra keys are in locale document order.
	Extra []string
	// Percent is (keys - extra) / reference keys, clamped to [0, 100].
	// keys - extra is the number of reference keys the locale defines, so
	// extra keys never make up for missing ones.
	Percent  float64
	ParseErr error
}

// Band classifies Percent.
func (s LocaleStats) Band() Band {
	return BandOf(s.Percent)
}

// Compare diffs loc against ref. An empty reference yields 0%.
func Compare(ref, loc *Locale) LocaleStats {
	st := LocaleStats{
		Locale:   loc.Name,
		Keys:     loc.Len(),
		RefKeys:  ref.Len(),
		ParseErr: loc.ParseErr,
	}
	for _, name := range ref.Names {
		if !loc.Has(name) {
			st.Missing = append(st.Missing, name)
		}
	}
	for _, name := range loc.Names {
		if !ref.Has(name) {
			st.Extra = append(st.Extra, name)
		}
	}

	if st.RefKeys > 0 {
		st.Percent = clamp(float64(st.Keys-len(st.Extra)) / float64(st.RefKeys) * 100)
	}
	return st
}

func clamp(pct float64) float64 {
	return max(0, min(100, pct))
}

// ---------------------------------------------------------------------------
// Dialog and RTL coverage
// ---------------------------------------------------------------------------

// DialogCoverage lists the locales lacking one string name.
type DialogCoverage struct {
	Name    string   `json:"name"`
	Missing []string `json:"missing,omitempty"`
}

// CheckDialogStrings reports coverage of each name that the reference
// defines. Names absent from the reference are left out.
func CheckDialogStrings(set *Set, names []string) []DialogCoverage {
	var out []DialogCoverage
	for _, name := range names {
		if !set.Reference.Has(name) {
			continue
		}
		dc := DialogCoverage{Name: name}
		for _, l := range set.Locales {
			if !l.Has(name) {
				dc.Missing = append(dc.Missing, l.Name)
			}
		}
		out = append(out, dc)
	}
	return out
}

// RTLStatus reports whether a right-to-left locale exists and how complete it is.
type RTLStatus struct {
	Locale  string
	Present bool
	Stats   LocaleStats
}

// CheckRTL looks up each right-to-left locale in set.
func CheckRTL(set *Set, locales []string) []RTLStatus {
	out := make([]RTLStatus, 0, len(locales))
	for _, name := range locales {
		st := RTLStatus{Locale: name}
		if l := set.Get(name); l != nil && l != set.Reference {
			st.Present = true
			st.Stats = Compare(set.Reference, l)
		}
		out = append(out, st)
	}
	return out
}

// ---------------------------------------------------------------------------
// English leakage
// ---------------------------------------------------------------------------

// Hit is one value that contains at least one English word.
type Hit struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Words are the matched words in the order they were configured.
	Words []string `json:"words"`
}

// Leakage is the set of hits for one locale.
type Leakage struct {
	Locale string
	Hits   []Hit
}

// Scanner finds configured English words in translated values.
type Scanner struct {
	words    []string
	patterns []*regexp.Regexp
}

// NewScanner compiles one case-insensitive, whole-word pattern per word.
// Word boundaries are Unicode-aware: a letter from any script next to the
// word prevents a match, so "Taskы" is not a hit.
func NewScanner(words []string) *Scanner {
	s := &Scanner{words: words}
	for _, w := range words {
		expr := `(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(w) + `(?:[^\p{L}\p{N}_]|$)`
		s.patterns = append(s.patterns, regexp.MustCompile(expr))
	}
	return s
}

// Match returns the words found in value.
func (s *Scanner) Match(value string) []string {
	var found []string
	for i, re := range s.patterns {
		if re.MatchString(value) {
			found = append(found, s.words[i])
		}
	}
	return found
}

// Scan returns one hit per non-empty value containing a word, in document order.
func (s *Scanner) Scan(l *Locale) []Hit {
	var hits []Hit
	for _, key := range l.Names {
		value := l.Table[key]
		if value == "" {
			continue
		}
		if words := s.Match(value); len(words) > 0 {
			hits = append(hits, Hit{Key: key, Value: value, Words: words})
		}
	}
	return hits
}

// ScanLeakage scans every locale of set except those named in skip.
// Locales without hits are omitted.
func ScanLeakage(set *Set, words, skip []string) []Leakage {
	s := NewScanner(words)
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	var out []Leakage
	for _, l := range set.Locales {
		if skipped[l.Name] {
			continue
		}
		if hits := s.Scan(l); len(hits) > 0 {
			out = append(out, Leakage{Locale: l.Name, Hits: hits})
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Full analysis
// ---------------------------------------------------------------------------

// Options selects what Run checks.
type Options struct {
	RTLLocales    []string
	DialogStrings []string
	EnglishWords  []string
	SkipLeakage   []string
}

// Result is everything the report prints.
type Result struct {
	Options   Options
	Reference *Locale
	Locales   []string
	Stats     []LocaleStats
	RTL       []RTLStatus
	Dialog    []DialogCoverage
	Leakage   []Leakage
	// ParseErrors lists files that could not be parsed, reference included.
	ParseErrors []error
}

// Run performs every check on set.
func Run(set *Set, opts Options) *Result {
	r := &Result{
		Options:   opts,
		Reference: set.Reference,
		Locales:   set.Names(),
	}
	if set.Reference.ParseErr != nil {
		r.ParseErrors = append(r.ParseErrors, set.Reference.ParseErr)
	}
	for _, l := range set.Locales {
		if l.ParseErr != nil {
			r.ParseErrors = append(r.ParseErrors, l.ParseErr)
		}
		r.Stats = append(r.Stats, Compare(set.Reference, l))
	}
	r.RTL = CheckRTL(set, opts.RTLLocales)
	r.Dialog = CheckDialogStrings(set, opts.DialogStrings)
	r.Leakage = ScanLeakage(set, opts.EnglishWords, opts.SkipLeakage)
	return r
}

// IsRTL reports whether locale is one of the configured right-to-left locales.
func (r *Result) IsRTL(locale string) bool {
	for _, l := range r.Options.RTLLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// Incomplete returns the locales below 100%.
func (r *Result) Incomplete() []string {
	var out []string
	for _, st := range r.Stats {
		if st.Band() != BandComplete {
			out = append(out, st.Locale)
		}
	}
	return out
}
