// respatch — patch Android strings.xml resources and report localization completeness.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/minios-linux/respatch/analyze"
	"github.com/minios-linux/respatch/config"
	"github.com/minios-linux/respatch/i18n"
	"github.com/minios-linux/respatch/langmeta"
	"github.com/minios-linux/respatch/lockfile"
	"github.com/minios-linux/respatch/patch"
	"github.com/minios-linux/respatch/plan"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	resDir  string
	dryRun  bool
	force   bool
)

// errPartial is returned by patch commands when some files failed. The
// failures have already been printed.
var errPartial = errors.New("some files had errors")

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "respatch",
		Short: i18n.T("Patch Android string resources and check localization completeness"),
		Long: `respatch — patch Android strings.xml resources and check localization completeness.

Edits are plain-text insertions and regex substitutions: everything outside
the edited region of a file is kept byte-for-byte. Built-in plans reproduce
the project's maintenance fixes; custom plans are YAML files run with apply.

Commands:
  missing-translations  Add missing task, notification and dialog strings
  button-strings        Add Save, OK, Grant and Open Settings button strings
  about-contact         Reset the About contact block to the English lines
  about-contact-fields  Rewrite the About contact strings in place
  about-section         Add translated About and theme strings where absent
  apply                 Run YAML plan files
  plans                 List built-in plans
  analyze               Print the localization completeness report
  status                Show a compact per-locale completeness table
  journal               Show or reset the record of applied plans`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))
	root.PersistentFlags().StringVar(&resDir, "res-dir", "", i18n.T("Android res directory relative to the root (default from .respatch.yaml or auto-detected)"))
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, i18n.T("Report what would change without writing files"))
	root.PersistentFlags().BoolVar(&force, "force", false, i18n.T("Apply plans again even if the journal says they were applied"))

	for _, bc := range builtinCommands {
		root.AddCommand(newBuiltinPlanCmd(bc.name, bc.short))
	}
	root.AddCommand(
		newApplyCmd(),
		newPlansCmd(),
		newAnalyzeCmd(),
		newStatusCmd(),
		newJournalCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errPartial) {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Project context
// ---------------------------------------------------------------------------

// project is the resolved configuration for one invocation.
type project struct {
	root   string
	cfg    *config.Config
	resDir string
}

func loadProject() (*project, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}

	p := &project{root: rootDir, cfg: cfg}
	switch {
	case resDir == "":
		p.resDir = cfg.ResolveResDir(rootDir)
	case filepath.IsAbs(resDir):
		p.resDir = resDir
	default:
		p.resDir = filepath.Join(rootDir, resDir)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Plan commands
// ---------------------------------------------------------------------------

var builtinCommands = []struct {
	name  string
	short string
}{
	{"missing-translations", "Add missing task, notification and dialog strings to eight locales"},
	{"button-strings", "Add Save, OK, Grant and Open Settings button strings"},
	{"about-contact", "Remove about_summary and reset the About contact block to the English lines"},
	{"about-contact-fields", "Remove about_summary and rewrite the About contact strings in place"},
	{"about-section", "Add translated About and theme strings to locales that lack them"},
}

func newBuiltinPlanCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: i18n.T(short),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject()
			if err != nil {
				return err
			}
			p, err := plan.Builtin(name, proj.cfg.Indent)
			if err != nil {
				return err
			}
			return runPlans(cmd.OutOrStdout(), proj, []*patch.Plan{p})
		},
	}
}

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [plan.yaml...]",
		Short: i18n.T("Run YAML plan files"),
		Long: `Run one or more YAML plan files against the res directory.

Without arguments, the plans listed under "plans:" in .respatch.yaml are run.
See "respatch plans" for the built-in plans, which use the same format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject()
			if err != nil {
				return err
			}

			files := args
			if len(files) == 0 {
				files = proj.cfg.PlanPaths(proj.root)
			}
			if len(files) == 0 {
				return errors.New(i18n.T("no plan files given and none configured in .respatch.yaml"))
			}

			var plans []*patch.Plan
			for _, f := range files {
				p, err := plan.LoadFile(f, proj.cfg.Indent)
				if err != nil {
					return err
				}
				plans = append(plans, p)
			}
			return runPlans(cmd.OutOrStdout(), proj, plans)
		},
	}
}

// runPlans applies plans in order and prints one line per file. Every plan
// runs even when an earlier one had failures.
func runPlans(w io.Writer, proj *project, plans []*patch.Plan) error {
	lf, err := lockfile.Load(proj.root)
	if err != nil {
		return err
	}

	runner := &patch.Runner{ResDir: proj.resDir, Root: proj.root, DryRun: dryRun, Force: force, Journal: lf}
	if dryRun {
		logInfo("%s", i18n.T("Dry run: no files will be written"))
	}

	ok := true
	for _, p := range plans {
		logInfo(i18n.T("Applying %s to %s"), p.Name, proj.resDir)
		sum, err := runner.Run(p)
		printSummary(w, sum)
		if err != nil {
			for _, ferr := range fileErrors(err) {
				logError(i18n.T("Error processing %v"), ferr)
			}
			ok = false
		}
	}

	if !dryRun {
		if err := lf.Save(); err != nil {
			return err
		}
	}

	if !ok {
		fmt.Fprintln(w, i18n.T("⚠️ Some files had errors. Please check the output above."))
		return errPartial
	}
	if dryRun {
		fmt.Fprintln(w, i18n.T("✅ Dry run finished, nothing was written."))
	} else {
		fmt.Fprintln(w, i18n.T("✅ All files updated successfully!"))
	}
	return nil
}

func printSummary(w io.Writer, sum *patch.Summary) {
	for _, res := range sum.Results {
		switch res.Status {
		case patch.StatusMissing:
			logWarning(i18n.T("File not found: %s"), res.Path)
			continue
		case patch.StatusFailed:
			fmt.Fprintf(w, "  ✗ %s\n", res.Path)
			continue
		case patch.StatusAlreadyApplied:
			logWarning(i18n.T("%s: already applied by %s, skipping (use --force to apply again)"), res.Target, sum.Plan)
		case patch.StatusUnchanged:
			if guards := res.Guards(); len(guards) > 0 {
				fmt.Fprintf(w, "  · "+i18n.T("Already has %s, skipping: %s")+"\n", strings.Join(guards, ", "), res.Path)
			} else {
				fmt.Fprintf(w, "  · "+i18n.T("Unchanged: %s")+"\n", res.Path)
			}
		case patch.StatusUpdated:
			fmt.Fprintf(w, "  ✓ "+i18n.T("Updated: %s")+"\n", res.Path)
		}
		for _, op := range res.NotFound() {
			logWarning(i18n.T("%s: target of %q not found"), res.Target, op)
		}
	}
	fmt.Fprintf(w, "\n"+i18n.T("Completed: %d/%d files updated successfully")+"\n", sum.Succeeded, sum.Attempted)
}

// fileErrors unpacks the per-file failures collected by patch.Runner.
func fileErrors(err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	if err != nil {
		return []error{err}
	}
	return nil
}

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: i18n.T("List built-in plans"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range plan.BuiltinNames() {
				p, err := plan.Builtin(name, proj.cfg.Indent)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-22s %s\n", p.Name, p.Description)
				fmt.Fprintf(w, "%-22s %s\n", "", targetDirs(p))
			}
			for _, f := range proj.cfg.PlanPaths(proj.root) {
				fmt.Fprintf(w, "%-22s %s\n", "(config)", f)
			}
			return nil
		},
	}
}

// targetDirs renders the directories a plan touches: "values-de values-es ...".
func targetDirs(p *patch.Plan) string {
	dirs := make([]string, len(p.Targets))
	for i, t := range p.Targets {
		dirs[i] = filepath.Dir(t.Path)
	}
	return strings.Join(dirs, " ")
}

// ---------------------------------------------------------------------------
// analyze (read-only: full report on stdout)
// ---------------------------------------------------------------------------

func newAnalyzeCmd() *cobra.Command {
	var (
		noChecklist bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: i18n.T("Print the localization completeness report"),
		Long: `Compare every locale with the reference locale and print missing and
extra strings, completeness, right-to-left and dialog string coverage, and
values that still look English, followed by a manual testing checklist.

The report goes to stdout. Files that fail to parse are reported and counted
as empty; the command only fails when the res directory cannot be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := analyzeProject()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return result.WriteJSON(w)
			case "text":
			default:
				return fmt.Errorf(i18n.T("unknown format %q (use text or json)"), format)
			}
			if noChecklist {
				if err := result.WriteReport(w); err != nil {
					return err
				}
				return result.WriteSummary(w)
			}
			return result.Write(w)
		},
	}

	cmd.Flags().BoolVar(&noChecklist, "no-checklist", false, i18n.T("Omit the manual testing checklist"))
	cmd.Flags().StringVar(&format, "format", "text", i18n.T("Output format: text, json"))

	return cmd
}

func analyzeProject() (*analyze.Result, error) {
	proj, err := loadProject()
	if err != nil {
		return nil, err
	}
	set, err := analyze.Load(proj.resDir, proj.cfg.ReferenceLocale)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logWarning(i18n.T("Res directory %s not found, the report is empty"), proj.resDir)
		set = analyze.NewSet(proj.cfg.ReferenceLocale)
	case err != nil:
		return nil, err
	}
	return analyze.Run(set, analyze.Options{
		RTLLocales:    proj.cfg.RTLLocales,
		DialogStrings: proj.cfg.DialogStrings,
		EnglishWords:  proj.cfg.EnglishWords,
		SkipLeakage:   proj.cfg.SkipLeakage,
	}), nil
}

// ---------------------------------------------------------------------------
// status (read-only: compact table on stderr)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show a compact per-locale completeness table"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := analyzeProject()
			if err != nil {
				return err
			}
			showStatsTable(result)
			return nil
		},
	}
}

func showStatsTable(r *analyze.Result) {
	if r.Reference.Len() == 0 {
		logWarning(i18n.T("Reference locale %s has no strings"), r.Reference.Name)
		return
	}

	width := langColumnWidth(r.Locales)
	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Localization Status"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, st := range r.Stats {
		extra := ""
		if st.ParseErr != nil {
			extra = "  " + i18n.T("parse error")
		} else if n := len(st.Missing); n > 0 {
			extra = fmt.Sprintf("  "+i18n.N("%d missing", "%d missing", n), n)
		}
		rtl := ""
		if r.IsRTL(st.Locale) {
			rtl = " RTL"
		}
		fmt.Fprintf(os.Stderr, "%s %s%s%s\n", langCell(st.Locale, width), progressBar(int(st.Percent), 20), rtl, extra)
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, i18n.T("Reference: %s, %d strings")+"\n", langmeta.Label(r.Reference.Name), r.Reference.Len())

	for _, lk := range r.Leakage {
		logWarning(i18n.N("%s: %d value may be untranslated", "%s: %d values may be untranslated", len(lk.Hits)), lk.Locale, len(lk.Hits))
	}
}

// progressBar renders a colored bar of width cells followed by the percentage.
func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// flagFromRegion converts a two-letter region code to its flag emoji.
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, c := range region {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String()
}

// langFlag returns the flag for a locale with a region subtag ("pt-BR").
func langFlag(locale string) string {
	_, region, ok := strings.Cut(locale, "-")
	if !ok {
		return ""
	}
	return flagFromRegion(region)
}

func langColumnWidth(locales []string) int {
	width := 0
	for _, l := range locales {
		width = max(width, len(l))
	}
	return width
}

// langCell renders a locale padded to width, prefixed with its flag when it has one.
func langCell(locale string, width int) string {
	flag := langFlag(locale)
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, locale)
}

// ---------------------------------------------------------------------------
// journal (respatch.lock)
// ---------------------------------------------------------------------------

func newJournalCmd() *cobra.Command {
	var forget string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: i18n.T("Show or reset the record of applied plans"),
		Long: `Show the entries of respatch.lock, the record of plan targets that were
applied. Plans that insert entries are skipped for targets listed here; use
--forget to let a plan run again, or --force on a single run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lf, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}

			if forget != "" {
				n := lf.Forget(forget)
				if err := lf.Save(); err != nil {
					return err
				}
				logSuccess(i18n.N("Forgot %d entry of %s", "Forgot %d entries of %s", n), n, forget)
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %s\n", lf.Path(), lf.Summary())
			for _, k := range lf.Keys() {
				fmt.Fprintf(w, "  %s\n", k)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&forget, "forget", "", i18n.T("Remove all entries of the named plan"))

	return cmd
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("respatch version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}
