package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Target is one file of a plan and the ops applied to it, in order.
type Target struct {
	// Path is relative to the res directory, e.g. "values-pt/strings.xml".
	Path string
	Ops  []Op
}

// Plan is a named list of targets.
type Plan struct {
	Name        string
	Description string
	Targets     []Target
}

// Status is the per-file result of a run.
type Status int

const (
	// StatusUpdated means the file was rewritten (or would be, in a dry run).
	StatusUpdated Status = iota
	// StatusUnchanged means every op left the content as it was.
	StatusUnchanged
	// StatusAlreadyApplied means the journal says this exact target ran before.
	StatusAlreadyApplied
	// StatusMissing means the file does not exist. It is not counted as attempted.
	StatusMissing
	// StatusFailed means an op or an I/O step returned an error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	case StatusAlreadyApplied:
		return "already applied"
	case StatusMissing:
		return "missing"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// OpResult records the outcome of one op.
type OpResult struct {
	// Op is the first line of the op description.
	Op      string
	Outcome Outcome
	// Guard is the marker that made a Guarded op skip.
	Guard string
}

// FileResult is the outcome of one target.
type FileResult struct {
	Target string
	Path   string
	Status Status
	Ops    []OpResult
	Err    error
}

// NotFound returns the descriptions of ops whose target was absent.
func (r FileResult) NotFound() []string {
	var out []string
	for _, o := range r.Ops {
		if o.Outcome == NotFound {
			out = append(out, o.Op)
		}
	}
	return out
}

// Guards returns the markers of ops that skipped because the file already
// had them.
func (r FileResult) Guards() []string {
	var out []string
	for _, o := range r.Ops {
		if o.Outcome == Skipped && o.Guard != "" {
			out = append(out, o.Guard)
		}
	}
	return out
}

// Summary aggregates a run.
type Summary struct {
	Plan      string
	Results   []FileResult
	Attempted int
	Succeeded int
	Missing   int
}

// OK reports whether every attempted file succeeded.
func (s *Summary) OK() bool { return s.Succeeded == s.Attempted }

// Journal remembers which targets were applied, so that non-idempotent
// plans are not applied twice by accident.
type Journal interface {
	Applied(key, fingerprint string) bool
	Record(key, fingerprint string)
}

// Runner applies plans to files under ResDir, one file at a time.
type Runner struct {
	ResDir string
	// Root, when set, makes the res directory in journal keys relative to it.
	Root string
	// DryRun computes results without writing files or journal entries.
	DryRun bool
	// Force ignores the journal when deciding whether to apply a target.
	Force bool
	// Journal is optional.
	Journal Journal
}

// Run applies every target of p. A failing file does not stop the run;
// failures are returned together as a *multierror.Error.
func (r *Runner) Run(p *Plan) (*Summary, error) {
	sum := &Summary{Plan: p.Name}
	var errs *multierror.Error

	for _, t := range p.Targets {
		res := r.applyTarget(p.Name, t)
		sum.Results = append(sum.Results, res)

		switch res.Status {
		case StatusMissing:
			sum.Missing++
			continue
		case StatusFailed:
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.Path, res.Err))
		default:
			sum.Succeeded++
		}
		sum.Attempted++
	}

	return sum, errs.ErrorOrNil()
}

// JournalKey identifies a target of a plan in the journal. Runner passes
// the target path joined to the res directory.
func JournalKey(plan, target string) string {
	return plan + ":" + filepath.ToSlash(target)
}

func (r *Runner) journalKey(plan, target string) string {
	dir := r.ResDir
	if r.Root != "" {
		root, err := filepath.Abs(r.Root)
		if err == nil {
			res, err := filepath.Abs(r.ResDir)
			if err == nil {
				if rel, err := filepath.Rel(root, res); err == nil {
					dir = rel
				}
			}
		}
	}
	return JournalKey(plan, filepath.Join(dir, target))
}

// Fingerprint describes a list of ops; equal fingerprints mean equal edits.
func Fingerprint(ops []Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, "\x00")
}

func (r *Runner) applyTarget(plan string, t Target) FileResult {
	path := filepath.Join(r.ResDir, t.Path)
	res := FileResult{Target: t.Path, Path: path}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = StatusMissing
		return res
	}
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}

	key, fp := r.journalKey(plan, t.Path), Fingerprint(t.Ops)
	if r.Journal != nil && !r.Force && r.Journal.Applied(key, fp) {
		res.Status = StatusAlreadyApplied
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}

	content := string(data)
	for _, op := range t.Ops {
		out, outcome, err := op.Apply(content)
		opRes := OpResult{Op: firstLine(op.String()), Outcome: outcome}
		if g, ok := op.(Guarded); ok && outcome == Skipped {
			opRes.Guard = g.Guard()
		}
		res.Ops = append(res.Ops, opRes)
		if err != nil {
			res.Status, res.Err = StatusFailed, err
			return res
		}
		content = out
	}

	if content == string(data) {
		res.Status = StatusUnchanged
	} else {
		res.Status = StatusUpdated
	}
	if r.DryRun {
		return res
	}

	if res.Status == StatusUpdated {
		if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
			res.Status, res.Err = StatusFailed, fmt.Errorf("writing: %w", err)
			return res
		}
	}
	if r.Journal != nil {
		r.Journal.Record(key, fp)
	}
	return res
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
