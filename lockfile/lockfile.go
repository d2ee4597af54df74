// Package lockfile implements respatch.lock — a journal of applied patch
// targets. Each entry stores an MD5 checksum of the ops that were applied to
// one file, so that a plan that inserts entries is not applied to the same
// file twice unless forced.
//
// The lock file is stored in the project root as respatch.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "respatch.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the respatch.lock file structure.
type LockFile struct {
	Version int `yaml:"version"`
	// Entries maps "plan:target" to the checksum of the applied ops.
	Entries map[string]string `yaml:"applied"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version: Version,
		Entries: make(map[string]string),
		path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lf.Version > Version {
		return nil, fmt.Errorf("%s: unsupported version %d", path, lf.Version)
	}
	lf.path = path

	if lf.Entries == nil {
		lf.Entries = make(map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Journal
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// Applied reports whether key was recorded with the same fingerprint.
func (lf *LockFile) Applied(key, fingerprint string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Entries[key]
	return ok && old == Hash(fingerprint)
}

// Record stores the checksum of fingerprint under key.
func (lf *LockFile) Record(key, fingerprint string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	lf.Entries[key] = Hash(fingerprint)
}

// Forget removes every key that belongs to plan. It returns how many
// entries were removed.
func (lf *LockFile) Forget(plan string) int {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	n := 0
	for k := range lf.Entries {
		if strings.HasPrefix(k, plan+":") {
			delete(lf.Entries, k)
			n++
		}
	}
	return n
}

// Keys returns the sorted journal keys.
func (lf *LockFile) Keys() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	keys := make([]string, 0, len(lf.Entries))
	for k := range lf.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	keys := lf.Keys()
	if len(keys) == 0 {
		return "empty"
	}

	perPlan := make(map[string]int)
	var plans []string
	for _, k := range keys {
		plan, _, _ := strings.Cut(k, ":")
		if perPlan[plan] == 0 {
			plans = append(plans, plan)
		}
		perPlan[plan]++
	}

	parts := make([]string, len(plans))
	for i, p := range plans {
		parts[i] = fmt.Sprintf("%s: %d files", p, perPlan[p])
	}
	return fmt.Sprintf("%d entries (%s)", len(keys), strings.Join(parts, ", "))
}
