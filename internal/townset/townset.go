// Package townset holds the set of town identifiers shared between the two
// pipeline stages, and the small JSON artifact that carries it across processes.
package townset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Set is a set of distinct town identifiers.
type Set map[string]struct{}

// New returns a set holding names.
func New(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s Set) Add(name string) { s[name] = struct{}{} }

func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ErrMissingArtifact is returned by Load when no artifact has been written yet.
var ErrMissingArtifact = errors.New("town artifact not found, run the connections stage first")

// Artifact is the persisted form of a Set.
type Artifact struct {
	RunID       string   `json:"run_id"`
	GeneratedAt string   `json:"generated_at"`
	Towns       []string `json:"towns"`
}

// NewArtifact stamps towns with a fresh run id and the current time.
func NewArtifact(towns Set, now time.Time) Artifact {
	return Artifact{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Towns:       towns.Sorted(),
	}
}

// Set returns the towns as a Set.
func (a Artifact) Set() Set {
	return New(a.Towns...)
}

// Save writes the artifact atomically: a temp file in the same directory is
// renamed over path, so a reader never sees a partial file.
func Save(path string, a Artifact) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".towns-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Load reads the artifact at path.
func Load(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return a, nil
}

// IsStale reports whether the artifact is older than maxAge or carries an
// unreadable timestamp. A non-positive maxAge never goes stale.
func (a Artifact) IsStale(maxAge time.Duration, now time.Time) bool {
	generatedAt, err := time.Parse(time.RFC3339, a.GeneratedAt)
	if err != nil {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return now.Sub(generatedAt) > maxAge
}
