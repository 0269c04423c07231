package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ppiankov/coalesce/internal/model"
)

// mockRunner records processed paths and fails the ones listed in failOn
type mockRunner struct {
	mu     sync.Mutex
	seen   []string
	failOn map[string]bool
}

func (m *mockRunner) Run(ctx context.Context, path string) (*model.MergedResult, error) {
	m.mu.Lock()
	m.seen = append(m.seen, path)
	m.mu.Unlock()

	if m.failOn[path] {
		return nil, errors.New("processing failed")
	}
	return &model.MergedResult{
		SourcePath:        path,
		Fields:            map[string]any{"title": filepath.Base(path)},
		SegmentsTotal:     1,
		SegmentsSucceeded: 1,
	}, nil
}

func TestBatchProcessor(t *testing.T) {
	runner := &mockRunner{}
	bp := NewBatchProcessor(runner, 3)

	paths := []string{"a.txt", "b.txt", "c.txt", "d.txt"}
	results := bp.ProcessPaths(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: unexpected error %v", r.Path, r.Err)
		}
		if r.Result == nil || r.Result.SourcePath != r.Path {
			t.Errorf("%s: result not bound to its path", r.Path)
		}
	}
}

func TestBatchProcessorFailureIsolation(t *testing.T) {
	runner := &mockRunner{failOn: map[string]bool{"bad.txt": true}}
	bp := NewBatchProcessor(runner, 2)

	results := bp.ProcessPaths(context.Background(), []string{"a.txt", "bad.txt", "c.txt"})

	failed, succeeded := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Path != "bad.txt" {
				t.Errorf("wrong document failed: %s", r.Path)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("expected 1 failure and 2 successes, got %d/%d", failed, succeeded)
	}
}

func TestBatchProcessorEmpty(t *testing.T) {
	bp := NewBatchProcessor(&mockRunner{}, 2)
	results := bp.ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results for an empty batch, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	content := `# document list
a.txt

b.txt
a.txt
  c.txt
`
	listPath := filepath.Join(t.TempDir(), "docs.list")
	if err := os.WriteFile(listPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write list file: %v", err)
	}

	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.txt", "b.txt", "c.txt"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestReadPathsFromFileMissing(t *testing.T) {
	if _, err := ReadPathsFromFile("/nonexistent/docs.list"); err == nil {
		t.Error("expected an error for a missing list file")
	}
}

func TestReadPathsFromDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.txt", "notes.html", "skip.pdf", "README"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	paths, err := ReadPathsFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.txt", "b.md", "notes.html"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i, w := range want {
		if filepath.Base(paths[i]) != w {
			t.Errorf("paths[%d] = %q, want base %q", i, paths[i], w)
		}
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "docs.list")
	if err := os.WriteFile(listPath, []byte("one.txt\ntwo.txt\n"), 0o644); err != nil {
		t.Fatalf("write list file: %v", err)
	}

	runner := &mockRunner{}
	bp := NewBatchProcessor(runner, 2)

	results, err := bp.ProcessFile(context.Background(), listPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	if _, err := bp.ProcessFile(context.Background(), filepath.Join(dir, "missing.list")); err == nil {
		t.Error("expected an error for a missing list file")
	}
}

func TestDocJobExecute(t *testing.T) {
	runner := &mockRunner{failOn: map[string]bool{"bad.txt": true}}

	job := &DocJob{Path: "good.txt", Runner: runner}
	result := job.Execute(context.Background())
	if result.GetError() != nil {
		t.Errorf("unexpected error: %v", result.GetError())
	}

	job = &DocJob{Path: "bad.txt", Runner: runner}
	result = job.Execute(context.Background())
	if result.GetError() == nil {
		t.Error("expected the runner's error to surface")
	}
	if dr := result.(*DocResult); dr.Path != "bad.txt" {
		t.Errorf("expected path bad.txt, got %s", dr.Path)
	}
}
