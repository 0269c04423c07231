package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/coalesce/internal/model"
)

// Runner processes one document end to end. The pipeline satisfies this.
type Runner interface {
	Run(ctx context.Context, path string) (*model.MergedResult, error)
}

// DocJob reconciles one document file
type DocJob struct {
	Path   string
	Runner Runner
}

// Execute runs the job
func (j *DocJob) Execute(ctx context.Context) Result {
	result, err := j.Runner.Run(ctx, j.Path)
	return &DocResult{
		Path:   j.Path,
		Result: result,
		Err:    err,
	}
}

// DocResult is the outcome of processing one document
type DocResult struct {
	Path   string
	Result *model.MergedResult
	Err    error
}

// GetError returns the processing error, if any
func (r *DocResult) GetError() error {
	return r.Err
}

// BatchProcessor reconciles multiple documents concurrently. Documents are
// independent: one failing never affects the rest of the batch.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessPaths processes the given document paths concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*DocResult {
	if len(paths) == 0 {
		return []*DocResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&DocJob{
			Path:   path,
			Runner: b.runner,
		})
	}

	results := pool.Wait()

	docResults := make([]*DocResult, len(results))
	for i, result := range results {
		docResults[i] = result.(*DocResult)
	}

	return docResults
}

// ProcessFile reads document paths from a list file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*DocResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line),
// skipping blanks and comments and dropping duplicates.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ReadPathsFromDir lists the supported document files directly under dir,
// sorted by name.
func ReadPathsFromDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md", ".markdown", ".html", ".htm":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
