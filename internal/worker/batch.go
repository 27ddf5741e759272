package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/caseline/internal/model"
)

// Analyzer defines the interface for analyzing one narrative file
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string) (*model.DocumentFeature, error)
}

// AnalyzeJob represents one narrative file to analyze
type AnalyzeJob struct {
	Path     string
	Analyzer Analyzer
	Limiter  *Limiter // Optional throughput throttle
}

// Execute executes the analyze job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return &AnalyzeResult{Path: j.Path, Error: err}
		}
	}

	result, err := j.Analyzer.AnalyzeFile(ctx, j.Path)
	if err != nil {
		return &AnalyzeResult{Path: j.Path, Error: err}
	}
	return &AnalyzeResult{Path: j.Path, Result: result}
}

// AnalyzeResult represents the result of an analyze job
type AnalyzeResult struct {
	Path   string
	Result *model.DocumentFeature
	Error  error
}

// GetError returns the error from the analyze result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple narrative files concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	limiter     *Limiter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, limiter *Limiter) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes the given narrative files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&AnalyzeJob{
			Path:     path,
			Analyzer: b.analyzer,
			Limiter:  b.limiter,
		})
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}

	return analyzeResults
}

// ProcessFile reads narrative paths from a manifest file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, manifestPath string) ([]*AnalyzeResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads narrative paths from a file (one per line)
func ReadPathsFromFile(manifestPath string) ([]string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
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
