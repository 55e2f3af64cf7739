// Package lint runs the naming engine over source files: classify, validate,
// render diagnostics. It is shared by the lint command and the CheckSource
// RPC.
package lint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/solatis/namekeeper/internal/classify"
	"github.com/solatis/namekeeper/internal/core/metrics"
	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/report"
	"github.com/solatis/namekeeper/internal/types"
)

// Result is the outcome of linting one file.
type Result struct {
	Path        string
	Names       int
	Diagnostics []report.Diagnostic
}

// Source lints source text. path selects the grammar.
func Source(ctx context.Context, eng *naming.Engine, path string, src []byte) (Result, error) {
	entities, err := classify.Source(ctx, path, src)
	if err != nil {
		metrics.FilesParsed.WithLabelValues(outcome(err)).Inc()
		return Result{Path: path}, err
	}
	metrics.FilesParsed.WithLabelValues("ok").Inc()

	res := Result{Path: path, Names: len(entities)}
	for _, e := range entities {
		v, err := eng.Validate(e.Occurrence)
		if err != nil {
			return Result{Path: path}, fmt.Errorf("%s:%d:%d: %w", e.Path, e.Line, e.Column, err)
		}
		if v == nil {
			continue
		}
		metrics.Violations.WithLabelValues(v.Stage.String()).Inc()
		res.Diagnostics = append(res.Diagnostics, report.NewDiagnostic(e.Path, e.Line, e.Column, v))
	}
	metrics.NamesChecked.Add(float64(res.Names))
	return res, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, types.ErrUnsupportedLanguage):
		return "unsupported"
	case errors.Is(err, types.ErrSourceTooLarge):
		return "too_large"
	default:
		return "error"
	}
}

// File reads and lints a single file.
func File(ctx context.Context, eng *naming.Engine, path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path}, fmt.Errorf("read file: %w", err)
	}
	return Source(ctx, eng, path, src)
}

// Files lints paths with at most jobs files in flight (jobs <= 0 means
// GOMAXPROCS). Results keep the order of paths. The first read or parse
// failure cancels the remaining work.
func Files(ctx context.Context, eng *naming.Engine, paths []string, jobs int) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := File(ctx, eng, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Diagnostics flattens results into one location-sorted list and counts names.
func Diagnostics(results []Result) (diags []report.Diagnostic, names int) {
	for _, r := range results {
		names += r.Names
		diags = append(diags, r.Diagnostics...)
	}
	report.Sort(diags)
	return diags, names
}

// RulesDigest fingerprints a rule table so recorded runs can be grouped by
// the policy that produced them.
func RulesDigest(rules []types.RuleConfig) string {
	data, err := json.Marshal(rules)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
