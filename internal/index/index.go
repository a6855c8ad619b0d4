// Package index scans a tree of policy sources and builds a metadata index.
//
// Discovery is glob based (doublestar). Records are produced lazily in
// path order by Records, or collected in parallel by Collect. A file that
// cannot be read or parsed never aborts the scan; it is reported as a
// *SkipError and the rest of the tree is still indexed.
package index

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-trustforge/internal/document"
)

// DefaultInclude matches Markdown sources anywhere below the root.
var DefaultInclude = []string{"**/*.{md,markdown}"}

// ErrRoot is matched when the index root is missing or not a directory.
var ErrRoot = errors.New("invalid index root")

// SkipError reports a source left out of the index.
type SkipError struct {
	Path string // slash path relative to the root
	Err  error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped %s: %v", e.Path, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Record is the metadata snapshot of one indexed source.
type Record struct {
	File     string // slash path relative to the root
	Metadata document.Metadata
}

// Result is the outcome of Collect. Records and Skipped are sorted by path.
type Result struct {
	Records []Record
	Skipped []*SkipError
}

// Aggregator indexes a source tree.
type Aggregator struct {
	// Include and Exclude are doublestar patterns matched against slash
	// paths relative to the root. An empty Include means DefaultInclude.
	Include []string
	Exclude []string

	// Workers bounds parallel parsing in Collect. Zero means GOMAXPROCS.
	Workers int

	Logger *zap.Logger
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *Aggregator) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Discover lists the sources under root that match Include and no Exclude
// pattern, as sorted slash paths relative to root.
func (a *Aggregator) Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRoot, root)
	}
	include := a.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range slices.Concat(include, a.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || a.excluded(m) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

func (a *Aggregator) excluded(path string) bool {
	for _, p := range a.Exclude {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// Records yields one record per discovered source in path order. Sources
// that fail are yielded as a *SkipError and iteration continues; a root
// that cannot be listed is yielded once as a plain error. Iteration stops
// when ctx is done.
func (a *Aggregator) Records(ctx context.Context, root string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		paths, err := a.Discover(root)
		if err != nil {
			yield(Record{}, err)
			return
		}
		for _, rel := range paths {
			if err := ctx.Err(); err != nil {
				yield(Record{}, err)
				return
			}
			rec, err := a.read(root, rel)
			if !yield(rec, err) {
				return
			}
		}
	}
}

// Collect indexes root with up to Workers parallel parsers. Skipped files
// are logged at warn level and returned in Result.Skipped. Only an invalid
// root or a cancelled context fails the whole collection.
func (a *Aggregator) Collect(ctx context.Context, root string) (*Result, error) {
	paths, err := a.Discover(root)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i], errs[i] = a.read(root, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Records: make([]Record, 0, len(paths))}
	for i := range paths {
		if errs[i] == nil {
			res.Records = append(res.Records, records[i])
			continue
		}
		var skip *SkipError
		if !errors.As(errs[i], &skip) {
			skip = &SkipError{Path: paths[i], Err: errs[i]}
		}
		a.logger().Warn("source skipped",
			zap.String("source", skip.Path),
			zap.Error(skip.Err))
		res.Skipped = append(res.Skipped, skip)
	}
	a.logger().Debug("index collected",
		zap.String("root", root),
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (a *Aggregator) read(root, rel string) (Record, error) {
	doc, err := document.Read(filepath.Join(root, filepath.FromSlash(rel)), a.Logger)
	if err != nil {
		return Record{}, &SkipError{Path: rel, Err: err}
	}
	return Record{File: rel, Metadata: doc.Metadata}, nil
}
