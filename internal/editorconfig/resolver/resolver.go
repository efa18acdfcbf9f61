// Package resolver looks up the EditorConfig rule set that applies to a file.
//
// The actual `.editorconfig` parsing is delegated to a Parser. The resolver
// turns the parser's outcome into an explicit Result: rules were found, no
// rule applies, or the lookup failed. Callers branch on Result.Kind and never
// see a panic or a bare error from the parser.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/edconf/internal/editorconfig/settings"
)

// ErrNoPath is returned for buffers without a backing file.
var ErrNoPath = errors.New("no file path")

// Parser produces the raw rule set for one file path.
type Parser interface {
	Parse(ctx context.Context, path string) (settings.RawConfig, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, path string) (settings.RawConfig, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, path string) (settings.RawConfig, error) {
	return f(ctx, path)
}

// Kind is the outcome of a resolution.
type Kind int

const (
	// KindFound means at least one rule applies.
	KindFound Kind = iota
	// KindEmpty means no rule applies.
	KindEmpty
	// KindFailed means the lookup failed.
	KindFailed
)

// String returns the outcome name.
func (k Kind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindEmpty:
		return "empty"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of Resolve.
type Result struct {
	Kind Kind
	Path string
	Raw  settings.RawConfig
	Err  error
}

// ResolveError records a failed lookup.
type ResolveError struct {
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve editorconfig for %s: %v", e.Path, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolver resolves file paths to rule sets. Concurrent lookups for the same
// path share one parser call.
type Resolver struct {
	parser Parser
	group  singleflight.Group
}

// New creates a Resolver backed by parser.
func New(parser Parser) *Resolver {
	return &Resolver{parser: parser}
}

// Resolve looks up the rule set for path.
func (r *Resolver) Resolve(ctx context.Context, path string) Result {
	if path == "" {
		return failed(path, ErrNoPath)
	}
	if err := ctx.Err(); err != nil {
		return failed(path, err)
	}

	ch := r.group.DoChan(path, func() (any, error) {
		return r.parse(ctx, path)
	})

	select {
	case <-ctx.Done():
		return failed(path, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return failed(path, res.Err)
		}
		raw, _ := res.Val.(settings.RawConfig)
		if raw.Empty() {
			return Result{Kind: KindEmpty, Path: path}
		}
		return Result{Kind: KindFound, Path: path, Raw: raw.Clone()}
	}
}

// Forget drops any in-flight lookup for path so the next Resolve parses
// again.
func (r *Resolver) Forget(path string) {
	r.group.Forget(path)
}

func (r *Resolver) parse(ctx context.Context, path string) (raw settings.RawConfig, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parser panic: %v", p)
		}
	}()
	return r.parser.Parse(ctx, path)
}

func failed(path string, err error) Result {
	return Result{Kind: KindFailed, Path: path, Err: &ResolveError{Path: path, Err: err}}
}
