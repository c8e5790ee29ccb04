// Package pipeline builds the scope trees of many methods in parallel and
// applies the policy deciding what a failing method does to the run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
	"github.com/orizon-lang/scopetree/internal/scope"
)

// Policy decides what a method whose scopes fail to build does to the run.
type Policy int

const (
	// PolicyAbort fails the whole run on the first failing method.
	PolicyAbort Policy = iota
	// PolicyOmit drops debug scopes for the failing method only.
	PolicyOmit
)

func (p Policy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicyOmit:
		return "omit"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the names returned by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "omit":
		return PolicyOmit, nil
	default:
		return 0, scopeerrors.InvalidConfig("policy", s, "want abort or omit")
	}
}

// Method is one method body's scope records as produced by the front end.
// A zero Length leaves the scopes unbounded.
type Method struct {
	Name         string
	Length       uint32
	StateMachine bool
	Scopes       []scope.Scope
}

// MethodResult is the outcome for one method. Exactly one of Tree and Err
// is set.
type MethodResult struct {
	Name   string
	Length uint32
	Tree   *scope.Tree
	Err    error
}

// Result holds per-method outcomes in input order.
type Result struct {
	Methods []MethodResult
}

// Failed returns the methods whose scopes were omitted.
func (r *Result) Failed() []MethodResult {
	var out []MethodResult
	for _, m := range r.Methods {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithConcurrency bounds the number of methods built at once.
func WithConcurrency(n int) Option {
	return func(pl *Pipeline) {
		if n > 0 {
			pl.concurrency = n
		}
	}
}

// WithLogger sets the logger handed to every builder.
func WithLogger(logger zerolog.Logger) Option {
	return func(pl *Pipeline) { pl.logger = logger }
}

// Pipeline drives scope.Builder over many methods.
type Pipeline struct {
	policy      Policy
	concurrency int
	logger      zerolog.Logger
}

// New returns a Pipeline configured by opts.
func New(opts ...Option) *Pipeline {
	pl := &Pipeline{
		policy:      PolicyAbort,
		concurrency: buildConcurrency(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Run builds one tree per method. Methods share no state, so each is built
// on its own goroutine; results keep the input order.
func (pl *Pipeline) Run(ctx context.Context, methods []Method) (*Result, error) {
	res := &Result{Methods: make([]MethodResult, len(methods))}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.concurrency)

	for i, m := range methods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := pl.build(m)
			res.Methods[i] = MethodResult{Name: m.Name, Length: m.Length, Tree: tree, Err: err}
			if err == nil {
				return nil
			}
			if pl.policy == PolicyAbort {
				return fmt.Errorf("method %s: %w", m.Name, err)
			}
			pl.logger.Warn().
				Str("method", m.Name).
				Err(err).
				Msg("omitting debug scopes")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pl.logger.Info().
		Int("methods", len(methods)).
		Int("omitted", len(res.Failed())).
		Dur("elapsed", time.Since(start)).
		Msg("scope trees built")
	return res, nil
}

func (pl *Pipeline) build(m Method) (*scope.Tree, error) {
	opts := []scope.BuilderOption{
		scope.WithLogger(pl.logger.With().Str("method", m.Name).Logger()),
	}
	if m.Length > 0 {
		opts = append(opts, scope.WithMethodLength(m.Length))
	}
	if m.StateMachine {
		opts = append(opts, scope.WithStateMachine())
	}
	return scope.NewBuilder(opts...).Build(m.Scopes)
}

// buildConcurrency picks the default parallelism; SCOPETREE_MAX_CONCURRENCY
// overrides it.
func buildConcurrency() int {
	if v := os.Getenv("SCOPETREE_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 1024 {
				return 1024
			}

			return n
		}
	}

	return runtime.GOMAXPROCS(0)
}
