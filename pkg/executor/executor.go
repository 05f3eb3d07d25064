package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zen-systems/claimgate/pkg/adapter"
	"github.com/zen-systems/claimgate/pkg/artifact"
)

// Route is one (backend, model) chain position.
type Route struct {
	Backend string `yaml:"backend" json:"backend"`
	Model   string `yaml:"model" json:"model"`
}

// Executor walks an ordered backend chain for every adjudication call:
// sticky assignment decides which route the walk begins at, a
// content-policy rejection at the first position earns one sanitized
// re-prompt, and every other failure advances immediately to the next
// position with no backoff.
type Executor struct {
	chain    []Route
	adapters map[string]adapter.Adapter
	table    *AssignmentTable
	sanitize func(adapter.Request) adapter.Request
	limiter  *rate.Limiter
	logger   *logrus.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithSanitizer sets the re-prompt transform used after a first-position
// content-policy rejection.
func WithSanitizer(fn func(adapter.Request) adapter.Request) Option {
	return func(e *Executor) {
		e.sanitize = fn
	}
}

// WithLimiter rate-limits outbound attempts across all callers.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(e *Executor) {
		e.limiter = limiter
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an executor over the given adapters and ordered chain.
// The assignment table is shared, process-wide state owned by the
// caller.
func New(adapters map[string]adapter.Adapter, chain []Route, table *AssignmentTable, opts ...Option) (*Executor, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("executor requires at least one chain position")
	}
	for _, route := range chain {
		if _, ok := adapters[route.Backend]; !ok {
			return nil, fmt.Errorf("chain references unknown backend %q", route.Backend)
		}
	}
	if table == nil {
		return nil, fmt.Errorf("executor requires an assignment table")
	}
	e := &Executor{
		chain:    chain,
		adapters: adapters,
		table:    table,
		logger:   logrus.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Chain returns the configured routes in walk order for a healthy
// caller.
func (e *Executor) Chain() []Route {
	out := make([]Route, len(e.chain))
	copy(out, e.chain)
	return out
}

// walkOrder resolves the caller's sticky assignment: a degraded caller
// starts its walk at the fallback route, with the primary demoted to
// second position. A one-element chain never degrades.
func (e *Executor) walkOrder(caller string) []Route {
	if len(e.chain) < 2 || !e.table.Degraded(caller) {
		return e.chain
	}
	order := make([]Route, 0, len(e.chain))
	order = append(order, e.chain[1], e.chain[0])
	order = append(order, e.chain[2:]...)
	return order
}

// Execute issues one adjudication request with ordered fallback.
// Returns the decoded-ready artifact or the final attempt's error once
// the chain is exhausted.
func (e *Executor) Execute(ctx context.Context, caller string, req adapter.Request) (*artifact.Artifact, error) {
	routes := e.walkOrder(caller)

	var lastErr error
	for pos, route := range routes {
		art, err := e.attempt(ctx, caller, route, req)
		if err == nil {
			return art, nil
		}
		lastErr = err
		e.table.RecordFailure(caller)
		e.logger.WithFields(logrus.Fields{
			"caller":  caller,
			"backend": route.Backend,
			"model":   route.Model,
			"pos":     pos,
		}).WithError(err).Warn("adjudication attempt failed")

		// One sanitized re-prompt, first chain position only.
		if pos == 0 && e.sanitize != nil && adapter.IsContentPolicy(err) {
			art, err = e.attempt(ctx, caller, route, e.sanitize(req))
			if err == nil {
				return art.WithMetadata("sanitized", "true"), nil
			}
			lastErr = err
			e.table.RecordFailure(caller)
			e.logger.WithFields(logrus.Fields{
				"caller":  caller,
				"backend": route.Backend,
				"model":   route.Model,
			}).WithError(err).Warn("sanitized re-prompt failed")
		}
	}

	return nil, fmt.Errorf("backend chain exhausted for %s: %w", caller, lastErr)
}

func (e *Executor) attempt(ctx context.Context, caller string, route Route, req adapter.Request) (*artifact.Artifact, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	backend := e.adapters[route.Backend]
	art, err := backend.Complete(ctx, route.Model, req)
	if err != nil {
		return nil, err
	}
	e.table.RecordSuccess(caller)
	return art.WithCaller(caller), nil
}
