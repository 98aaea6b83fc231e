// Package startup brings up the service's external dependencies in order,
// retrying with a Fibonacci backoff until they are all reachable.
package startup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"
)

type Dependency interface {
	Name() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Status int

const (
	StatusPending Status = iota
	StatusStarted
	StatusStopped
	StatusFailed
)

// FuncDependency adapts plain functions to Dependency. A nil StopFunc is a no-op.
type FuncDependency struct {
	DependencyName string
	Requires       []string
	StartFunc      func(ctx context.Context) error
	StopFunc       func(ctx context.Context) error
}

func (d FuncDependency) Name() string        { return d.DependencyName }
func (d FuncDependency) DependsOn() []string { return d.Requires }

func (d FuncDependency) Start(ctx context.Context) error {
	if d.StartFunc == nil {
		return nil
	}
	return d.StartFunc(ctx)
}

func (d FuncDependency) Stop(ctx context.Context) error {
	if d.StopFunc == nil {
		return nil
	}
	return d.StopFunc(ctx)
}

type Startup struct {
	dependencies map[string]Dependency
	statuses     map[string]Status
	started      []string
	logger       ectologger.Logger
	maxAttempts  int
	unit         time.Duration
}

func New(logger ectologger.Logger, maxAttempts int) *Startup {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Startup{
		dependencies: make(map[string]Dependency),
		statuses:     make(map[string]Status),
		logger:       logger,
		maxAttempts:  maxAttempts,
		unit:         time.Second,
	}
}

func (s *Startup) Add(dependency Dependency) {
	s.dependencies[dependency.Name()] = dependency
}

func (s *Startup) Status(name string) Status {
	return s.statuses[name]
}

// Start starts every dependency, each after the ones it depends on. A failed
// attempt is retried after 1, 1, 2, 3, 5... backoff units; dependencies that
// already started are not started again.
func (s *Startup) Start(ctx context.Context) error {
	names := make([]string, 0, len(s.dependencies))
	for name := range s.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var lastErr error
	a, b := 1, 1
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d/%d", attempt, s.maxAttempts)

		lastErr = nil
		for _, name := range names {
			if err := s.start(ctx, name, map[string]bool{}); err != nil {
				s.logger.WithError(err).Errorf("Startup dependency '%s' attempt %d failed", name, attempt)
				lastErr = err
				break
			}
		}
		if lastErr == nil {
			return nil
		}
		if attempt == s.maxAttempts {
			break
		}

		wait := time.Duration(a) * s.unit
		s.logger.Infof("Retrying startup in %s", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		a, b = b, a+b
	}

	return fmt.Errorf("startup failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Startup) start(ctx context.Context, name string, visiting map[string]bool) error {
	if s.statuses[name] == StatusStarted {
		return nil
	}
	dependency, ok := s.dependencies[name]
	if !ok {
		return fmt.Errorf("unknown startup dependency '%s'", name)
	}
	if visiting[name] {
		return fmt.Errorf("startup dependency cycle at '%s'", name)
	}
	visiting[name] = true

	for _, required := range dependency.DependsOn() {
		if err := s.start(ctx, required, visiting); err != nil {
			return err
		}
	}

	log := s.logger.WithField("dependency", name)
	log.Infof("Starting dependency '%s'", name)
	if err := dependency.Start(ctx); err != nil {
		s.statuses[name] = StatusFailed
		return fmt.Errorf("dependency '%s': %w", name, err)
	}
	s.statuses[name] = StatusStarted
	s.started = append(s.started, name)
	return nil
}

// Stop stops started dependencies in reverse start order. Every dependency is
// attempted; the first error is returned.
func (s *Startup) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(s.started) - 1; i >= 0; i-- {
		name := s.started[i]
		log := s.logger.WithField("dependency", name)
		if err := s.dependencies[name].Stop(ctx); err != nil {
			log.WithError(err).Errorf("Failed to stop dependency '%s'", name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.statuses[name] = StatusStopped
		log.Infof("Dependency '%s' stopped", name)
	}
	s.started = nil
	return firstErr
}
