// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// stopGrace is added to the shutdown timeout when waiting for the whole
// tree, since layers stop their services before the root stops them.
const stopGrace = 2 * time.Second

// ErrStopTimeout is returned by Run when the tree outlives its stop deadline.
var ErrStopTimeout = errors.New("supervisor tree did not stop in time")

// Layer selects the child supervisor a service runs under. Layers restart
// independently: a crashing HTTP listener never restarts the probes.
type Layer int

const (
	// DataLayer runs background work against the ratings store.
	DataLayer Layer = iota
	// APILayer runs the HTTP listener.
	APILayer
)

func (l Layer) String() string {
	if l == APILayer {
		return "api-layer"
	}
	return "data-layer"
}

// TreeConfig tunes restart behavior. Zero fields take the values of
// DefaultTreeConfig.
type TreeConfig struct {
	FailureThreshold float64       // failures tolerated before backoff
	FailureDecay     float64       // seconds for the failure count to decay
	FailureBackoff   time.Duration // pause once the threshold is crossed
	ShutdownTimeout  time.Duration // per-service stop deadline
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	def := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = def.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = def.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) sutureSpec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the server's process tree:
//
//	animerec
//	├── data-layer
//	└── api-layer
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	logger *slog.Logger
	config TreeConfig
}

// NewSupervisorTree builds the tree. Supervisor events are logged through
// logger, or slog.Default when it is nil.
//
//nolint:gocritic // hugeParam: config copied once at startup
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		logger = slog.Default()
	}
	config = config.withDefaults()

	rootSpec := config.sutureSpec()
	events := &sutureslog.Handler{Logger: logger}
	rootSpec.EventHook = events.MustHook()

	t := &SupervisorTree{
		root:   suture.New("animerec", rootSpec),
		layers: make(map[Layer]*suture.Supervisor, 2),
		logger: logger,
		config: config,
	}
	// Child supervisors pick up the root's event hook when added.
	for _, l := range []Layer{DataLayer, APILayer} {
		child := suture.New(l.String(), config.sutureSpec())
		t.root.Add(child)
		t.layers[l] = child
	}
	return t, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add runs svc under the given layer.
func (t *SupervisorTree) Add(l Layer, svc suture.Service) suture.ServiceToken {
	t.logger.Debug("Adding supervised service", "service", svc, "layer", l.String())
	return t.layers[l].Add(svc)
}

// AddDataService runs svc under the data layer.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.Add(DataLayer, svc)
}

// AddAPIService runs svc under the API layer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.Add(APILayer, svc)
}

// Serve blocks until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// Run serves the tree until ctx is canceled or the tree stops on its own.
// After cancellation it waits for the tree once, bounded by the shutdown
// timeout plus a grace period. Cancellation itself is not an error.
func (t *SupervisorTree) Run(ctx context.Context) error {
	errCh := t.ServeBackground(ctx)

	select {
	case err := <-errCh:
		return stopResult(err)
	case <-ctx.Done():
	}

	t.logger.Info("Shutdown signal received, waiting for supervisor tree")
	deadline := time.NewTimer(t.config.ShutdownTimeout + stopGrace)
	defer deadline.Stop()

	// ServeBackground sends exactly one value and never closes the channel.
	select {
	case err := <-errCh:
		return stopResult(err)
	case <-deadline.C:
		return ErrStopTimeout
	}
}

func stopResult(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ServeBackground runs the tree in a goroutine. The channel receives
// exactly one value when the tree stops and is never closed.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
