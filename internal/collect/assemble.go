package collect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/ppiankov/hostprint/internal/config"
	"github.com/ppiankov/hostprint/internal/model"
	"github.com/ppiankov/hostprint/internal/redact"
)

// Options control one assembly run.
type Options struct {
	// Parallel bounds the worker pool. Values below 1 run one worker.
	Parallel int
	// Timeout bounds each collector independently.
	Timeout time.Duration
	// Hash enables sensitive-field hashing with the given rules.
	Hash      bool
	HashRules []config.HashRule
	// Logger receives per-collector progress; logr.Discard() silences it.
	Logger logr.Logger
}

// Assemble runs every registered collector under its own timeout on a
// bounded worker pool and returns a canonical snapshot. A collector
// failing or timing out never aborts assembly — its Reading is recorded
// with success=false. The snapshot's reading order is canonical (sorted by
// name) regardless of completion order.
//
// Cancelling ctx terminates in-flight collectors (and their external
// processes) and returns the context error instead of a partial snapshot.
func Assemble(ctx context.Context, reg *Registry, opts Options) (*model.Snapshot, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	workers := opts.Parallel
	if workers < 1 {
		workers = 1
	}
	names := reg.Names()
	if workers > len(names) {
		workers = len(names)
	}
	log := opts.Logger

	jobs := make(chan string)
	results := make(chan model.Reading)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				results <- runOne(ctx, reg, name, opts.Timeout, log)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, name := range names {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()

	// The assembler is the single writer of the snapshot being built;
	// workers hand readings over the results channel. On cancellation the
	// feeder stops, in-flight collectors return (their contexts are
	// children of ctx, so external processes are killed), and the channel
	// drains before we give up.
	readings := make(map[string]model.Reading, len(names))
	for r := range results {
		readings[r.Name] = r
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		Version:   model.SchemaVersion,
		CreatedAt: time.Now().UTC(),
		Readings:  readings,
	}
	snap.Hostname, _ = os.Hostname()

	if opts.Hash {
		snap = redact.HashSnapshot(snap, opts.HashRules)
	}

	log.V(1).Info("assembly complete",
		"collectors", len(names), "failures", snap.Failures(), "hashed", snap.Hashed)
	return snap, nil
}

// runOne executes a single collector under its own deadline and converts
// every failure mode into a failed Reading.
func runOne(ctx context.Context, reg *Registry, name string, timeout time.Duration, log logr.Logger) (reading model.Reading) {
	// The collector contract forbids panics, but one bad source must not
	// take the whole assembly down.
	defer func() {
		if r := recover(); r != nil {
			cerr := &model.CollectorError{Collector: name, Err: fmt.Errorf("panic: %v", r)}
			log.Error(cerr, "collector panicked", "collector", name)
			reading = model.Reading{Name: name, Success: false, Error: cerr.Error()}
		}
	}()

	c, ok := reg.Get(name)
	if !ok {
		return model.Reading{Name: name, Success: false, Error: "collector not registered"}
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	data, err := c.Collect(cctx)
	if err != nil {
		var rerr error = &model.CollectorError{Collector: name, Err: err}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			rerr = &model.TimeoutError{Collector: name, Limit: timeout}
		}
		log.V(1).Info("collector failed", "collector", name, "error", rerr.Error(), "elapsed", time.Since(start))
		return model.Reading{Name: name, Success: false, Error: rerr.Error()}
	}

	log.V(2).Info("collector done", "collector", name, "elapsed", time.Since(start))
	return model.Reading{Name: name, Success: true, Data: data}
}
