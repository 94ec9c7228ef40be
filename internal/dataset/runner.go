package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/duncaneddy/SATPLAN/internal/catalog"
	"github.com/duncaneddy/SATPLAN/internal/logging"
	"github.com/duncaneddy/SATPLAN/internal/observability"
	"github.com/duncaneddy/SATPLAN/model"
)

// Recorder receives one observation per processed matrix cell.
// *observability.Collector satisfies it.
type Recorder interface {
	ObserveConstellation(family, status string, satellites int, elapsed time.Duration)
}

// Summary tallies a batch run.
type Summary struct {
	Written int
	Skipped int
	Failed  int
	// Files lists every written file in matrix order.
	Files []string
}

// Runner drives an Assembler over the whole matrix and persists results.
type Runner struct {
	asm     *Assembler
	writer  *Writer
	log     logging.Logger
	rec     Recorder
	catalog *catalog.Catalog
	workers int
	czml    StateConverter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used for per-size reporting.
func WithRunnerLogger(l logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.rec = rec }
}

// WithCatalog registers every written record in c.
func WithCatalog(c *catalog.Catalog) RunnerOption {
	return func(r *Runner) { r.catalog = c }
}

// WithWorkers bounds the number of pairs assembled concurrently. Values
// below one select GOMAXPROCS.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) { r.workers = n }
}

// WithCZML enables the visualization export alongside each JSON file.
func WithCZML(conv StateConverter) RunnerOption {
	return func(r *Runner) { r.czml = conv }
}

// NewRunner wires a runner around asm and w.
func NewRunner(asm *Assembler, w *Writer, opts ...RunnerOption) (*Runner, error) {
	if asm == nil {
		return nil, errors.New("dataset: nil assembler")
	}
	if w == nil {
		return nil, errors.New("dataset: nil writer")
	}
	r := &Runner{
		asm:    asm,
		writer: w,
		log:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	return r, nil
}

type outcome struct {
	pair     Pair
	status   string
	path     string
	czmlPath string
	satCount int
	err      error
	elapsed  time.Duration
	record   *model.ConstellationRecord
}

// Run processes every (family, size) pair. Sizes without a Walker code are
// skipped with a warning. A failing size does not stop the others; all
// failures are joined into the returned error once the batch is done.
// Reporting follows matrix order whatever the worker count.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	ctx, log := logging.WithRunLogger(ctx, r.log)
	ctx = logging.ContextWithLogger(ctx, log)
	pairs := r.asm.cfg.Pairs()
	outcomes := make([]outcome, len(pairs))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = outcome{pair: p, status: observability.StatusFailed, err: err}
				return nil
			}
			outcomes[i] = r.process(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	var (
		sum  Summary
		errs []error
	)
	for _, o := range outcomes {
		fields := []logging.Field{
			logging.String("family", o.pair.Family.Name),
			logging.Int("size", o.pair.Size),
		}
		switch o.status {
		case observability.StatusWritten:
			sum.Written++
			sum.Files = append(sum.Files, o.path)
			if o.czmlPath != "" {
				sum.Files = append(sum.Files, o.czmlPath)
			}
			if r.catalog != nil && o.record != nil {
				key := catalog.Key{Family: o.pair.Family.Name, Size: o.pair.Size}
				if err := r.catalog.Add(key, o.path, o.record); err != nil {
					log.Warn(ctx, "catalog registration failed", append(fields, logging.Err(err))...)
				}
			}
			log.Info(ctx, "saved constellation", append(fields,
				logging.String("path", o.path),
				logging.Int("satellites", o.satCount),
			)...)
		case observability.StatusSkipped:
			sum.Skipped++
			log.Warn(ctx, "skipping constellation size without walker configuration", fields...)
		default:
			sum.Failed++
			errs = append(errs, fmt.Errorf("%s/%d: %w", o.pair.Family.Name, o.pair.Size, o.err))
			log.Error(ctx, "constellation generation failed", append(fields, logging.Err(o.err))...)
		}
	}

	log.Info(ctx, "generation complete",
		logging.Int("written", sum.Written),
		logging.Int("skipped", sum.Skipped),
		logging.Int("failed", sum.Failed),
	)
	return sum, errors.Join(errs...)
}

func (r *Runner) process(ctx context.Context, p Pair) (o outcome) {
	ctx, span := observability.StartCellSpan(ctx, p.Family.Name, p.Size)
	logging.FromContext(ctx).Debug(ctx, "assembling constellation",
		logging.String("family", p.Family.Name),
		logging.Int("size", p.Size),
	)

	start := time.Now()
	o.pair = p
	defer func() {
		o.elapsed = time.Since(start)
		observability.EndCellSpan(span, o.satCount, o.status == observability.StatusSkipped, o.err)
		if r.rec != nil {
			r.rec.ObserveConstellation(p.Family.Name, o.status, o.satCount, o.elapsed)
		}
	}()

	rec, err := r.asm.Assemble(ctx, p.Family, p.Size)
	switch {
	case errors.Is(err, ErrMissingWalkerConfig):
		o.status = observability.StatusSkipped
		return o
	case err != nil:
		return o.failed(err)
	}

	// The dataset file goes last so a failed size never leaves one behind.
	if r.czml != nil {
		czmlPath, err := r.writer.WriteCZML(rec, r.asm.cfg.Epoch, r.czml)
		if err != nil {
			return o.failed(err)
		}
		o.czmlPath = czmlPath
	}
	path, err := r.writer.Write(rec)
	if err != nil {
		if o.czmlPath != "" {
			_ = os.Remove(o.czmlPath)
			o.czmlPath = ""
		}
		return o.failed(err)
	}
	o.path = path

	o.status = observability.StatusWritten
	o.satCount = len(rec.Spacecraft)
	o.record = rec
	return o
}

func (o outcome) failed(err error) outcome {
	o.status = observability.StatusFailed
	o.err = err
	return o
}
