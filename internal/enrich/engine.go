package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moviemeta/internal/catalog"
	"moviemeta/internal/logging"
	"moviemeta/internal/services"
)

// DefaultTimeout bounds a single lookup when Options.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Phase is a state of the restart controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseIterating
	PhaseWaiting
	PhaseClassified
	PhaseTimedOut
	PhaseRestarting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseIterating:
		return "iterating"
	case PhaseWaiting:
		return "waiting"
	case PhaseClassified:
		return "classified"
	case PhaseTimedOut:
		return "timed_out"
	case PhaseRestarting:
		return "restarting"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Options configures an Engine.
type Options struct {
	// Timeout bounds each lookup. Zero selects DefaultTimeout.
	Timeout  time.Duration
	Observer Observer
	Logger   *slog.Logger
}

// Engine drives sequential lookups with abort-and-restart on timeout.
type Engine struct {
	fetcher  Fetcher
	timeout  time.Duration
	observer Observer
	logger   *slog.Logger
	phase    Phase
}

// New constructs an engine around fetcher.
func New(fetcher Fetcher, opts Options) (*Engine, error) {
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "enrich", "new engine", "fetcher required", nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	observer := opts.Observer
	if observer == nil {
		observer = ObserverFuncs{}
	}
	return &Engine{
		fetcher:  fetcher,
		timeout:  timeout,
		observer: observer,
		logger:   logging.NewComponentLogger(opts.Logger, "enrich"),
	}, nil
}

// Phase returns the controller's current state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Run classifies every candidate not already represented in state. It returns
// when nothing remains, when ctx is done, or on a configuration error from
// the fetcher. Lookup timeouts and transport failures never surface: they
// abandon the pass and the remaining batch is retried immediately.
func (e *Engine) Run(ctx context.Context, candidates []catalog.Candidate, state *RunState) (Summary, error) {
	if state == nil {
		return Summary{}, services.Wrap(services.ErrValidation, "enrich", "run", "run state required", nil)
	}
	started := time.Now()
	e.phase = PhaseIdle
	logger := logging.WithContext(ctx, e.logger)

	acc := &accumulator{state: state, observer: e.observer}
	acc.total = len(Remaining(candidates, state))
	e.observer.OnStart(acc.total)

	summary := Summary{}
	finish := func(err error) (Summary, error) {
		summary.Total = acc.total
		summary.Classified = acc.classified
		summary.Found = len(state.found)
		summary.NotFound = len(state.notFound)
		summary.Elapsed = time.Since(started)
		if err == nil {
			e.observer.OnDone(summary)
		}
		return summary, err
	}

	for {
		e.transition(PhaseIterating)
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		remaining := Remaining(candidates, state)
		if len(remaining) == 0 {
			e.transition(PhaseDone)
			logger.Info("enrichment complete",
				logging.Int("passes", summary.Passes),
				logging.Int("restarts", summary.Restarts),
				logging.Int("found", len(state.found)),
				logging.Int("not_found", len(state.notFound)))
			return finish(nil)
		}

		// Titles covered by an alias classified in an earlier pass drop out
		// here without an event.
		acc.total = acc.classified + len(remaining)

		summary.Passes++
		passCtx := services.WithPass(ctx, summary.Passes)
		logging.WithContext(passCtx, e.logger).Info("pass started", logging.Int("remaining", len(remaining)))

		aborted, err := e.runPass(passCtx, remaining, acc)
		if err != nil {
			return finish(err)
		}
		if aborted != nil {
			summary.Restarts++
			e.observer.OnRestart(*aborted)
			e.transition(PhaseRestarting)
		}
	}
}

// runPass walks one pass. It returns a non-nil Restart when the pass was
// abandoned, or an error when the run must stop.
func (e *Engine) runPass(ctx context.Context, remaining []catalog.Candidate, acc *accumulator) (*Restart, error) {
	pass, _ := services.PassFromContext(ctx)
	for i, candidate := range remaining {
		// Earlier items in this pass may already cover a later one, for
		// example when the upstream title differs from the query.
		if acc.state.Represents(candidate) {
			acc.total--
			continue
		}

		lookupCtx := services.WithRequestID(ctx, fmt.Sprintf("%d.%d", pass, i+1))
		logger := logging.WithContext(lookupCtx, e.logger)

		e.transition(PhaseWaiting)
		res, err := e.fetch(lookupCtx, candidate)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if services.IsFatal(err) {
				logging.ErrorWithContext(logger, "lookup rejected by upstream", "lookup_fatal",
					logging.String(logging.FieldTitle, candidate.Title),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the OMDb API key"))
				return nil, err
			}
			e.transition(PhaseTimedOut)
			logging.WarnWithContext(logger, "lookup aborted; restarting remaining batch", "lookup_aborted",
				logging.String(logging.FieldTitle, candidate.Title),
				logging.String(logging.FieldYear, candidate.Year),
				logging.String("reason", services.FailureKind(err)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "a persistently failing title restarts the batch until it resolves or the run is interrupted"),
				logging.String(logging.FieldImpact, "classified titles are kept; unclassified ones are retried"))
			return &Restart{Pass: pass, Candidate: candidate, Err: err}, nil
		}

		e.transition(PhaseClassified)
		var ev Event
		if res.Outcome == OutcomeFound {
			ev = acc.recordFound(candidate, res.Movie)
		} else {
			ev = acc.recordNotFound(candidate)
		}
		logger.Debug("candidate classified",
			logging.String(logging.FieldTitle, candidate.Title),
			logging.String(logging.FieldYear, candidate.Year),
			logging.Bool("found", ev.Found))
		e.transition(PhaseIterating)
	}
	return nil, nil
}

// fetch performs one lookup inside its own cancellation scope. The scope is
// created immediately before the call and released as soon as it returns, so
// a timeout can never cancel a later request.
func (e *Engine) fetch(ctx context.Context, candidate catalog.Candidate) (Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.fetcher.Fetch(reqCtx, candidate)
	if err == nil && res.Outcome == OutcomeAborted {
		err = errAborted
	}
	if err != nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = services.Wrap(services.ErrTimeout, "enrich", "fetch",
			fmt.Sprintf("no response within %v", e.timeout), err)
	}
	return res, err
}

var errAborted = errors.New("lookup aborted")

func (e *Engine) transition(to Phase) {
	from := e.phase
	if from == to {
		return
	}
	e.phase = to
	if po, ok := e.observer.(PhaseObserver); ok {
		po.OnPhase(from, to)
	}
}
