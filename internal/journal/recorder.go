package journal

import (
	"context"
	"errors"
	"log/slog"

	"moviemeta/internal/enrich"
	"moviemeta/internal/logging"
)

// Recorder persists engine events for one run. Write failures are logged and
// remembered; they never stop the engine.
type Recorder struct {
	ctx    context.Context
	store  *Store
	runID  string
	logger *slog.Logger
	err    error
}

// NewRecorder binds a store and run id to an enrich.Observer.
func NewRecorder(ctx context.Context, store *Store, runID string, logger *slog.Logger) *Recorder {
	return &Recorder{
		ctx:    ctx,
		store:  store,
		runID:  runID,
		logger: logging.NewComponentLogger(logger, "journal"),
	}
}

// Err returns the first write failure, if any.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) OnStart(int) {}

func (r *Recorder) OnClassified(ev enrich.Event, _ enrich.Progress) {
	r.note(r.store.RecordClassification(r.writeContext(), r.runID, ev), ev.Candidate.Title)
}

func (r *Recorder) OnRestart(enrich.Restart) {
	r.note(r.store.RecordRestart(r.writeContext(), r.runID), "")
}

func (r *Recorder) OnDone(enrich.Summary) {}

// writeContext keeps journal writes alive after the run context is cancelled
// so the last classification before an interrupt is still recorded.
func (r *Recorder) writeContext() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(r.ctx)
}

func (r *Recorder) note(err error, title string) {
	if err == nil {
		return
	}
	if r.err == nil {
		r.err = err
	}
	logging.WarnWithContext(logging.WithContext(r.ctx, r.logger), "journal write failed", "journal_write_failed",
		logging.String("run", r.runID),
		logging.String(logging.FieldTitle, title),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check free space and permissions of the state directory"),
		logging.String(logging.FieldImpact, "this run may not be fully resumable"))
}

var _ enrich.Observer = (*Recorder)(nil)

// IsLocked reports whether err came from a held journal lock.
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}
