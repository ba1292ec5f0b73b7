package enrich

import (
	"time"

	"moviemeta/internal/catalog"
)

// Restart describes an abandoned pass.
type Restart struct {
	// Pass is the pass that was abandoned.
	Pass      int
	Candidate catalog.Candidate
	Err       error
}

// Summary describes a finished run.
type Summary struct {
	Passes   int
	Restarts int
	// Total is the number of candidates that needed classification, less any
	// that an earlier classification turned out to cover.
	Total      int
	Classified int
	Found      int
	NotFound   int
	Elapsed    time.Duration
}

// Observer receives engine events. All callbacks run on the engine's
// goroutine, in order.
type Observer interface {
	OnStart(total int)
	OnClassified(ev Event, progress Progress)
	OnRestart(r Restart)
	OnDone(summary Summary)
}

// PhaseObserver is implemented by observers that also want every state
// transition of the restart controller.
type PhaseObserver interface {
	OnPhase(from, to Phase)
}

// ObserverFuncs implements Observer with optional callbacks.
type ObserverFuncs struct {
	Start      func(total int)
	Classified func(ev Event, progress Progress)
	Restarted  func(r Restart)
	Done       func(summary Summary)
	Phase      func(from, to Phase)
}

func (o ObserverFuncs) OnStart(total int) {
	if o.Start != nil {
		o.Start(total)
	}
}

func (o ObserverFuncs) OnClassified(ev Event, progress Progress) {
	if o.Classified != nil {
		o.Classified(ev, progress)
	}
}

func (o ObserverFuncs) OnRestart(r Restart) {
	if o.Restarted != nil {
		o.Restarted(r)
	}
}

func (o ObserverFuncs) OnDone(summary Summary) {
	if o.Done != nil {
		o.Done(summary)
	}
}

func (o ObserverFuncs) OnPhase(from, to Phase) {
	if o.Phase != nil {
		o.Phase(from, to)
	}
}

// OnUpdate builds an observer that only reports classifications as
// (event, found) pairs.
func OnUpdate(fn func(ev Event, found bool)) Observer {
	return ObserverFuncs{Classified: func(ev Event, _ Progress) {
		if fn != nil {
			fn(ev, ev.Found)
		}
	}}
}

// MultiObserver fans events out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	filtered := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

type multiObserver []Observer

func (m multiObserver) OnStart(total int) {
	for _, o := range m {
		o.OnStart(total)
	}
}

func (m multiObserver) OnClassified(ev Event, progress Progress) {
	for _, o := range m {
		o.OnClassified(ev, progress)
	}
}

func (m multiObserver) OnRestart(r Restart) {
	for _, o := range m {
		o.OnRestart(r)
	}
}

func (m multiObserver) OnDone(summary Summary) {
	for _, o := range m {
		o.OnDone(summary)
	}
}

func (m multiObserver) OnPhase(from, to Phase) {
	for _, o := range m {
		if po, ok := o.(PhaseObserver); ok {
			po.OnPhase(from, to)
		}
	}
}
