package ratelog

import (
	"fmt"

	"github.com/robfig/cron/v3"

	mferrors "github.com/vnykmshr/metricflow/pkg/common/errors"
)

// Watcher samples a running total on a wall-clock schedule and feeds the
// delta since the previous tick to a RateLogger. It suits pipelines whose
// instrumentation is time-driven rather than element-count driven.
type Watcher struct {
	r     *RateLogger
	total func() int64
	last  int64
	cron  *cron.Cron
}

// NewWatcher creates a Watcher reading the running total from total. The
// baseline for the first delta is the total at construction time. The
// sampling schedule comes from r's interval; sub-second intervals are
// rejected since the scheduler ticks at second granularity.
func NewWatcher(r *RateLogger, total func() int64) (*Watcher, error) {
	if r == nil {
		return nil, mferrors.NewValidationError("ratelog", "RateLogger", nil, "cannot be nil")
	}
	if total == nil {
		return nil, mferrors.NewValidationError("ratelog", "total", nil, "cannot be nil")
	}
	if r.Interval().Seconds() < 1 {
		return nil, mferrors.NewValidationError("ratelog", "IntervalSecs", r.cfg.IntervalSecs,
			"must be at least one second for wall-clock sampling").
			WithHint("use WithRateGauge for sub-second intervals")
	}

	w := &Watcher{r: r, total: total, last: total(), cron: cron.New()}
	spec := fmt.Sprintf("@every %s", r.Interval())
	if _, err := w.cron.AddFunc(spec, w.tick); err != nil {
		return nil, mferrors.NewOperationError("ratelog", "NewWatcher", err).WithContext(spec)
	}
	return w, nil
}

// Start begins sampling. Tick activations align to whole-second boundaries,
// so the first tick can fire less than one full interval after Start.
func (w *Watcher) Start() {
	w.cron.Start()
}

// Stop halts sampling. No tick fires after Stop returns; an in-flight tick
// is not rolled back.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Watcher) tick() {
	current := w.total()
	delta := current - w.last
	w.last = current
	if delta < 0 {
		// The total moved backwards (e.g. a counter reset); skip the
		// tick rather than report a negative count.
		return
	}
	w.r.record(delta)
}
