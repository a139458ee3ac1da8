package history

import (
	"context"
	"errors"
	"time"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/events"
	"github.com/user/llmbench/pkg/logger"
)

const appendTimeout = 10 * time.Second

// Recorder appends a record for every completed query, comparison and
// agent answer published on the bus.
type Recorder struct {
	store Store
	bus   events.Bus
	log   *logger.Logger

	onResult     func(compare.ResultEvent)
	onComparison func(compare.ComparisonEvent)
	onAnswer     func(agent.AnswerEvent)
}

// NewRecorder creates a recorder. Call Start to subscribe.
func NewRecorder(store Store, bus events.Bus, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Recorder{store: store, bus: bus, log: log.WithComponent("history")}
	r.onResult = func(e compare.ResultEvent) { r.append(FromResult(&e.Result)) }
	r.onComparison = func(e compare.ComparisonEvent) { r.append(FromComparison(&e.Comparison)) }
	r.onAnswer = func(e agent.AnswerEvent) { r.append(FromAnswer(&e.Answer)) }
	return r
}

// Start subscribes the recorder. Handlers run asynchronously; use the
// bus's WaitAsync to flush them.
func (r *Recorder) Start() error {
	return errors.Join(
		r.bus.SubscribeAsync(events.TopicResultCompleted, r.onResult),
		r.bus.SubscribeAsync(events.TopicComparisonCompleted, r.onComparison),
		r.bus.SubscribeAsync(events.TopicAgentAnswered, r.onAnswer),
	)
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() error {
	return errors.Join(
		r.bus.Unsubscribe(events.TopicResultCompleted, r.onResult),
		r.bus.Unsubscribe(events.TopicComparisonCompleted, r.onComparison),
		r.bus.Unsubscribe(events.TopicAgentAnswered, r.onAnswer),
	)
}

func (r *Recorder) append(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()
	if err := r.store.Append(ctx, rec); err != nil {
		r.log.Warnw("failed to record history", "kind", rec.Kind, "error", err)
		return
	}
	r.log.Debugw("history recorded", "id", rec.ID, "kind", rec.Kind)
}

// Open returns the store configured in cfg: postgres when a DSN is set,
// otherwise a JSON file under the history directory.
func Open(cfg config.HistoryConfig) (Store, error) {
	if cfg.DSN != "" {
		db, err := OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)
	}
	return NewFileStore(cfg.Dir, DefaultMaxRecords), nil
}
