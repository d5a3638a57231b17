package recorder

import (
	"time"

	"InvestSentinel/internal/model"
)

// RunRecord captures one completed run's outcomes for later review. Market
// data itself is never persisted; each run recomputes baselines fresh.
type RunRecord struct {
	RanAt     time.Time
	Fx        *model.FxZoneResult
	Triggers  model.TriggerReport
	Portfolio *model.PortfolioSnapshot
	Failures  []string
	Delivered bool
}

// FxChangeRecord captures one intraday zone-change alert.
type FxChangeRecord struct {
	ObservedAt time.Time
	Change     model.FxZoneChange
}

// Recorder persists run outcomes for review.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecordFxChange(rec *FxChangeRecord) error
	Close() error
}
