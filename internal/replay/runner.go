package replay

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/align"
	"statarb-lab/internal/analytics"
	"statarb-lab/internal/domain"
)

// Runner executes offline analytics passes over file input.
type Runner struct {
	engine *analytics.Engine
	logger *log.Logger
}

// NewRunner creates an offline runner around an existing engine.
func NewRunner(engine *analytics.Engine, logger *log.Logger) *Runner {
	return &Runner{engine: engine, logger: logger}
}

// RunFile loads a CSV file, aligns it for the configured pair, and runs one
// full analytics pass. Long (timestamp/symbol/price) and wide (x/y) layouts
// are both accepted; header names may use common aliases.
func (r *Runner) RunFile(path string, params domain.AnalyticsParams) (*analytics.Report, error) {
	tbl, err := LoadTable(path)
	if err != nil {
		return nil, err
	}

	series, err := align.FromTable(tbl, params.SymbolX, params.SymbolY)
	if err != nil {
		return nil, fmt.Errorf("align %s: %w", path, err)
	}
	if series.Empty() {
		r.logger.WithField("path", path).Warn("input produced no aligned rows")
	}

	return r.engine.RunSeries(series, params)
}
