package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docchat"
)

// Ensure LoggingSolver implements docchat.ChallengeSolver.
var _ docchat.ChallengeSolver = (*LoggingSolver)(nil)

// LoggingSolver wraps a ChallengeSolver with logging.
type LoggingSolver struct {
	next   docchat.ChallengeSolver
	logger *slog.Logger
}

// NewLoggingSolver creates a new LoggingSolver.
func NewLoggingSolver(next docchat.ChallengeSolver, logger *slog.Logger) *LoggingSolver {
	return &LoggingSolver{next: next, logger: logger}
}

// Solve delegates to the wrapped solver and logs the search bound.
func (s *LoggingSolver) Solve(ctx context.Context, d *docchat.ChallengeDescriptor) (solution string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("proof-of-work",
			"maxnumber", d.MaxNumber,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Solve(ctx, d)
}
