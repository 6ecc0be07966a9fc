package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.ChallengeSolver = (*ChallengeSolver)(nil)

// ChallengeSolver is a mock implementation of docchat.ChallengeSolver.
type ChallengeSolver struct {
	SolveFn func(ctx context.Context, d *docchat.ChallengeDescriptor) (string, error)
}

func (s *ChallengeSolver) Solve(ctx context.Context, d *docchat.ChallengeDescriptor) (string, error) {
	return s.SolveFn(ctx, d)
}
