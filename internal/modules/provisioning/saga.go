package provisioning

import (
	"context"

	"roflexi/internal/pkg/metrics"

	"go.uber.org/zap"
)

type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// saga records an undo action for every committed step so a later failure
// can roll the account back.
type saga struct {
	uid  string
	done []compensation
	log  *zap.Logger
}

func newSaga(log *zap.Logger) *saga {
	return &saga{log: log}
}

func (s *saga) push(step string, undo func(ctx context.Context) error) {
	s.done = append(s.done, compensation{step: step, undo: undo})
}

// unwind runs the recorded undo actions newest first. It keeps going past
// failures and ignores cancellation of ctx.
func (s *saga) unwind(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(s.done) - 1; i >= 0; i-- {
		c := s.done[i]
		if err := c.undo(ctx); err != nil {
			metrics.Compensations.WithLabelValues(c.step, "error").Inc()
			s.log.Error("compensation failed",
				zap.String("uid", s.uid),
				zap.String("step", c.step),
				zap.Error(err),
			)
			continue
		}
		metrics.Compensations.WithLabelValues(c.step, "ok").Inc()
		s.log.Info("compensated", zap.String("uid", s.uid), zap.String("step", c.step))
	}
	s.done = nil
}
