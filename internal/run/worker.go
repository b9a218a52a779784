package run

import (
	"context"
	"time"

	"hashortcuts/internal/action"
	"hashortcuts/internal/control"
)

// worker executes queued firings until ctx is done. A call in flight when
// ctx ends is abandoned with it.
func (s *Server) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.jobCh:
			s.logger.WithField("firing", j.id).Debugf("executing %s", j.shortcut.Name)
			res, err := s.runner.Trigger(ctx, s.cfg.Server, j.shortcut, action.SourceHotkey)
			f := control.Firing{
				ID:         j.id,
				Shortcut:   j.shortcut.Name,
				OK:         err == nil && res.OK,
				StatusCode: res.StatusCode,
				ElapsedMS:  res.ElapsedMS,
				Timestamp:  time.Now(),
			}
			if err != nil {
				f.Error = err.Error()
			}
			if f.OK {
				s.metrics.incOK()
			} else {
				s.metrics.incFailed()
			}
			s.recordFiring(f)
		}
	}
}
