package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"optiplan/auth/internal/repository"
)

// Scheduler sweeps expired sessions and dead verification tokens so
// the tables do not accumulate rows that Validate would reject anyway.
type Scheduler struct {
	cron     *cron.Cron
	sessions repository.SessionStore
	verifs   repository.VerificationStore
	log      zerolog.Logger
}

func NewScheduler(sessions repository.SessionStore, verifs repository.VerificationStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		verifs:   verifs,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish, up to 5 seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()

	sessions, err := s.sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep expired sessions failed")
	}

	verifs, err := s.verifs.DeleteDeadVerifications(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep verifications failed")
	}

	s.log.Info().
		Int64("sessions", sessions).
		Int64("verifications", verifs).
		Msg("sweep completed")
}
