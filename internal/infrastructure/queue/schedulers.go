package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"payrouter-backend/internal/shared"
	"payrouter-backend/pkg/logger"
)

// JobConfig tunes the periodic jobs.
type JobConfig struct {
	ProbeInterval string // cron spec for the health probe
	SweepInterval string // cron spec for the stale sweep
	SweepLimit    int    // max records refreshed per sweep run
}

func DefaultJobConfig() JobConfig {
	return JobConfig{
		ProbeInterval: "* * * * *",   // every minute
		SweepInterval: "*/5 * * * *", // every 5 minutes
		SweepLimit:    100,
	}
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig JobConfig
}

func NewScheduler(redisAddress string, jobConfig JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterPeriodicJobs() error {
	if err := s.registerHealthProbeJob(); err != nil {
		return err
	}

	if err := s.registerStaleSweepJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Provider Health Probe (every minute)
// ================================================
// Keeps the registry's last-known health fresh so /providers/status
// never blocks on live probes.
func (s *Scheduler) registerHealthProbeJob() error {
	payload, err := json.Marshal(shared.ProbeProviderHealthPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeProbeProviderHealth, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.ProbeInterval,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ProbeProviderHealth job", err)
		return err
	}

	logger.Info("✓ Registered ProbeProviderHealth", map[string]interface{}{
		"cron": s.jobConfig.ProbeInterval,
	})
	return nil
}

// ================================================
// JOB 2: Stale Payment Sweep (every 5 minutes)
// ================================================
// Safety net for webhook deliveries that never arrived: started
// payments past the stale window are re-queried from their provider.
func (s *Scheduler) registerStaleSweepJob() error {
	payload, err := json.Marshal(shared.SweepStalePaymentsPayload{
		Limit: s.jobConfig.SweepLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeSweepStalePayments, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.SweepInterval,
		task,
		asynq.Queue(shared.QueuePayment),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SweepStalePayments job", err)
		return err
	}

	logger.Info("✓ Registered SweepStalePayments", map[string]interface{}{
		"cron":  s.jobConfig.SweepInterval,
		"limit": s.jobConfig.SweepLimit,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
