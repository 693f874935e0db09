package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ticketing-service/config"
	"ticketing-service/internal/pkg/log"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	TypeSweepStaleReservations = "sweep_stale_reservations"
)

type Scheduler struct {
	Log log.Logger
}

func redisConnOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// StartMonitoring serves the asynqmon dashboard and the Prometheus metrics
// endpoint on the monitoring port.
func (s *Scheduler) StartMonitoring(cfg *config.RedisConfig) {
	ctx := context.Background()
	h := asynqmon.New(asynqmon.Options{
		RootPath:     "/monitoring",
		RedisConnOpt: redisConnOpt(cfg),
	})

	mux := http.NewServeMux()
	mux.Handle(h.RootPath()+"/", h)
	mux.Handle("/metrics", promhttp.Handler())

	err := http.ListenAndServe(":8080", mux)
	s.Log.Error(ctx, "error start monitoring scheduler", err)
}

func (s *Scheduler) InitClient(cfg *config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisConnOpt(cfg))
}

// StartPeriodicSweep enqueues the stale-reservation sweep task on a fixed
// interval. The sweep handler itself serializes concurrent runs.
func (s *Scheduler) StartPeriodicSweep(cfg *config.RedisConfig, interval time.Duration) {
	ctx := context.Background()
	sched := asynq.NewScheduler(redisConnOpt(cfg), &asynq.SchedulerOpts{})

	if _, err := sched.Register(fmt.Sprintf("@every %s", interval), asynq.NewTask(TypeSweepStaleReservations, nil)); err != nil {
		s.Log.Error(ctx, "error register periodic sweep", err)
		return
	}

	if err := sched.Run(); err != nil {
		s.Log.Error(ctx, "error run periodic sweep scheduler", err)
	}
}

func (s *Scheduler) StartHandler(cfg *config.RedisConfig, taskTypes []string, handlerFunc []func(ctx context.Context, t *asynq.Task) error) {
	ctx := context.Background()
	srv := asynq.NewServer(
		redisConnOpt(cfg),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 10,
			},
		},
	)
	mux := asynq.NewServeMux()

	for i, taskType := range taskTypes {
		mux = s.registerHandlers(mux, taskType, handlerFunc[i])
	}

	if err := srv.Run(mux); err != nil {
		s.Log.Error(ctx, "error start handler scheduler", err)
	}
}

func (s *Scheduler) registerHandlers(mux *asynq.ServeMux, typeTask string, handlerFunc func(ctx context.Context, t *asynq.Task) error) *asynq.ServeMux {
	// mux maps a type to a handler
	mux.HandleFunc(typeTask, handlerFunc)
	return mux
}
