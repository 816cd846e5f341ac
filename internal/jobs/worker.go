package jobs

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker runs the asynq server that processes background tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker builds a server listening on the notifications and default queues.
func NewWorker(redis asynq.RedisClientOpt, concurrency int, notifications *NotificationHandler, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 10
	}
	server := asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueNotifications: 6,
			"default":          3,
		},
		Logger:   logger.Named("asynq").Sugar(),
		LogLevel: asynq.WarnLevel,
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeNotificationSend, notifications)

	return &Worker{server: server, mux: mux, logger: logger}
}

// Start begins processing in background goroutines.
func (w *Worker) Start() error {
	w.logger.Info("starting task worker")
	return w.server.Start(w.mux)
}

// Shutdown waits for in-flight tasks and stops the server.
func (w *Worker) Shutdown() {
	w.logger.Info("stopping task worker")
	w.server.Shutdown()
}
