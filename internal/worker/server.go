package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-workspace/internal/tasks"
)

// WorkerServer 封装了 Asynq Worker Server 和周期任务调度器的启动和关闭
type WorkerServer struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	log       *logrus.Entry

	cleanup *RoomCleanupHandler
	sweep   *PresenceSweepHandler

	sweepSchedule    string
	schedulerRunning bool
}

// NewWorkerServer 创建一个新的 WorkerServer 实例。sweepSchedule 为空时不注册在线状态巡检。
func NewWorkerServer(redisOpt asynq.RedisClientOpt, cleanup *RoomCleanupHandler, sweep *PresenceSweepHandler, sweepSchedule string, logger *logrus.Logger) *WorkerServer {
	if cleanup == nil {
		panic("RoomCleanupHandler cannot be nil for WorkerServer")
	}
	if sweep == nil {
		panic("PresenceSweepHandler cannot be nil for WorkerServer")
	}
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID := ""
				if rw := task.ResultWriter(); rw != nil {
					taskID = rw.TaskID()
				}
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:        server,
		scheduler:     asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{}),
		log:           logEntry,
		cleanup:       cleanup,
		sweep:         sweep,
		sweepSchedule: sweepSchedule,
	}
}

// NewServeMux 注册全部任务处理器。
func (ws *WorkerServer) NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRoomCleanup, ws.cleanup.ProcessTask)
	mux.HandleFunc(tasks.TypePresenceSweep, ws.sweep.ProcessTask)
	return mux
}

// Start 运行 Worker Server 和调度器，阻塞直到 Shutdown。
// 它应该在一个单独的 goroutine 中调用
func (ws *WorkerServer) Start() {
	ws.startScheduler()

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(ws.NewServeMux()); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
	}
	ws.log.Info("Worker server stopped.")
}

func (ws *WorkerServer) startScheduler() {
	if ws.sweepSchedule == "" {
		ws.log.Info("Presence sweep schedule is empty, periodic sweep disabled")
		return
	}
	entryID, err := ws.scheduler.Register(ws.sweepSchedule, tasks.NewPresenceSweepTask(), asynq.Queue("low"))
	if err != nil {
		ws.log.WithError(err).Errorf("Could not register periodic presence sweep with schedule '%s'", ws.sweepSchedule)
		return
	}
	ws.log.Infof("Periodic presence sweep registered with schedule '%s' (EntryID: %s)", ws.sweepSchedule, entryID)
	ws.schedulerRunning = true

	go func() {
		ws.log.Info("Asynq scheduler starting...")
		if err := ws.scheduler.Run(); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Errorf("Asynq scheduler Run() failed: %v", err)
		}
	}()
}

// Shutdown 优雅地关闭调度器和 Worker Server
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	if ws.schedulerRunning {
		ws.scheduler.Shutdown()
	}
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
