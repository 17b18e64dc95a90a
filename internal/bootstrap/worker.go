package bootstrap

import (
	"context"
	"os"

	"jobtrack_server/adapter/in/worker"
	"jobtrack_server/config"

	"github.com/rs/zerolog"
)

// Worker hosts the periodic scan sweeper.
type Worker struct {
	scanWorker *worker.ScanWorker
	deps       *Dependencies
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	scanWorker := worker.NewScanWorker(deps.Scans, deps.Accounts, cfg.WorkerInterval, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		scanWorker: scanWorker,
		deps:       deps,
		ctx:        ctx,
		cancel:     cancel,
	}, cleanup, nil
}

// Start runs the sweeper and blocks until Stop is called.
func (w *Worker) Start() {
	w.scanWorker.Start()
	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.scanWorker.Stop()
	w.cancel()
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}
