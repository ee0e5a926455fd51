package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Worker indexes analyses in the background. A poller re-enqueues anything
// still unindexed once its retry time has passed.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(analysisID uint)
}

type worker struct {
	indexer      Indexer
	jobQueue     chan uint
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	log          logrus.FieldLogger

	mu      sync.Mutex
	pending map[uint]struct{}
}

func NewWorker(indexer Indexer, concurrency int, pollInterval time.Duration, log logrus.FieldLogger) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &worker{
		indexer:      indexer,
		jobQueue:     make(chan uint, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		log:          log.WithField("component", "worker"),
		pending:      make(map[uint]struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.WithField("concurrency", w.concurrency).Info("starting index worker")

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("index worker stopped")
	})
}

// EnqueueJob never blocks. A full queue drops the job and leaves it to the poller.
func (w *worker) EnqueueJob(analysisID uint) {
	select {
	case <-w.stopChan:
		return
	default:
	}

	w.mu.Lock()
	if _, queued := w.pending[analysisID]; queued {
		w.mu.Unlock()
		return
	}
	w.pending[analysisID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- analysisID:
	default:
		w.done(analysisID)
		w.log.WithField("analysis_id", analysisID).Warn("index queue full, deferring to poller")
	}
}

func (w *worker) done(analysisID uint) {
	w.mu.Lock()
	delete(w.pending, analysisID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.WithField("worker", workerID)

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-w.jobQueue:
			if err := w.indexer.IndexAnalysis(ctx, id); err != nil {
				log.WithError(err).WithField("analysis_id", id).Error("indexing failed")
			}
			w.done(id)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := w.indexer.PendingIDs(ctx, 10)
			if err != nil {
				w.log.WithError(err).Warn("failed to fetch unindexed analyses")
				continue
			}
			if len(ids) > 0 {
				w.log.WithField("count", len(ids)).Debug("re-enqueueing unindexed analyses")
			}
			for _, id := range ids {
				w.EnqueueJob(id)
			}
		}
	}
}
