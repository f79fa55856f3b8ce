package analysis

import (
	"context"
	"sync"

	"github.com/jvegaf/harmony-sub000/internal/logger"
)

// AnalyzeFunc performs BPM/key analysis on a batch of audio files.
type AnalyzeFunc func(ctx context.Context, paths []string)

// Scheduler queues audio files for downstream BPM/key analysis.
// ScheduleAnalysis is fire-and-forget: callers never block on the queue
// and never wait for results. A single worker drains the queue in batches.
type Scheduler struct {
	log     *logger.Logger
	analyze AnalyzeFunc

	mu      sync.Mutex
	pending []string
	wake    chan struct{}
}

// NewScheduler creates a Scheduler. A nil analyze func only logs what
// would be analyzed, which is all the pipeline itself needs.
func NewScheduler(log *logger.Logger, analyze AnalyzeFunc) *Scheduler {
	s := &Scheduler{
		log:     log,
		analyze: analyze,
		wake:    make(chan struct{}, 1),
	}
	if s.analyze == nil {
		s.analyze = func(_ context.Context, paths []string) {
			log.Info("audio analysis requested for %d files", len(paths))
		}
	}
	return s
}

// ScheduleAnalysis enqueues the given file paths and returns immediately.
func (s *Scheduler) ScheduleAnalysis(paths []string) {
	if len(paths) == 0 {
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, paths...)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns a snapshot of the queued file paths.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pending...)
}

// Run drains the queue until ctx is cancelled. Intended to be started as
// a goroutine next to the batch pipeline.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		for {
			batch := s.drain()
			if len(batch) == 0 {
				break
			}
			s.log.Debug("analyzing batch of %d files", len(batch))
			s.analyze(ctx, batch)
		}
	}
}

func (s *Scheduler) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.pending
	s.pending = nil
	return batch
}
