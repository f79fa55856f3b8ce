package web

import (
	"net/http"

	"github.com/jvegaf/harmony-sub000/internal/analysis"
	"github.com/jvegaf/harmony-sub000/internal/config"
	"github.com/jvegaf/harmony-sub000/internal/fixer"
	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/logger"
	"github.com/jvegaf/harmony-sub000/internal/provider"
	"github.com/jvegaf/harmony-sub000/internal/tags"
)

// Server exposes the fix pipeline to a web frontend: REST endpoints to
// start fix batches and apply selections, and a WebSocket that streams
// batch progress.
type Server struct {
	jobMgr   *JobManager
	store    *library.Store
	analysis *analysis.Scheduler
	config   config.Config
	logger   *logger.Logger
}

// NewServer creates a Server.
func NewServer(jobMgr *JobManager, store *library.Store, sched *analysis.Scheduler, cfg config.Config, log *logger.Logger) *Server {
	return &Server{
		jobMgr:   jobMgr,
		store:    store,
		analysis: sched,
		config:   cfg,
		logger:   log,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.Dir("web/static")))

	mux.HandleFunc("/api/tracks", s.handleListTracks)
	mux.HandleFunc("/api/fix", s.handleFix)
	mux.HandleFunc("/api/apply", s.handleApply)
	mux.HandleFunc("/api/jobs", s.handleListJobs)
	mux.HandleFunc("/api/jobs/", s.handleJobAction)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// buildPipeline constructs a fresh pipeline from the current configuration.
// Each run gets its own provider clients and config snapshot; configuration
// edits take effect on the next run only.
func (s *Server) buildPipeline() (*fixer.Fixer, *fixer.Applier) {
	entries := provider.Build(s.config.Providers, s.logger)
	scorer := fixer.NewScorer(s.config.DurationToleranceSec)
	agg := fixer.NewAggregator(entries, scorer, s.config.TieEpsilon, s.logger)

	var tagWriter fixer.TagWriter
	if s.config.WriteFileTags {
		tagWriter = tags.Writer{}
	}

	applier := fixer.NewApplier(s.store, agg, tagWriter, s.analysis, s.logger)
	fx := fixer.NewFixer(agg, applier, s.config.AutoApplyThreshold, s.logger)
	return fx, applier
}
