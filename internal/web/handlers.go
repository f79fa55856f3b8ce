package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jvegaf/harmony-sub000/internal/fixer"
	"github.com/jvegaf/harmony-sub000/internal/library"
)

type FixRequest struct {
	// TrackIDs selects which tracks to process; empty means the whole library.
	TrackIDs []string `json:"trackIds"`
}

type ApplyRequest struct {
	Selections []fixer.Selection `json:"selections"`
}

type ApplyResponse struct {
	Updated []*library.Track `json:"updated"`
	Errors  []ApplyError     `json:"errors"`
}

type ApplyError struct {
	TrackID string `json:"trackId"`
	Error   string `json:"error"`
}

type JobResponse struct {
	ID                string                  `json:"id"`
	Status            JobStatus               `json:"status"`
	Processed         int                     `json:"processed"`
	Total             int                     `json:"total"`
	CurrentTrackTitle string                  `json:"currentTrackTitle,omitempty"`
	UpdatedCount      int                     `json:"updatedCount"`
	ErrorCount        int                     `json:"errorCount"`
	Reviews           []fixer.CandidateResult `json:"reviews,omitempty"`
	Warning           string                  `json:"warning,omitempty"`
	Error             string                  `json:"error,omitempty"`
	CreatedAt         string                  `json:"created_at"`
	StartedAt         *string                 `json:"started_at,omitempty"`
	CompletedAt       *string                 `json:"completed_at,omitempty"`
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tracks, err := s.store.AllTracks(r.Context())
	if err != nil {
		s.logger.Error("Failed to list tracks: %v", err)
		http.Error(w, "Failed to list tracks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tracks)
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tracks, err := s.resolveTracks(r.Context(), req.TrackIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobMgr.CreateJob()
	s.logger.Info("Created fix job %s for %d tracks", job.ID, len(tracks))

	go s.processFixJob(job, tracks)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.jobToResponse(job))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	_, applier := s.buildPipeline()
	result := applier.ApplySelections(r.Context(), req.Selections, fixer.Hooks{})

	resp := ApplyResponse{Updated: result.Updated, Errors: []ApplyError{}}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, ApplyError{TrackID: e.TrackID, Error: e.Err.Error()})
	}

	s.logger.Info("Applied %d selections: %d updated, %d errors",
		len(req.Selections), len(result.Updated), len(resp.Errors))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = s.jobToResponse(job)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.jobToResponse(job))
		return
	}

	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if job.Cancel != nil {
			job.Cancel()
		}

		s.jobMgr.UpdateJob(jobID, func(j *Job) {
			j.Status = StatusCancelled
		})

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

func (s *Server) resolveTracks(ctx context.Context, trackIDs []string) ([]*library.Track, error) {
	if len(trackIDs) == 0 {
		return s.store.AllTracks(ctx)
	}

	tracks := make([]*library.Track, 0, len(trackIDs))
	for _, id := range trackIDs {
		track, err := s.store.TrackByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (s *Server) processFixJob(job *Job, tracks []*library.Track) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		j.Status = StatusRunning
		j.Progress = fixer.Progress{Total: len(tracks)}
	})

	s.logger.Info("Starting fix job %s", job.ID)

	fx, _ := s.buildPipeline()

	hooks := fixer.Hooks{
		OnProgress: func(p fixer.Progress) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Progress = p
			})
		},
		OnWarning: func(msg string) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Warning = msg
			})
		},
	}

	result, err := fx.FindCandidates(ctx, tracks, hooks)
	if err != nil {
		status := StatusFailed
		if ctx.Err() != nil {
			status = StatusCancelled
		}
		s.logger.Warn("Fix job %s stopped: %v", job.ID, err)
		s.jobMgr.UpdateJob(job.ID, func(j *Job) {
			j.Status = status
			j.Error = err.Error()
		})
		return
	}

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Status = StatusCompleted
		j.Reviews = result.Reviews()
		j.UpdatedCount = len(result.Updated)
		j.ErrorCount = len(result.Errors)
	})

	s.logger.Info("Fix job %s completed: %d updated, %d to review, %d errors",
		job.ID, len(result.Updated), len(result.Reviews()), len(result.Errors))
}

func (s *Server) jobToResponse(job *Job) *JobResponse {
	resp := &JobResponse{
		ID:                job.ID,
		Status:            job.Status,
		Processed:         job.Progress.Processed,
		Total:             job.Progress.Total,
		CurrentTrackTitle: job.Progress.CurrentTrackTitle,
		UpdatedCount:      job.UpdatedCount,
		ErrorCount:        job.ErrorCount,
		Reviews:           job.Reviews,
		Warning:           job.Warning,
		Error:             job.Error,
		CreatedAt:         job.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format("2006-01-02 15:04:05")
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &completed
	}

	return resp
}
