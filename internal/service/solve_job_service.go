package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/pkg/config"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
	"github.com/slotwise/timetable-api/pkg/jobs"
)

const (
	jobStatusQueued   = "queued"
	jobStatusRunning  = "running"
	jobStatusFinished = "finished"
	jobStatusFailed   = "failed"
)

// SolveJobService runs assignment requests in the background so callers
// can submit large problems and poll instead of holding a connection
// open for the whole solve.
type SolveJobService struct {
	timetables *TimetableService
	queue      *jobs.Queue
	log        *zap.Logger

	ttl  time.Duration
	mu   sync.RWMutex
	jobs map[string]*jobRecord
}

type jobRecord struct {
	status dto.JobStatus
	req    dto.PlanAndAssignRequest
}

func NewSolveJobService(timetables *TimetableService, cfg config.JobsConfig, log *zap.Logger) *SolveJobService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SolveJobService{
		timetables: timetables,
		log:        log,
		ttl:        cfg.ResultTTL,
		jobs:       make(map[string]*jobRecord),
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	s.queue = jobs.NewQueue("solve", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     log,
	})
	return s
}

// Start launches the worker pool.
func (s *SolveJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *SolveJobService) Stop() {
	s.queue.Stop()
}

// Submit validates the request eagerly, then queues the solve.
func (s *SolveJobService) Submit(req dto.PlanAndAssignRequest) (*dto.JobAccepted, error) {
	if err := s.timetables.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.jobs[id] = &jobRecord{
		status: dto.JobStatus{JobID: id, Status: jobStatusQueued, Submitted: time.Now().UTC()},
		req:    req,
	}
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: id, Type: "plan_and_assign"}); err != nil {
		s.mu.Lock()
		delete(s.jobs, id)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue solve job")
	}
	return &dto.JobAccepted{JobID: id, Status: jobStatusQueued, PollPath: "/jobs/" + id}, nil
}

// Status returns the current state of a submitted job.
func (s *SolveJobService) Status(id string) (*dto.JobStatus, error) {
	s.mu.RLock()
	rec, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found or expired")
	}
	status := rec.status
	return &status, nil
}

func (s *SolveJobService) handle(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	rec, ok := s.jobs[job.ID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	rec.status.Status = jobStatusRunning
	req := rec.req
	s.mu.Unlock()

	resp, err := s.timetables.PlanAndAssign(ctx, req)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.status.Finished = &now
	if err != nil {
		rec.status.Status = jobStatusFailed
		rec.status.Error = err.Error()
		s.log.Warn("background solve failed", zap.String("job_id", job.ID), zap.Error(err))
	} else {
		rec.status.Status = jobStatusFinished
		rec.status.ProposalID = resp.ProposalID
		rec.status.Result = resp
	}
	s.expireLocked(now)
	return err
}

// expireLocked drops finished records past their TTL. Called with the
// mutex held.
func (s *SolveJobService) expireLocked(now time.Time) {
	for id, rec := range s.jobs {
		if rec.status.Finished != nil && now.Sub(*rec.status.Finished) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
