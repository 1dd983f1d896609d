package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

// TimetableService orchestrates a full scheduling run: grid expansion,
// section planning, assignment by the requested algorithm, diagnostics,
// and proposal retention for follow-up allocation and export calls.
type TimetableService struct {
	cfg       config.SchedulerConfig
	grid      *GridService
	planner   *SectionPlanner
	exact     *ConstraintSolver
	genetic   *GeneticSolver
	allocator *AllocationService
	diag      *DiagnosticsService
	cache     *CacheService
	metrics   *MetricsService
	validate  *validator.Validate
	log       *zap.Logger
	store     *proposalStore
}

// Proposal is one retained solve, addressable until its TTL lapses.
type Proposal struct {
	ID          string
	RequestedAt time.Time
	Config      models.AdminConfig
	Slots       []models.TimeSlot
	Courses     []models.Course
	Faculty     []models.Faculty
	Rooms       []models.Room
	Result      models.SolveResult
	Allocation  *models.AllocationReport
}

func NewTimetableService(
	cfg config.SchedulerConfig,
	grid *GridService,
	planner *SectionPlanner,
	exact *ConstraintSolver,
	genetic *GeneticSolver,
	allocator *AllocationService,
	diag *DiagnosticsService,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	log *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TimetableService{
		cfg:       cfg,
		grid:      grid,
		planner:   planner,
		exact:     exact,
		genetic:   genetic,
		allocator: allocator,
		diag:      diag,
		cache:     cache,
		metrics:   metrics,
		validate:  validate,
		log:       log,
		store:     newProposalStore(cfg.ProposalTTL),
	}
}

// BuildGrid exposes the grid builder to the HTTP layer.
func (s *TimetableService) BuildGrid(req dto.GridRequest) (*dto.GridResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	slots, err := s.grid.BuildGrid(req.ToConfig())
	if err != nil {
		return nil, err
	}
	resp := &dto.GridResponse{
		Slots:         slots,
		WorkingDays:   req.WorkingDays,
		TotalCapacity: len(slots),
	}
	resp.DayGrid = make(map[string][]string, len(req.WorkingDays))
	for _, slot := range slots {
		if slot.Kind == models.SlotLabEligible {
			resp.LabSlots++
		} else {
			resp.TheorySlots++
		}
		resp.DayGrid[slot.Day] = append(resp.DayGrid[slot.Day], fmt.Sprintf("%s (%s-%s)", slot.ID, slot.StartTime, slot.EndTime))
	}
	if len(req.WorkingDays) > 0 {
		resp.SlotsPerDay = len(slots) / len(req.WorkingDays)
	}
	return resp, nil
}

// PlanAndAssign runs the whole pipeline and retains the result as a
// proposal. Identical requests are served from cache when one is wired.
func (s *TimetableService) PlanAndAssign(ctx context.Context, req dto.PlanAndAssignRequest) (*dto.PlanAndAssignResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	cacheKey := solveCacheKey(req)
	var cached dto.PlanAndAssignResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		if _, ok := s.store.Get(cached.ProposalID); ok {
			s.log.Debug("solve served from cache", zap.String("proposal_id", cached.ProposalID))
			return &cached, nil
		}
	}

	adminCfg := req.Grid.ToConfig()
	slots, err := s.grid.BuildGrid(adminCfg)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrConfig, "the configuration yields an empty slot grid")
	}

	courses := req.ToCourses()
	faculty := req.ToFaculty()
	rooms := req.ToRooms()

	plan, err := s.planner.Plan(courses, req.StudentCount, rooms)
	if err != nil {
		return nil, err
	}
	if len(plan.Sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrConfig, "no course produced any sections")
	}

	budget := s.cfg.TimeBudget
	if req.TimeBudgetSeconds > 0 {
		budget = time.Duration(req.TimeBudgetSeconds) * time.Second
	}
	solveCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	in := SolveInput{
		Sections: plan.Sections,
		Courses:  courses,
		Faculty:  faculty,
		Rooms:    rooms,
		Slots:    slots,
	}

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = dto.AlgorithmConstraint
	}
	start := time.Now()
	var (
		status   models.SolveStatus
		sections []models.Section
		schedule []models.ScheduleEntry
		conflict []models.Conflict
	)
	switch algorithm {
	case dto.AlgorithmGenetic:
		status, sections, schedule, conflict = s.genetic.Solve(solveCtx, in, req.Seed)
	default:
		status, sections, schedule, conflict = s.exact.Solve(solveCtx, in)
	}
	elapsed := time.Since(start)

	detected := s.diag.DetectConflicts(schedule)
	conflict = mergeConflicts(conflict, detected)
	metrics := s.diag.ComputeMetrics(schedule, sections, faculty, rooms, slots)
	score := s.diag.Score(conflict, metrics)

	result := models.SolveResult{
		Status:          status,
		Sections:        sections,
		Schedule:        schedule,
		Conflicts:       conflict,
		Metrics:         metrics,
		Score:           score,
		Recommendations: s.diag.Recommend(status, conflict, metrics),
		ElapsedSeconds:  elapsed.Seconds(),
	}
	for _, w := range plan.Warnings {
		result.Conflicts = append(result.Conflicts, models.Conflict{
			Kind:        "planning_warning",
			Severity:    models.SeverityLow,
			Description: w,
		})
	}

	proposal := Proposal{
		ID:          uuid.NewString(),
		RequestedAt: time.Now(),
		Config:      adminCfg,
		Slots:       slots,
		Courses:     courses,
		Faculty:     faculty,
		Rooms:       rooms,
		Result:      result,
	}
	s.store.Save(proposal)
	s.metrics.ObserveSolveRun(algorithm, status, score, elapsed)
	s.log.Info("assignment run finished",
		zap.String("proposal_id", proposal.ID),
		zap.String("algorithm", algorithm),
		zap.String("status", string(status)),
		zap.Float64("score", score),
		zap.Duration("elapsed", elapsed))

	resp := &dto.PlanAndAssignResponse{ProposalID: proposal.ID, Result: result}
	if status == models.StatusOptimal || status == models.StatusFeasible {
		_ = s.cache.Set(ctx, cacheKey, resp, 0)
	}
	return resp, nil
}

// AllocateStudents places the request's students into a retained
// proposal's sections and attaches the report to the proposal.
func (s *TimetableService) AllocateStudents(ctx context.Context, req dto.AllocateRequest) (*dto.AllocateResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if proposal.Result.Status == models.StatusInfeasible {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot allocate students against an infeasible proposal")
	}

	sections, report := s.allocator.Allocate(proposal.Result.Sections, proposal.Courses, req.StudentIDs, req.ToPreferences())
	proposal.Result.Sections = sections
	proposal.Result.Metrics.AllocationSuccess = report.SuccessRate
	proposal.Result.Metrics.ElectiveSatisfaction = report.SatisfactionScore
	proposal.Result.Score = s.diag.Score(proposal.Result.Conflicts, proposal.Result.Metrics)
	proposal.Allocation = &report
	s.store.Save(proposal)

	s.log.Info("student allocation finished",
		zap.String("proposal_id", proposal.ID),
		zap.Int("students", len(req.StudentIDs)),
		zap.Float64("success_rate", report.SuccessRate))
	return &dto.AllocateResponse{ProposalID: proposal.ID, Report: report}, nil
}

// GetProposal returns a retained proposal by id.
func (s *TimetableService) GetProposal(id string) (*Proposal, error) {
	proposal, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return &proposal, nil
}

// DeleteProposal discards a retained proposal.
func (s *TimetableService) DeleteProposal(ctx context.Context, id string) error {
	if _, ok := s.store.Get(id); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	s.store.Delete(id)
	_ = s.cache.Invalidate(ctx, "solve:*")
	return nil
}

func mergeConflicts(a, b []models.Conflict) []models.Conflict {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]models.Conflict, 0, len(a)+len(b))
	for _, c := range append(a, b...) {
		key := c.Kind + "|" + c.Description
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// solveCacheKey is a stable digest of the full request payload.
func solveCacheKey(req dto.PlanAndAssignRequest) string {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Sprintf("solve:%d", time.Now().UnixNano())
	}
	sum := sha256.Sum256(raw)
	return "solve:" + hex.EncodeToString(sum[:8])
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]Proposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]Proposal),
	}
}

func (s *proposalStore) Save(proposal Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ID] = proposal
}

func (s *proposalStore) Get(id string) (Proposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return Proposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return Proposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
