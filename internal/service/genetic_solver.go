package service

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
)

// GeneticSolver searches the assignment space with a genetic algorithm.
// Conflicts are penalized rather than forbidden during the search, so it
// stays usable on problem sizes where exact search is impractical. The
// result shape is identical to the exact solver's.
type GeneticSolver struct {
	cfg  config.GeneticConfig
	sch  config.SchedulerConfig
	diag *DiagnosticsService
	log  *zap.Logger

	// onGeneration, when set, observes the best-ever fitness after each
	// generation. Used by tests to watch convergence.
	onGeneration func(generation int, bestFitness float64)
}

func NewGeneticSolver(cfg config.GeneticConfig, sch config.SchedulerConfig, diag *DiagnosticsService, log *zap.Logger) *GeneticSolver {
	if log == nil {
		log = zap.NewNop()
	}
	if diag == nil {
		diag = NewDiagnosticsService(sch)
	}
	return &GeneticSolver{cfg: cfg, sch: sch, diag: diag, log: log}
}

// gene assigns one required meeting of one section.
type gene struct {
	sectionIdx int
	facultyIdx int
	roomIdx    int
	slotIdx    int
}

type individual struct {
	genes   []gene
	fitness float64
}

// meetingSlot fixes the enumeration order: one entry per required
// meeting of every section, in section order.
type meetingSlot struct {
	sectionIdx int
	domain     *sectionDomain
}

// Solve evolves a population and converts the best individual ever seen
// into the shared result shape. Determinism follows the seed: the same
// seed and input always yield the same schedule.
func (g *GeneticSolver) Solve(ctx context.Context, in SolveInput, seed int64) (models.SolveStatus, []models.Section, []models.ScheduleEntry, []models.Conflict) {
	domains, pruneConflicts := (&ConstraintSolver{cfg: g.sch, log: g.log}).buildDomains(in)
	if len(pruneConflicts) > 0 {
		return models.StatusInfeasible, in.Sections, nil, pruneConflicts
	}

	domainBySection := make(map[string]*sectionDomain, len(domains))
	for i := range domains {
		domainBySection[domains[i].section.ID] = &domains[i]
	}
	var meetings []meetingSlot
	for si, sec := range in.Sections {
		d, ok := domainBySection[sec.ID]
		if !ok {
			continue
		}
		for m := 0; m < sec.RequiredMeetings; m++ {
			meetings = append(meetings, meetingSlot{sectionIdx: si, domain: d})
		}
	}
	if len(meetings) == 0 {
		return models.StatusInfeasible, in.Sections, nil, nil
	}

	if seed == 0 {
		seed = g.cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pop := make([]individual, g.cfg.PopulationSize)
	for i := range pop {
		pop[i] = g.randomIndividual(rng, meetings)
		pop[i].fitness = g.fitness(pop[i], in, meetings)
	}
	sortByFitness(pop)

	best := cloneIndividual(pop[0])
	stall := 0
	interrupted := false

	for gen := 0; gen < g.cfg.Generations; gen++ {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		pop = g.nextGeneration(rng, pop, in, meetings)
		if pop[0].fitness > best.fitness {
			best = cloneIndividual(pop[0])
			stall = 0
		} else {
			stall++
		}
		if g.onGeneration != nil {
			g.onGeneration(gen, best.fitness)
		}
		if stall >= g.cfg.StallLimit {
			g.log.Debug("genetic search stalled", zap.Int("generation", gen), zap.Float64("fitness", best.fitness))
			break
		}
	}

	sections, schedule := g.convert(best, in, meetings)
	conflicts := g.diag.DetectConflicts(schedule)
	status := models.StatusFeasible
	switch {
	case interrupted:
		status = models.StatusTimedOut
	case len(conflicts) > 0:
		status = models.StatusInfeasible
	}
	return status, sections, schedule, conflicts
}

func (g *GeneticSolver) randomIndividual(rng *rand.Rand, meetings []meetingSlot) individual {
	genes := make([]gene, len(meetings))
	for i, m := range meetings {
		d := m.domain
		genes[i] = gene{
			sectionIdx: m.sectionIdx,
			facultyIdx: d.faculty[rng.Intn(len(d.faculty))],
			roomIdx:    d.rooms[rng.Intn(len(d.rooms))],
			slotIdx:    d.slots[rng.Intn(len(d.slots))],
		}
	}
	return individual{genes: genes}
}

// fitness is the weighted blend of conflict freedom, workload balance,
// utilization proximity to the ideal band, and hard-limit satisfaction.
func (g *GeneticSolver) fitness(ind individual, in SolveInput, meetings []meetingSlot) float64 {
	roomClaims := make(map[int]map[int]int)
	facClaims := make(map[int]map[int]int)
	secClaims := make(map[int]map[int]int)
	facHours := make(map[string]float64)
	occupied := make(map[[2]int]struct{})
	capacityViolations := 0

	for _, ge := range ind.genes {
		if roomClaims[ge.roomIdx] == nil {
			roomClaims[ge.roomIdx] = make(map[int]int)
		}
		if facClaims[ge.facultyIdx] == nil {
			facClaims[ge.facultyIdx] = make(map[int]int)
		}
		if secClaims[ge.sectionIdx] == nil {
			secClaims[ge.sectionIdx] = make(map[int]int)
		}
		roomClaims[ge.roomIdx][ge.slotIdx]++
		facClaims[ge.facultyIdx][ge.slotIdx]++
		secClaims[ge.sectionIdx][ge.slotIdx]++
		facHours[in.Faculty[ge.facultyIdx].ID] += float64(in.Slots[ge.slotIdx].DurationMinutes) / 60
		occupied[[2]int{ge.roomIdx, ge.slotIdx}] = struct{}{}
		if in.Rooms[ge.roomIdx].Capacity < in.Sections[ge.sectionIdx].Capacity {
			capacityViolations++
		}
	}

	// A meeting is clean only when its room, faculty and section each
	// claim the slot exactly once; a section meeting twice in one slot
	// is as hard a violation as a double-booked room.
	clean := 0
	for _, ge := range ind.genes {
		if roomClaims[ge.roomIdx][ge.slotIdx] == 1 &&
			facClaims[ge.facultyIdx][ge.slotIdx] == 1 &&
			secClaims[ge.sectionIdx][ge.slotIdx] == 1 {
			clean++
		}
	}
	conflictScore := 100 * float64(clean) / float64(len(ind.genes))

	balanceScore := workloadBalance(facHours)

	var utilization float64
	if pairs := len(in.Rooms) * len(in.Slots); pairs > 0 {
		utilization = float64(len(occupied)) / float64(pairs)
	}
	target := (g.sch.UtilizationLow + g.sch.UtilizationHigh) / 2
	utilizationScore := math.Max(0, 100*(1-math.Abs(utilization-target)))

	overHours := 0
	for _, f := range in.Faculty {
		if facHours[f.ID] > float64(f.MaxHoursPerWeek) {
			overHours++
		}
	}
	constraintScore := math.Max(0, 100-10*float64(overHours)-5*float64(capacityViolations))

	return 0.40*conflictScore + 0.25*balanceScore + 0.20*utilizationScore + 0.15*constraintScore
}

func (g *GeneticSolver) nextGeneration(rng *rand.Rand, pop []individual, in SolveInput, meetings []meetingSlot) []individual {
	next := make([]individual, 0, len(pop))
	elite := len(pop) / 10
	if elite < 1 {
		elite = 1
	}
	for i := 0; i < elite; i++ {
		next = append(next, cloneIndividual(pop[i]))
	}
	for len(next) < len(pop) {
		a := g.tournament(rng, pop)
		b := g.tournament(rng, pop)
		child := g.crossover(rng, a, b)
		g.mutate(rng, &child, meetings)
		child.fitness = g.fitness(child, in, meetings)
		next = append(next, child)
	}
	sortByFitness(next)
	return next
}

func (g *GeneticSolver) tournament(rng *rand.Rand, pop []individual) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < 3; i++ {
		c := pop[rng.Intn(len(pop))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

func (g *GeneticSolver) crossover(rng *rand.Rand, a, b individual) individual {
	child := cloneIndividual(a)
	if rng.Float64() >= g.cfg.CrossoverRate || len(a.genes) < 2 {
		return child
	}
	cut := 1 + rng.Intn(len(a.genes)-1)
	copy(child.genes[cut:], b.genes[cut:])
	return child
}

// mutate reassigns a random subset of meetings to freshly drawn
// candidates from their own domains.
func (g *GeneticSolver) mutate(rng *rand.Rand, ind *individual, meetings []meetingSlot) {
	for i := range ind.genes {
		if rng.Float64() >= g.cfg.MutationRate {
			continue
		}
		d := meetings[i].domain
		ind.genes[i].facultyIdx = d.faculty[rng.Intn(len(d.faculty))]
		ind.genes[i].roomIdx = d.rooms[rng.Intn(len(d.rooms))]
		ind.genes[i].slotIdx = d.slots[rng.Intn(len(d.slots))]
	}
}

// convert rewrites the winning genome into sections and schedule rows.
// A section's room and faculty are taken from its first meeting so the
// section record stays single-valued; divergent genes on later meetings
// surface as conflicts, not silent drops.
func (g *GeneticSolver) convert(best individual, in SolveInput, meetings []meetingSlot) ([]models.Section, []models.ScheduleEntry) {
	sections := make([]models.Section, len(in.Sections))
	copy(sections, in.Sections)
	seen := make(map[int]bool, len(sections))

	var entries []models.ScheduleEntry
	for _, ge := range best.genes {
		sec := &sections[ge.sectionIdx]
		slot := in.Slots[ge.slotIdx]
		fac := in.Faculty[ge.facultyIdx]
		room := in.Rooms[ge.roomIdx]
		if !seen[ge.sectionIdx] {
			sec.AssignedFaculty = fac.ID
			sec.AssignedRoom = room.ID
			seen[ge.sectionIdx] = true
		}
		sec.AssignedSlots = append(sec.AssignedSlots, slot.ID)
		entries = append(entries, models.ScheduleEntry{
			SectionID: sec.ID,
			CourseID:  sec.CourseID,
			FacultyID: fac.ID,
			RoomID:    room.ID,
			SlotID:    slot.ID,
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SectionID != entries[j].SectionID {
			return entries[i].SectionID < entries[j].SectionID
		}
		return entries[i].SlotID < entries[j].SlotID
	})
	return sections, entries
}

func cloneIndividual(ind individual) individual {
	genes := make([]gene, len(ind.genes))
	copy(genes, ind.genes)
	return individual{genes: genes, fitness: ind.fitness}
}

func sortByFitness(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })
}
