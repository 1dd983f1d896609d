package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

const clockLayout = "15:04"

var slotLetters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GridService expands an administrative day definition into the labeled
// slot grid every other component schedules against.
type GridService struct {
	cfg config.SchedulerConfig
	log *zap.Logger
}

func NewGridService(cfg config.SchedulerConfig, log *zap.Logger) *GridService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GridService{cfg: cfg, log: log}
}

type breakWindow struct {
	kind  models.BreakKind
	start int
	end   int
}

// BuildGrid validates the config and emits the ordered slot list, walking
// each working day forward in slot-plus-grace steps and skipping breaks
// without consuming a slot label.
func (s *GridService) BuildGrid(cfg models.AdminConfig) ([]models.TimeSlot, error) {
	dayStart, dayEnd, err := s.validateWindow(cfg)
	if err != nil {
		return nil, err
	}
	breaks, err := s.validateBreaks(cfg.Breaks, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	boundary := clockToMinutes(s.cfg.MiddayBoundary)

	slots := make([]models.TimeSlot, 0, len(cfg.WorkingDays)*8)
	for _, day := range cfg.WorkingDays {
		emitted := 0
		cursor := dayStart
		for {
			candidateEnd := cursor + cfg.SlotDurationMinutes
			if candidateEnd > dayEnd {
				break
			}
			if bw, ok := intersecting(breaks, cursor, candidateEnd); ok {
				cursor = bw.end
				continue
			}
			period := 1
			if cursor >= boundary {
				period = 2
			}
			letter := slotLetters[emitted%len(slotLetters)]
			kind := models.SlotTheory
			if cfg.SlotDurationMinutes >= s.cfg.LabSlotMinutes {
				kind = models.SlotLabEligible
			}
			slots = append(slots, models.TimeSlot{
				ID:              fmt.Sprintf("%s-%c%d", dayKey(day), letter, period),
				Day:             day,
				StartTime:       minutesToClock(cursor),
				EndTime:         minutesToClock(candidateEnd),
				DurationMinutes: cfg.SlotDurationMinutes,
				Kind:            kind,
				IsBreak:         false,
			})
			emitted++
			cursor = candidateEnd + cfg.GraceMinutes
		}
		if emitted == 0 {
			s.log.Warn("working day yielded no slots", zap.String("day", day))
		}
	}
	return slots, nil
}

func (s *GridService) validateWindow(cfg models.AdminConfig) (int, int, error) {
	if cfg.SlotDurationMinutes <= 0 {
		return 0, 0, appErrors.Clone(appErrors.ErrConfig, "slot duration must be positive")
	}
	if cfg.GraceMinutes <= 0 {
		return 0, 0, appErrors.Clone(appErrors.ErrConfig, "grace minutes must be positive")
	}
	if len(cfg.WorkingDays) == 0 {
		return 0, 0, appErrors.Clone(appErrors.ErrConfig, "at least one working day is required")
	}
	seen := make(map[string]struct{}, len(cfg.WorkingDays))
	for _, day := range cfg.WorkingDays {
		key := dayKey(day)
		if _, dup := seen[key]; dup {
			return 0, 0, appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("working day %q listed twice", day))
		}
		seen[key] = struct{}{}
	}
	start, err := parseClock(cfg.StartTime)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, err.Error())
	}
	end, err := parseClock(cfg.EndTime)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, err.Error())
	}
	if start >= end {
		return 0, 0, appErrors.Clone(appErrors.ErrConfig, "start time must precede end time")
	}
	return start, end, nil
}

func (s *GridService) validateBreaks(breaks []models.Break, dayStart, dayEnd int) ([]breakWindow, error) {
	windows := make([]breakWindow, 0, len(breaks))
	for _, b := range breaks {
		if b.DurationMinutes <= 0 {
			return nil, appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("break %q duration must be positive", b.Kind))
		}
		start, err := parseClock(b.StartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, err.Error())
		}
		windows = append(windows, breakWindow{kind: b.Kind, start: start, end: start + b.DurationMinutes})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	for i := 1; i < len(windows); i++ {
		if windows[i].start < windows[i-1].end {
			return nil, appErrors.Clone(appErrors.ErrConfig,
				fmt.Sprintf("breaks %q and %q overlap", windows[i-1].kind, windows[i].kind))
		}
	}
	for _, w := range windows {
		if w.end <= dayStart || w.start >= dayEnd {
			s.log.Warn("break falls outside the working window", zap.String("kind", string(w.kind)))
		}
	}
	return windows, nil
}

func intersecting(breaks []breakWindow, start, end int) (breakWindow, bool) {
	for _, bw := range breaks {
		if start < bw.end && bw.start < end {
			return bw, true
		}
	}
	return breakWindow{}, false
}

func parseClock(value string) (int, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// clockToMinutes is parseClock for trusted config values; bad input
// falls back to zero rather than failing a request.
func clockToMinutes(value string) int {
	m, err := parseClock(value)
	if err != nil {
		return 0
	}
	return m
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func dayKey(day string) string {
	d := strings.ToUpper(strings.TrimSpace(day))
	if len(d) > 3 {
		d = d[:3]
	}
	return d
}
