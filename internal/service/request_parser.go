package service

import (
	"regexp"
	"strings"

	"github.com/slotwise/timetable-api/internal/dto"
)

// intentRule maps trigger keywords to a recognized intent. Rules are
// evaluated in order and the first hit wins, so the more specific
// phrasings come first.
type intentRule struct {
	intent   string
	keywords []string
}

var intentRules = []intentRule{
	{intent: "allocate_students", keywords: []string{"allocate", "enroll", "place students", "assign students"}},
	{intent: "show_conflicts", keywords: []string{"conflict", "clash", "double book"}},
	{intent: "build_grid", keywords: []string{"grid", "time slot", "periods"}},
	{intent: "plan_timetable", keywords: []string{"generate timetable", "create timetable", "schedule", "assign sections", "plan"}},
}

var (
	clockPattern    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	durationPattern = regexp.MustCompile(`\b(\d{1,3})\s*(?:minute|min)s?\b`)
	dayPattern      = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// RequestParser turns free-text admin instructions into a structured
// intent plus extracted entities. It is a fixed rule table, nothing
// more; unrecognized words are reported back rather than guessed at.
type RequestParser struct{}

func NewRequestParser() *RequestParser {
	return &RequestParser{}
}

// Parse classifies the instruction and pulls out times, durations, day
// names, and algorithm hints.
func (p *RequestParser) Parse(req dto.ParseRequest) dto.ParseResponse {
	text := strings.ToLower(req.Text)
	resp := dto.ParseResponse{
		Intent:   "unknown",
		Entities: make(map[string]string),
	}

	matched := 0
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				resp.Intent = rule.intent
				matched++
				break
			}
		}
		if resp.Intent != "unknown" {
			break
		}
	}

	if times := clockPattern.FindAllString(text, -1); len(times) > 0 {
		resp.Entities["start_time"] = times[0]
		matched++
		if len(times) > 1 {
			resp.Entities["end_time"] = times[1]
			matched++
		}
	}
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		resp.Entities["slot_duration_minutes"] = m[1]
		matched++
	}
	if days := dayPattern.FindAllString(text, -1); len(days) > 0 {
		seen := make(map[string]struct{}, len(days))
		ordered := make([]string, 0, len(days))
		for _, d := range days {
			d = strings.ToLower(d)
			d = strings.ToUpper(d[:1]) + d[1:]
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			ordered = append(ordered, d)
		}
		resp.Entities["working_days"] = strings.Join(ordered, ",")
		matched++
	}
	if strings.Contains(text, "genetic") || strings.Contains(text, "evolution") {
		resp.Entities["algorithm"] = dto.AlgorithmGenetic
		matched++
	} else if strings.Contains(text, "exact") || strings.Contains(text, "constraint") {
		resp.Entities["algorithm"] = dto.AlgorithmConstraint
		matched++
	}

	// Confidence is a crude signal count, capped at 1.
	resp.Confidence = float64(matched) / 4
	if resp.Confidence > 1 {
		resp.Confidence = 1
	}
	if resp.Intent == "unknown" {
		resp.Unmatched = unknownTerms(text)
	}
	return resp
}

func unknownTerms(text string) []string {
	fields := strings.Fields(text)
	if len(fields) > 5 {
		fields = fields[:5]
	}
	return fields
}
