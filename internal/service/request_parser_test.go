package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotwise/timetable-api/internal/dto"
)

func TestRequestParserClassifiesIntents(t *testing.T) {
	parser := NewRequestParser()

	cases := []struct {
		text   string
		intent string
	}{
		{"generate timetable for the CS department", "plan_timetable"},
		{"please allocate students to their electives", "allocate_students"},
		{"build the time slot grid for next term", "build_grid"},
		{"show me every conflict in the current plan", "show_conflicts"},
		{"what is the weather like", "unknown"},
	}
	for _, tc := range cases {
		resp := parser.Parse(dto.ParseRequest{Text: tc.text})
		assert.Equalf(t, tc.intent, resp.Intent, "text: %s", tc.text)
	}
}

func TestRequestParserExtractsTimesAndDuration(t *testing.T) {
	parser := NewRequestParser()

	resp := parser.Parse(dto.ParseRequest{
		Text: "generate timetable from 09:00 to 17:00 with 60 minute slots",
	})
	assert.Equal(t, "plan_timetable", resp.Intent)
	assert.Equal(t, "09:00", resp.Entities["start_time"])
	assert.Equal(t, "17:00", resp.Entities["end_time"])
	assert.Equal(t, "60", resp.Entities["slot_duration_minutes"])
	assert.Greater(t, resp.Confidence, 0.5)
}

func TestRequestParserExtractsWorkingDays(t *testing.T) {
	parser := NewRequestParser()

	resp := parser.Parse(dto.ParseRequest{
		Text: "schedule classes on monday, wednesday and friday",
	})
	assert.Equal(t, "Monday,Wednesday,Friday", resp.Entities["working_days"])
}

func TestRequestParserDetectsAlgorithmHint(t *testing.T) {
	parser := NewRequestParser()

	resp := parser.Parse(dto.ParseRequest{Text: "plan the week using the genetic solver"})
	assert.Equal(t, dto.AlgorithmGenetic, resp.Entities["algorithm"])

	resp = parser.Parse(dto.ParseRequest{Text: "plan the week with the exact constraint approach"})
	assert.Equal(t, dto.AlgorithmConstraint, resp.Entities["algorithm"])
}

func TestRequestParserReportsUnmatchedTerms(t *testing.T) {
	parser := NewRequestParser()

	resp := parser.Parse(dto.ParseRequest{Text: "translate this document now"})
	assert.Equal(t, "unknown", resp.Intent)
	assert.NotEmpty(t, resp.Unmatched)
}
