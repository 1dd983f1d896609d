package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixtureProposal(t *testing.T) *Proposal {
	t.Helper()
	svc := newTestTimetableService()
	resp, err := svc.PlanAndAssign(context.Background(), standardPlanRequest())
	require.NoError(t, err)
	proposal, err := svc.GetProposal(resp.ProposalID)
	require.NoError(t, err)
	return proposal
}

func TestExportServiceRendersCSV(t *testing.T) {
	exporter := NewExportService(nil, nil, nil)
	proposal := exportFixtureProposal(t)

	payload, err := exporter.RenderCSV(proposal)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	// Header plus one row per scheduled meeting.
	assert.Len(t, lines, 13)
	assert.Contains(t, lines[0], "section_id")
	assert.Contains(t, string(payload), "CS101_T1")
}

func TestExportServiceRendersPDF(t *testing.T) {
	exporter := NewExportService(nil, nil, nil)
	proposal := exportFixtureProposal(t)

	payload, err := exporter.RenderPDF(proposal)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
