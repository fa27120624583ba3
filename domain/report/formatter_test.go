package report

import (
	"strings"
	"testing"

	"safesite-backend/domain/analysis"

	"github.com/stretchr/testify/assert"
)

func sampleAnalysis() *analysis.SafetyAnalysis {
	return &analysis.SafetyAnalysis{
		OverallRiskLevel: "high",
		Summary:          "Multiple fall hazards on the east scaffold.",
		Hazards: []analysis.Hazard{
			{
				Description: "Missing guardrail on level 3",
				Severity:    "high",
				Likelihood:  "likely",
				Mitigation:  "Install guardrails before next shift",
				Regulation:  "OSHA 1926.451(g)",
			},
			{
				Description: "Debris on access ladder",
				Severity:    "medium",
				Likelihood:  "possible",
			},
		},
		Recommendations: []string{"Stop work on level 3", "Re-inspect after remediation"},
		ComplianceNotes: "Scaffold tag out of date.",
	}
}

func TestFormatStandard_WrapsRawTextWithHeader(t *testing.T) {
	got := FormatStandard("General Site Safety Inspection", "  All clear.\n")

	assert.True(t, strings.HasPrefix(got, "SAFETY ANALYSIS REPORT\nGeneral Site Safety Inspection\n\n"))
	assert.Contains(t, got, "All clear.")
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestFormatSafetyAnalysis_IsDeterministic(t *testing.T) {
	a := sampleAnalysis()

	first := FormatSafetyAnalysis("Scaffolding Inspection", a)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FormatSafetyAnalysis("Scaffolding Inspection", a))
	}

	assert.Contains(t, first, "Overall risk level: high")
	assert.Contains(t, first, "1. Missing guardrail on level 3 (severity: high, likelihood: likely)")
	assert.Contains(t, first, "Mitigation: Install guardrails before next shift")
	assert.Contains(t, first, "Regulation: OSHA 1926.451(g)")
	assert.Contains(t, first, "- Stop work on level 3")
	assert.Contains(t, first, "Compliance notes\nScaffold tag out of date.")
}

func TestFormatSafetyAnalysis_OmitsEmptySections(t *testing.T) {
	got := FormatSafetyAnalysis("T", &analysis.SafetyAnalysis{OverallRiskLevel: "low"})

	assert.NotContains(t, got, "Summary")
	assert.NotContains(t, got, "Identified hazards")
	assert.NotContains(t, got, "Recommendations")
	assert.NotContains(t, got, "Compliance notes")
}

func TestFormatMultiModal_AppendsFindings(t *testing.T) {
	m := &analysis.MultiModalResult{
		SafetyAnalysis: *sampleAnalysis(),
		BlueprintFindings: []analysis.Finding{
			{Source: "plan.pdf", Observation: "Crane radius overlaps walkway", Severity: "high"},
		},
		ImageFindings: []analysis.Finding{
			{Source: "photo 1", Observation: "Worker without hard hat", Severity: "medium"},
		},
	}

	got := FormatMultiModal("T", m)
	assert.Contains(t, got, "Blueprint findings\n- [plan.pdf] Crane radius overlaps walkway (severity: high)")
	assert.Contains(t, got, "Site photo findings\n- [photo 1] Worker without hard hat (severity: medium)")
}

func TestShareTextAndEmail_DeriveFromFormattedReport(t *testing.T) {
	formatted := FormatStandard("T", "Body text")

	share := ShareText("T", formatted)
	assert.True(t, strings.HasPrefix(share, "T - site safety report\n\n"))

	email := Email("T", formatted)
	assert.Equal(t, "Safety analysis report: T", email.Subject)
	assert.True(t, strings.HasSuffix(email.Body, "\n"))
	assert.Contains(t, email.Body, "Body text")
}

func TestToRecord_DefaultsRiskLevel(t *testing.T) {
	rec := ToRecord("general-site-safety", "T", "", "report text")
	assert.Equal(t, "unrated", rec.RiskLevel)

	rec = ToRecord("general-site-safety", "T", "high", "report text")
	assert.Equal(t, "high", rec.RiskLevel)
}
