// Package report turns analysis results into display-ready strings. Every
// formatter is a pure function: the same input always produces the same
// report text.
package report

import (
	"fmt"
	"strings"

	"safesite-backend/domain/analysis"
)

// EmailMessage is the subject/body pair for sharing a report by mail.
type EmailMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Record is the database-ready form of a finished report.
type Record struct {
	TemplateID string `json:"templateId"`
	Title      string `json:"title"`
	RiskLevel  string `json:"riskLevel"`
	Report     string `json:"report"`
}

// FormatStandard renders the free-text result of the standard strategy.
// The raw collaborator text is the report body; only surrounding
// whitespace is normalized.
func FormatStandard(title, raw string) string {
	body := strings.TrimSpace(raw)
	var b strings.Builder
	fmt.Fprintf(&b, "SAFETY ANALYSIS REPORT\n%s\n\n", title)
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}

// FormatSafetyAnalysis renders a structured checklist-only analysis.
func FormatSafetyAnalysis(title string, a *analysis.SafetyAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SAFETY ANALYSIS REPORT\n%s\n\n", title)
	fmt.Fprintf(&b, "Overall risk level: %s\n\n", a.OverallRiskLevel)

	if a.Summary != "" {
		fmt.Fprintf(&b, "Summary\n%s\n\n", a.Summary)
	}

	if len(a.Hazards) > 0 {
		b.WriteString("Identified hazards\n")
		for i, h := range a.Hazards {
			fmt.Fprintf(&b, "%d. %s (severity: %s, likelihood: %s)\n", i+1, h.Description, h.Severity, h.Likelihood)
			if h.Mitigation != "" {
				fmt.Fprintf(&b, "   Mitigation: %s\n", h.Mitigation)
			}
			if h.Regulation != "" {
				fmt.Fprintf(&b, "   Regulation: %s\n", h.Regulation)
			}
		}
		b.WriteString("\n")
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("Recommendations\n")
		for _, r := range a.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	if a.ComplianceNotes != "" {
		fmt.Fprintf(&b, "Compliance notes\n%s\n", a.ComplianceNotes)
	}
	return b.String()
}

// FormatMultiModal renders the combined checklist/blueprint/image result.
func FormatMultiModal(title string, m *analysis.MultiModalResult) string {
	var b strings.Builder
	b.WriteString(FormatSafetyAnalysis(title, &m.SafetyAnalysis))

	if len(m.BlueprintFindings) > 0 {
		b.WriteString("\nBlueprint findings\n")
		writeFindings(&b, m.BlueprintFindings)
	}
	if len(m.ImageFindings) > 0 {
		b.WriteString("\nSite photo findings\n")
		writeFindings(&b, m.ImageFindings)
	}
	return b.String()
}

func writeFindings(b *strings.Builder, findings []analysis.Finding) {
	for _, f := range findings {
		fmt.Fprintf(b, "- [%s] %s (severity: %s)\n", f.Source, f.Observation, f.Severity)
	}
}

// ShareText produces a sharing-optimized single-line-header variant.
func ShareText(title, formatted string) string {
	return fmt.Sprintf("%s - site safety report\n\n%s", title, strings.TrimSpace(formatted))
}

// Email produces the subject/body pair for mailing a report.
func Email(title, formatted string) EmailMessage {
	return EmailMessage{
		Subject: fmt.Sprintf("Safety analysis report: %s", title),
		Body:    strings.TrimSpace(formatted) + "\n",
	}
}

// ToRecord produces the database-ready form of a report.
func ToRecord(templateID, title, riskLevel, formatted string) Record {
	if riskLevel == "" {
		riskLevel = "unrated"
	}
	return Record{
		TemplateID: templateID,
		Title:      title,
		RiskLevel:  riskLevel,
		Report:     formatted,
	}
}
