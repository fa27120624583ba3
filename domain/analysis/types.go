// Package analysis defines the payloads exchanged with the AI analysis
// collaborators and the typed results they return.
package analysis

import "time"

// Entry pairs one checklist item with its recorded answer (or the
// explicit "no response" sentinel).
type Entry struct {
	Section  string     `json:"section"`
	ItemID   string     `json:"itemId"`
	Question string     `json:"question"`
	Answer   string     `json:"answer"`
	Answered bool       `json:"answered"`
	Notes    string     `json:"notes,omitempty"`
	Flagged  bool       `json:"flagged,omitempty"`
	Critical bool       `json:"critical,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// BlueprintRef identifies one uploaded blueprint passed to analysis.
type BlueprintRef struct {
	ID         string `json:"id"`
	FileName   string `json:"fileName"`
	StorageURL string `json:"storageUrl"`
}

// ChecklistPayload is the flattened collection the submission pipeline
// hands to the analysis collaborators.
type ChecklistPayload struct {
	TemplateID string         `json:"templateId"`
	Title      string         `json:"title"`
	Entries    []Entry        `json:"entries"`
	Images     []string       `json:"images,omitempty"`
	Blueprints []BlueprintRef `json:"blueprints,omitempty"`
}

// RiskProfile is an industry-keyed hazard-rate reference used to
// contextualize analysis. A nil profile means the reference was
// unavailable, which is not an error.
type RiskProfile struct {
	Industry        string   `json:"industry"`
	CommonHazards   []string `json:"commonHazards"`
	IncidentRate    string   `json:"incidentRate"`
	RegulatoryNotes string   `json:"regulatoryNotes"`
}

// Hazard is one identified risk in a structured analysis result.
type Hazard struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Likelihood  string `json:"likelihood"`
	Mitigation  string `json:"mitigation"`
	Regulation  string `json:"regulation,omitempty"`
}

// SafetyAnalysis is the structured result of the checklist-only analysis.
type SafetyAnalysis struct {
	OverallRiskLevel string   `json:"overallRiskLevel"`
	Summary          string   `json:"summary"`
	Hazards          []Hazard `json:"hazards"`
	Recommendations  []string `json:"recommendations"`
	ComplianceNotes  string   `json:"complianceNotes,omitempty"`
}

// Finding is one observation tied to a specific piece of media.
type Finding struct {
	Source      string `json:"source"`
	Observation string `json:"observation"`
	Severity    string `json:"severity"`
}

// MultiModalResult is the structured result of the combined analysis over
// the checklist, attached images and blueprints.
type MultiModalResult struct {
	SafetyAnalysis
	BlueprintFindings []Finding `json:"blueprintFindings,omitempty"`
	ImageFindings     []Finding `json:"imageFindings,omitempty"`
}

// NoResponse is the sentinel answer recorded for unanswered items.
const NoResponse = "No response"
