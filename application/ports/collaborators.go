package ports

import (
	"context"
	"io"

	"safesite-backend/domain/analysis"
	"safesite-backend/domain/checklist"
)

// User is the authenticated identity attached to a request.
type User struct {
	ID    string
	Email string
}

// Authenticator validates bearer tokens against the identity provider.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

// BlueprintFile is one file handed to the blob storage collaborator.
type BlueprintFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// BlobStore is the external blob storage collaborator for blueprints.
type BlobStore interface {
	Upload(ctx context.Context, file BlueprintFile, templateID, itemID, ownerID string) (checklist.BlueprintUpload, error)
	Delete(ctx context.Context, blueprintID, fileName string) error
}

// TextAnalyzer is the generic free-text analysis collaborator used by the
// standard submission strategy. Retries, if any, live inside the
// implementation.
type TextAnalyzer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RiskProfiler returns an industry risk profile for a template. A nil
// profile with a nil error means the reference is unavailable.
type RiskProfiler interface {
	GetRiskProfile(ctx context.Context, templateID string, payload *analysis.ChecklistPayload) (*analysis.RiskProfile, error)
}

// SafetyAnalyzer is the structured checklist-only analysis collaborator.
type SafetyAnalyzer interface {
	AnalyzeChecklist(ctx context.Context, payload *analysis.ChecklistPayload, profile *analysis.RiskProfile) (*analysis.SafetyAnalysis, error)
}

// ComprehensiveRequest carries everything the multi-modal analysis sees.
type ComprehensiveRequest struct {
	Payload    *analysis.ChecklistPayload
	Blueprints []analysis.BlueprintRef
	Images     []string
	Profile    *analysis.RiskProfile
}

// MultiModalAnalyzer is the combined checklist/blueprint/image analysis
// collaborator.
type MultiModalAnalyzer interface {
	AnalyzeComprehensive(ctx context.Context, req ComprehensiveRequest) (*analysis.MultiModalResult, error)
}

// MediaCapability describes which optional media integrations the
// deployment offers. Absence is explicit rather than probed at runtime.
type MediaCapability struct {
	Camera    bool `json:"camera"`
	Clipboard bool `json:"clipboard"`
	Share     bool `json:"share"`
}

// CapabilityProvider reports the deployment's media capabilities.
type CapabilityProvider interface {
	Capabilities() MediaCapability
}
