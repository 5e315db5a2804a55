package detection

import "strings"

// SessionID tipe untuk dialog session
type SessionID string

// State enum of a detection dialog
type State string

const (
	StateEmpty            State = "empty"
	StateStagedUnanalyzed State = "staged"
	StateAnalyzing        State = "analyzing"
	StateComplete         State = "complete"
)

// RiskTier enum, ordinal low < medium < high
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// ConfidenceTier enum, ordinal Low < Medium < High
type ConfidenceTier string

const (
	ConfidenceLow    ConfidenceTier = "Low"
	ConfidenceMedium ConfidenceTier = "Medium"
	ConfidenceHigh   ConfidenceTier = "High"
)

// ConfidenceTiers in display order.
var ConfidenceTiers = []ConfidenceTier{ConfidenceLow, ConfidenceMedium, ConfidenceHigh}

// AnalysisResult value object. There are exactly three of them, see Outcomes.
type AnalysisResult struct {
	RiskTier   RiskTier       `json:"risk_tier"`
	Label      string         `json:"label"`
	Confidence ConfidenceTier `json:"confidence"`
}

// Outcomes are the fixed records the simulator picks from. They are not
// derived from the image.
var Outcomes = [...]AnalysisResult{
	{RiskTier: RiskLow, Label: "Lower Risk Pattern Detected", Confidence: ConfidenceHigh},
	{RiskTier: RiskMedium, Label: "Moderate Risk Pattern Detected", Confidence: ConfidenceMedium},
	{RiskTier: RiskHigh, Label: "Higher Risk Pattern Detected", Confidence: ConfidenceHigh},
}

// Upload is a candidate file as declared by the client.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// IsImage reports whether the declared media type starts with "image/".
func (u Upload) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(u.MediaType)), "image/")
}

// PreviewHandle is a revocable reference to preview bytes held by a PreviewStore.
type PreviewHandle struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

// Preview is the content behind a handle.
type Preview struct {
	MediaType string
	Data      []byte
}
