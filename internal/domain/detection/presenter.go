package detection

// ColorTier is the styling bucket a risk tier is rendered with.
type ColorTier string

const (
	ColorSuccess ColorTier = "success"
	ColorWarning ColorTier = "warning"
	ColorDanger  ColorTier = "danger"
	ColorMuted   ColorTier = "muted"
)

// Disclaimer is shown next to every result, whatever the outcome.
const Disclaimer = "AI-generated output for informational purposes only. Please consult a medical professional."

// Presentation is how a result is drawn in the dialog.
type Presentation struct {
	ColorTier          ColorTier `json:"color_tier"`
	Icon               string    `json:"icon"`
	ConfidenceFill     int       `json:"confidence_fill"`
	ConfidenceSegments int       `json:"confidence_segments"`
	Disclaimer         string    `json:"disclaimer"`
}

// Present maps a result to its visual treatment. It has no side effects.
func Present(r AnalysisResult) Presentation {
	return Presentation{
		ColorTier:          colorFor(r.RiskTier),
		Icon:               iconFor(r.RiskTier),
		ConfidenceFill:     confidenceIndex(r.Confidence) + 1,
		ConfidenceSegments: len(ConfidenceTiers),
		Disclaimer:         Disclaimer,
	}
}

func colorFor(t RiskTier) ColorTier {
	switch t {
	case RiskLow:
		return ColorSuccess
	case RiskMedium:
		return ColorWarning
	case RiskHigh:
		return ColorDanger
	default:
		return ColorMuted
	}
}

func iconFor(t RiskTier) string {
	switch t {
	case RiskLow:
		return "check-circle"
	case RiskHigh:
		return "alert-triangle"
	default:
		return "alert-circle"
	}
}

// confidenceIndex returns the 0-based position of c, or -1 when unknown.
func confidenceIndex(c ConfidenceTier) int {
	for i, t := range ConfidenceTiers {
		if t == c {
			return i
		}
	}
	return -1
}
