package detection

// Disease is a category the detection dialog can be opened for.
type Disease struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var diseases = []Disease{
	{
		ID:          "lung-cancer",
		Title:       "Lung Cancer",
		Description: "AI-based analysis of chest X-rays and CT scans for lung disease risk patterns.",
		Icon:        "🫁",
	},
	{
		ID:          "brain-tumor",
		Title:       "Brain Tumor",
		Description: "MRI image analysis to identify abnormal brain tissue patterns.",
		Icon:        "🧠",
	},
	{
		ID:          "tuberculosis",
		Title:       "Tuberculosis",
		Description: "Chest X-ray analysis to assist in tuberculosis risk screening.",
		Icon:        "🔬",
	},
	{
		ID:          "blood-cancer",
		Title:       "Blood Cancer",
		Description: "Lab report and blood image pattern analysis for hematological risk indicators.",
		Icon:        "🩸",
	},
	{
		ID:          "breast-cancer",
		Title:       "Breast Cancer",
		Description: "Mammography image analysis for early-stage risk assessment.",
		Icon:        "💗",
	},
	{
		ID:          "skin-cancer",
		Title:       "Skin Cancer",
		Description: "Dermatological image analysis for skin lesion risk evaluation.",
		Icon:        "🔎",
	},
}

// Diseases returns the gallery in display order.
func Diseases() []Disease {
	out := make([]Disease, len(diseases))
	copy(out, diseases)
	return out
}

// LookupDisease finds a category by id.
func LookupDisease(id string) (Disease, error) {
	for _, d := range diseases {
		if d.ID == id {
			return d, nil
		}
	}
	return Disease{}, ErrUnknownDisease
}
