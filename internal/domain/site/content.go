// Package site holds the static copy rendered on the marketing pages.
package site

const (
	Brand = "NeuroMediAI"

	MedicalDisclaimer = "NeuroMediAI is an AI-assisted research and educational platform. " +
		"Predictions are not a substitute for professional medical diagnosis or treatment."

	Tagline = "AI-assisted analysis using machine learning models trained on medical imaging " +
		"datasets to support early screening and research-based insights."
)

// NavLink is one entry of the header and footer navigation.
type NavLink struct {
	Href  string
	Label string
}

// Routes served as pages, in navigation order.
var NavLinks = []NavLink{
	{Href: "/", Label: "Home"},
	{Href: "/disease-detection", Label: "Disease Detection"},
	{Href: "/book-appointment", Label: "Book Appointment"},
	{Href: "/contact", Label: "Contact"},
}

type Feature struct {
	Title       string
	Description string
}

var Features = []Feature{
	{Title: "High Model Accuracy", Description: "Trained on validated public medical datasets for research and educational use."},
	{Title: "Fast Analysis", Description: "Get AI-generated insights within minutes of uploading medical images."},
	{Title: "Expert Guidance", Description: "Results can be discussed with medical professionals for better understanding."},
}

type ContactInfo struct {
	Title       string
	Value       string
	Description string
}

var Contacts = []ContactInfo{
	{Title: "Phone Support", Value: "+1 (555) 123-4567", Description: "Mon-Fri, 9AM-6PM EST"},
	{Title: "Email Support", Value: "support@neuromediai.demo", Description: "We respond within 24 hours"},
	{Title: "Office Address", Value: "123 AI Healthcare Blvd", Description: "Demo City, DC 12345"},
	{Title: "Business Hours", Value: "Mon-Fri: 9AM-6PM", Description: "Weekend: Closed"},
}

type FAQ struct {
	Question string
	Answer   string
}

var FAQs = []FAQ{
	{
		Question: "How do I upload medical images for analysis?",
		Answer: "Navigate to the Disease Detection page, select the relevant disease category, and use the upload area " +
			"to drag and drop or browse for your medical images. Supported formats include PNG, JPG, and JPEG.",
	},
	{
		Question: "Why is my image upload failing?",
		Answer: "Ensure your image is in a supported format (PNG, JPG, JPEG) and under 10MB. " +
			"If issues persist, try using a different browser or clearing your cache.",
	},
	{
		Question: "Are the analysis results medically accurate?",
		Answer: "NeuroMediAI provides AI-generated insights for educational and research purposes only. " +
			"Results should not be used for medical diagnosis. Always consult a qualified healthcare professional.",
	},
	{
		Question: "How do I book an appointment?",
		Answer: "Visit the Book Appointment page, select your appointment type, fill in your information, " +
			"choose a date and time, select a doctor and location, then click Book Appointment.",
	},
}
