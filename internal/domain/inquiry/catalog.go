package inquiry

type AppointmentType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options is everything the booking page offers.
type Options struct {
	Types     []AppointmentType `json:"types"`
	Doctors   []Doctor          `json:"doctors"`
	Locations []Location        `json:"locations"`
	TimeSlots []string          `json:"time_slots"`
	Genders   []Choice          `json:"genders"`
}

// BookingOptions returns a fresh copy of the demo catalog.
func BookingOptions() Options {
	return Options{
		Types: []AppointmentType{
			{ID: "consultation", Label: "Medical Consultation"},
			{ID: "diagnostic", Label: "Diagnostic Testing"},
		},
		Doctors: []Doctor{
			{ID: "1", Name: "Dr. Sarah Chen", Specialty: "Neurologist"},
			{ID: "2", Name: "Dr. Michael Roberts", Specialty: "Oncologist"},
			{ID: "3", Name: "Dr. Emily Watson", Specialty: "Radiologist"},
			{ID: "4", Name: "Dr. James Miller", Specialty: "Pulmonologist"},
		},
		Locations: []Location{
			{ID: "1", Name: "City Medical Center", Address: "123 Healthcare Blvd (Demo)"},
			{ID: "2", Name: "Regional Hospital", Address: "456 Wellness Ave (Demo)"},
			{ID: "3", Name: "Advanced Diagnostics Center", Address: "789 Medical Park (Demo)"},
		},
		TimeSlots: []string{
			"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
			"11:00 AM", "11:30 AM", "02:00 PM", "02:30 PM",
			"03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
		},
		Genders: []Choice{
			{Value: "male", Label: "Male"},
			{Value: "female", Label: "Female"},
			{Value: "other", Label: "Other"},
			{Value: "prefer-not", Label: "Prefer not to say"},
		},
	}
}
