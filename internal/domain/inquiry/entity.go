package inquiry

// ContactMessage is what the contact form posts.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// AppointmentRequest is what the booking form posts. Every field is optional;
// the demo never rejects a booking.
type AppointmentRequest struct {
	Type     string `json:"type"`
	Doctor   string `json:"doctor"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Reason   string `json:"reason"`
}
