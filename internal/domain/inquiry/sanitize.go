package inquiry

import "strings"

const maxFieldLen = 4000

// SanitizeString removes null bytes and control characters, trims, and caps
// the length of free-text input.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	out := strings.TrimSpace(result.String())
	if len(out) > maxFieldLen {
		out = strings.ToValidUTF8(out[:maxFieldLen], "")
	}
	return out
}

func (m ContactMessage) Sanitized() ContactMessage {
	return ContactMessage{
		Name:    SanitizeString(m.Name),
		Email:   SanitizeString(m.Email),
		Subject: SanitizeString(m.Subject),
		Message: SanitizeString(m.Message),
	}
}

func (a AppointmentRequest) Sanitized() AppointmentRequest {
	return AppointmentRequest{
		Type:     SanitizeString(a.Type),
		Doctor:   SanitizeString(a.Doctor),
		Location: SanitizeString(a.Location),
		Date:     SanitizeString(a.Date),
		Time:     SanitizeString(a.Time),
		FullName: SanitizeString(a.FullName),
		Email:    SanitizeString(a.Email),
		Phone:    SanitizeString(a.Phone),
		Age:      SanitizeString(a.Age),
		Gender:   SanitizeString(a.Gender),
		Reason:   SanitizeString(a.Reason),
	}
}
