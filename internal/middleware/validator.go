package middleware

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/neuromediai/site/internal/domain/detection"
)

// Input validation for path parameters

// ValidateSessionID checks that id is a canonical UUID as issued by Open.
func ValidateSessionID(id string) (detection.SessionID, error) {
	if id == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return "", fmt.Errorf("invalid session ID format")
	}
	return detection.SessionID(id), nil
}

// ValidatePreviewID checks the preview handle id format.
func ValidatePreviewID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid preview ID format")
	}
	return nil
}

// ValidateDiseaseID only accepts catalog ids.
func ValidateDiseaseID(id string) error {
	if id == "" {
		return fmt.Errorf("disease ID cannot be empty")
	}
	_, err := detection.LookupDisease(id)
	return err
}
