package domain

import "time"

// Comment is a work note a specialist leaves on a repair request they are
// assigned to.
type Comment struct {
	ID           string
	RequestID    string
	SpecialistID string
	Message      string
	CreatedAt    time.Time

	SpecialistName string
}
