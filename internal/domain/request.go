package domain

import "time"

// Request is the aggregate for climate-equipment repair requests.
//
// CompletionDate and SpecialistID stay nil until the request is closed or
// assigned. StartDate may legitimately postdate CompletionDate on imported
// records; statistics tolerate that instead of rejecting the row.
type Request struct {
	ID                 string
	StartDate          time.Time
	CompletionDate     *time.Time
	EquipmentModelID   string
	IssueTypeID        string
	ProblemDescription string
	RepairParts        *string
	StatusID           string
	ClientID           string
	SpecialistID       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Status Status
}

// RequestView is the denormalized read model backing request lists and
// detail screens: reference ids joined out to display names.
type RequestView struct {
	ID                 string
	StartDate          time.Time
	CompletionDate     *time.Time
	EquipmentTypeID    string
	EquipmentType      string
	EquipmentModelID   string
	EquipmentModel     string
	IssueTypeID        string
	IssueType          string
	ProblemDescription string
	RepairParts        *string
	Status             Status
	ClientID           string
	ClientName         string
	SpecialistID       *string
	SpecialistName     *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RequestFilter narrows request listings. Zero values mean "no constraint";
// Query matches the request id when it parses as one and the problem
// description otherwise.
type RequestFilter struct {
	Query           string
	StatusID        string
	EquipmentTypeID string
	IssueTypeID     string
}
