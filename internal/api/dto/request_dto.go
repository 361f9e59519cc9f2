package dto

import "time"

// CreateRequestPayload is the request form. Dates use the YYYY-MM-DD
// layout. client_id is ignored for clients, who always file for
// themselves; status_id and specialist_id are staff-only fields. An
// omitted issue_type_id derives the category from problem_description.
type CreateRequestPayload struct {
	StartDate          string `json:"start_date"`
	CompletionDate     string `json:"completion_date"`
	EquipmentTypeID    string `json:"equipment_type_id"`
	EquipmentModelName string `json:"equipment_model"`
	IssueTypeID        string `json:"issue_type_id"`
	ProblemDescription string `json:"problem_description"`
	RepairParts        string `json:"repair_parts"`
	StatusID           string `json:"status_id"`
	ClientID           string `json:"client_id"`
	SpecialistID       string `json:"specialist_id"`
}

// UpdateRequestPayload replaces the editable fields. An absent
// specialist_id keeps the current assignee; an empty string clears it.
type UpdateRequestPayload struct {
	StartDate          string  `json:"start_date"`
	CompletionDate     string  `json:"completion_date"`
	EquipmentTypeID    string  `json:"equipment_type_id"`
	EquipmentModelName string  `json:"equipment_model"`
	IssueTypeID        string  `json:"issue_type_id"`
	ProblemDescription string  `json:"problem_description"`
	RepairParts        string  `json:"repair_parts"`
	StatusID           string  `json:"status_id"`
	SpecialistID       *string `json:"specialist_id"`
}

// CreateCommentPayload payload.
type CreateCommentPayload struct {
	Message string `json:"message"`
}

// RequestSummary is the list-view projection of a repair request.
type RequestSummary struct {
	ID                 string         `json:"id"`
	StartDate          string         `json:"start_date"`
	CompletionDate     *string        `json:"completion_date"`
	EquipmentType      string         `json:"equipment_type"`
	EquipmentTypeID    string         `json:"equipment_type_id"`
	EquipmentModel     string         `json:"equipment_model"`
	IssueType          string         `json:"issue_type"`
	IssueTypeID        string         `json:"issue_type_id"`
	ProblemDescription string         `json:"problem_description"`
	RepairParts        *string        `json:"repair_parts"`
	Status             StatusResponse `json:"status"`
	ClientID           string         `json:"client_id"`
	ClientName         string         `json:"client_name"`
	SpecialistID       *string        `json:"specialist_id"`
	SpecialistName     *string        `json:"specialist_name"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// RequestDetailResponse adds the comment thread, the caller's effective
// permissions and, once the request is finished, the survey link.
type RequestDetailResponse struct {
	RequestSummary
	Comments    []CommentResponse   `json:"comments"`
	Permissions PermissionsResponse `json:"permissions"`
	SurveyURL   string              `json:"survey_url,omitempty"`
}

// CommentResponse represents one specialist work note.
type CommentResponse struct {
	ID             string    `json:"id"`
	SpecialistID   string    `json:"specialist_id"`
	SpecialistName string    `json:"specialist_name"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// PermissionsResponse tells the UI which controls to show.
type PermissionsResponse struct {
	CanEdit             bool `json:"can_edit"`
	CanDelete           bool `json:"can_delete"`
	CanComment          bool `json:"can_comment"`
	CanChangeStatus     bool `json:"can_change_status"`
	CanAssignSpecialist bool `json:"can_assign_specialist"`
}
