package dto

// StatusResponse represents a workflow status.
type StatusResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsFinal bool   `json:"is_final"`
}

// EquipmentTypeResponse represents an equipment category.
type EquipmentTypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueTypeResponse represents a fault category.
type IssueTypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReferenceResponse bundles the lists request forms are built from.
type ReferenceResponse struct {
	Statuses       []StatusResponse        `json:"statuses"`
	EquipmentTypes []EquipmentTypeResponse `json:"equipment_types"`
	IssueTypes     []IssueTypeResponse     `json:"issue_types"`
}

// UserOptionResponse is the trimmed account shape people pickers render.
type UserOptionResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// FormLookupsResponse carries the request form payload: reference lists,
// people pickers and the preselected status. default_status is null when no
// usable status is seeded.
type FormLookupsResponse struct {
	ReferenceResponse
	Specialists   []UserOptionResponse `json:"specialists"`
	Clients       []UserOptionResponse `json:"clients"`
	DefaultStatus *StatusResponse      `json:"default_status"`
}
