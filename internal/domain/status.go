package domain

// DefaultNewRequestStatusName is the status newly filed requests receive
// when the caller does not pick one explicitly.
const DefaultNewRequestStatusName = "New request"

// Status is a lifecycle state for repair requests. Statuses are reference
// data administered in the database rather than a compiled-in enum; IsFinal
// marks terminal states that close the request.
type Status struct {
	ID      string
	Name    string
	IsFinal bool
}
