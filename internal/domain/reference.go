package domain

import (
	"strings"
	"unicode"
)

// IssueTypeUnspecified names the catch-all issue category for requests
// whose problem text is blank.
const IssueTypeUnspecified = "unspecified"

// issue type names must fit the 255-char reference column
const maxIssueTypeNameLen = 255

// NormalizeIssueTypeName reduces free problem text to an issue-category
// name: trimmed, blank mapped to the unspecified sentinel, overlong text
// cut with a trailing ellipsis.
func NormalizeIssueTypeName(problemDescription string) string {
	text := strings.TrimSpace(problemDescription)
	if text == "" {
		return IssueTypeUnspecified
	}

	runes := []rune(text)
	if len(runes) <= maxIssueTypeNameLen {
		return text
	}
	head := strings.TrimRightFunc(string(runes[:maxIssueTypeNameLen-3]), unicode.IsSpace)
	return head + "..."
}

// EquipmentType is a broad category of climate equipment (air conditioner,
// ventilation unit, heat pump).
type EquipmentType struct {
	ID   string
	Name string
}

// EquipmentModel is a concrete model under an equipment type. Model names
// are unique within their type; unfamiliar models are created on the fly
// when a request mentions them.
type EquipmentModel struct {
	ID              string
	EquipmentTypeID string
	Name            string
}

// IssueType is a normalized fault category used for reporting. Names are
// unique; categories grow as new fault descriptions arrive.
type IssueType struct {
	ID   string
	Name string
}
