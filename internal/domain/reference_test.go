package domain

import (
	"strings"
	"testing"
)

func TestNormalizeIssueTypeName(t *testing.T) {
	long := strings.Repeat("x", 300)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text passes through", in: "compressor rattles", want: "compressor rattles"},
		{name: "surrounding whitespace trimmed", in: "  no cooling  ", want: "no cooling"},
		{name: "empty maps to sentinel", in: "", want: IssueTypeUnspecified},
		{name: "whitespace only maps to sentinel", in: "   \t ", want: IssueTypeUnspecified},
		{name: "exactly 255 chars untouched", in: strings.Repeat("a", 255), want: strings.Repeat("a", 255)},
		{name: "overlong text cut with ellipsis", in: long, want: strings.Repeat("x", 252) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIssueTypeName(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeIssueTypeName(%.20q...) = %.20q..., want %.20q...", tt.in, got, tt.want)
			}
			if len([]rune(got)) > 255 {
				t.Errorf("normalized name is %d runes, exceeds 255", len([]rune(got)))
			}
		})
	}
}

func TestNormalizeIssueTypeNameTrimsBeforeEllipsis(t *testing.T) {
	in := strings.Repeat("b", 250) + "  tail that gets cut"
	got := NormalizeIssueTypeName(in)
	want := strings.Repeat("b", 250) + "..."
	if got != want {
		t.Errorf("got %q tail, want trailing spaces removed before ellipsis", got[245:])
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range KnownRoles() {
		if !role.Valid() {
			t.Errorf("known role %q reported invalid", role)
		}
	}
	for _, role := range []Role{"", "ADMIN", "manager", "Заказчик"} {
		if role.Valid() {
			t.Errorf("role %q reported valid", role)
		}
	}
}
