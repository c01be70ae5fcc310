package drive

import (
	"strings"
	"testing"

	"campusdrive/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNextCopyName(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		siblings []string
		want     string
	}{
		{"free name kept", "Report", nil, "Report"},
		{"first copy", "Report", []string{"Report"}, "Report (1)"},
		{"one past highest", "Report", []string{"Report", "Report (1)", "Report (3)"}, "Report (4)"},
		{"freed number not reused", "Report", []string{"Report", "Report (5)"}, "Report (6)"},
		{"copy of a copy", "Report (2)", []string{"Report", "Report (2)"}, "Report (3)"},
		{"other bases ignored", "Report", []string{"Report", "Notes (7)"}, "Report (1)"},
		{"suffixed sibling alone", "Report", []string{"Report (5)"}, "Report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextCopyName(tt.source, tt.siblings))
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"trimmed", "  Lecture notes ", "Lecture notes", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"slash", "a/b", "", true},
		{"backslash", `a\b`, "", true},
		{"too long", strings.Repeat("x", 256), "", true},
		{"at limit", strings.Repeat("x", 255), strings.Repeat("x", 255), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateName(tt.input, 255)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
