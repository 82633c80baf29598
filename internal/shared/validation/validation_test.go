package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		wantErr  bool
	}{
		{"required present", "billing", true, false},
		{"required missing", "", true, true},
		{"optional missing", "", false, false},
		{"too long", strings.Repeat("a", 11), true, true},
		{"null byte", "bill\x00ing", true, true},
		{"newline", "bill\ning", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.value, "field", 1, 10, tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("billing-api_v2.internal", "name"))
	assert.Error(t, ValidateName("", "name"))
	assert.Error(t, ValidateName("billing api", "name"))
	assert.Error(t, ValidateName("billing:v2", "name"))
	assert.Error(t, ValidateName(strings.Repeat("a", MaxNameLength+1), "name"))
}

func TestValidateQualifier(t *testing.T) {
	assert.NoError(t, ValidateQualifier("billing:v2", "qualifier"))
	assert.NoError(t, ValidateQualifier("team/billing", "qualifier"))
	assert.Error(t, ValidateQualifier("billing v2", "qualifier"))
	assert.Error(t, ValidateQualifier("", "alias"))
}

func TestValidateHeader(t *testing.T) {
	assert.NoError(t, ValidateHeader("X-Team", "core"))
	assert.NoError(t, ValidateHeader("X-Empty", ""))
	assert.Error(t, ValidateHeader("", "core"))
	assert.Error(t, ValidateHeader("X Team", "core"))
	assert.Error(t, ValidateHeader("X-Team", "core\r\nX-Injected: 1"))
}
