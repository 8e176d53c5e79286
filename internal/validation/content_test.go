package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "jane_doe", false},
		{"Valid With Hyphen", "jane-doe-42", false},
		{"Too Short", "ab", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Spaces", "jane doe", true},
		{"Symbols", "jane!", true},
		{"Reserved", "admin", true},
		{"Reserved Mixed Case", "Admin", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail("jane@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestContentLimits(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTitle("A fine title"))
	assert.NoError(t, ValidateTitle(strings.Repeat("t", MaxTitleLength)))
	assert.Error(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("t", MaxTitleLength+1)))

	assert.NoError(t, ValidateDescription("body"))
	assert.Error(t, ValidateDescription(""))
	assert.Error(t, ValidateDescription(strings.Repeat("d", MaxDescriptionLength+1)))

	assert.NoError(t, ValidateComment("nice post"))
	assert.Error(t, ValidateComment(" "))
	assert.Error(t, ValidateComment(strings.Repeat("c", MaxCommentLength+1)))

	assert.NoError(t, ValidateReason("spam"))
	assert.Error(t, ValidateReason(""))
	assert.Error(t, ValidateReason(strings.Repeat("r", MaxReasonLength+1)))
}

func TestRuneCountingNotByteCounting(t *testing.T) {
	t.Parallel()
	// Multibyte characters count once.
	title := strings.Repeat("é", MaxTitleLength)
	assert.NoError(t, ValidateTitle(title))
}
