package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registrar/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseStudentID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseStudentID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseStudentID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseStudentID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, StudentID(validUUID), id)
	})
}

func TestParseID_BoundaryInputs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE enrollments;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOfferingID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types have identical parsing behavior.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errStudent := ParseStudentID(validUUID)
		_, errOffering := ParseOfferingID(validUUID)
		_, errEnrollment := ParseEnrollmentID(validUUID)
		_, errHistory := ParseHistoryID(validUUID)

		require.NoError(t, errStudent)
		require.NoError(t, errOffering)
		require.NoError(t, errEnrollment)
		require.NoError(t, errHistory)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errStudent := ParseStudentID(input)
			_, errOffering := ParseOfferingID(input)
			_, errEnrollment := ParseEnrollmentID(input)
			_, errHistory := ParseHistoryID(input)

			require.Error(t, errStudent)
			require.Error(t, errOffering)
			require.Error(t, errEnrollment)
			require.Error(t, errHistory)
		})
	}
}

func TestGeneratedIDs_AreUnique(t *testing.T) {
	seen := make(map[EnrollmentID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		eid := NewEnrollmentID()
		require.False(t, eid.IsNil())
		_, dup := seen[eid]
		require.False(t, dup, "generated duplicate enrollment id")
		seen[eid] = struct{}{}
	}
}
