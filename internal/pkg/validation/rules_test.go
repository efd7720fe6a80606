package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

func TestStudentID(t *testing.T) {
	valid := []string{"s1", "STU-2024_001", strings.Repeat("a", StudentIDMaxLength)}
	for _, id := range valid {
		assert.NoError(t, StudentID(id), id)
	}

	invalid := []string{"", "a b", "../etc", "a/b", strings.Repeat("a", StudentIDMaxLength+1)}
	for _, id := range invalid {
		err := StudentID(id)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr, id)
		assert.Equal(t, "studentId", verr.Field)
	}
}

func TestSectionID(t *testing.T) {
	for _, id := range models.RequiredSections {
		got, err := SectionID(string(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	_, err := SectionID("Profile")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "section ids are case sensitive")
}

func TestSectionData(t *testing.T) {
	for _, in := range []string{"", "  "} {
		out, err := SectionData(json.RawMessage(in))
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(out), "%q", in)
	}

	out, err := SectionData(json.RawMessage(" null "))
	require.NoError(t, err)
	assert.Equal(t, "null", string(out), "an explicit null is stored as sent")

	out, err = SectionData(json.RawMessage(" [1, 2] \n"))
	require.NoError(t, err)
	assert.Equal(t, "[1, 2]", string(out))

	_, err = SectionData(json.RawMessage(`{"a":`))
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "data", verr.Field)
}

func TestStringValidation_Optional(t *testing.T) {
	v := NewStringValidation("")
	v.Required = false
	assert.True(t, v.Validate())

	v = NewStringValidation("ab")
	v.MinLen = 3
	assert.False(t, v.Validate())
}
