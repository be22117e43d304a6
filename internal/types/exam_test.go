// Package types provides type definitions for the identities and records used throughout the results system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExamIdentity(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		examType  string
		expected  ExamIdentity
		wantField string
	}{
		{"lower case", 2021, "csee", ExamIdentity{Year: 2021, ExamType: CSEE}, ""},
		{"upper case", 2021, "CSEE", ExamIdentity{Year: 2021, ExamType: CSEE}, ""},
		{"mixed case acsee", 2019, "AcSeE", ExamIdentity{Year: 2019, ExamType: ACSEE}, ""},
		{"first year", 2006, "acsee", ExamIdentity{Year: 2006, ExamType: ACSEE}, ""},
		{"before publication", 2005, "csee", ExamIdentity{}, "year"},
		{"unknown exam", 2020, "ftna", ExamIdentity{}, "exam_type"},
		{"empty exam", 2020, "", ExamIdentity{}, "exam_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewExamIdentity(tt.year, tt.examType)
			if tt.wantField != "" {
				require.Error(t, err)
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestNewSchoolIdentity_NormalizesCase(t *testing.T) {
	a, err := NewSchoolIdentity(2021, "CSEE", "s1234")
	require.NoError(t, err)
	b, err := NewSchoolIdentity(2021, "csee", "S1234")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.Equal(t, "s1234", a.SchoolNumber)
}

func TestNewSchoolIdentity_InvalidNumber(t *testing.T) {
	tests := []string{"", "1234", "s123", "s12345", "x1234", "ss234", "p12a4"}

	for _, number := range tests {
		t.Run(number, func(t *testing.T) {
			_, err := NewSchoolIdentity(2021, "csee", number)
			require.Error(t, err)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, "school_number", vErr.Field)
		})
	}
}

func TestNewSchoolIdentity_ReportsYearFirst(t *testing.T) {
	_, err := NewSchoolIdentity(1999, "csee", "bad")
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "year", vErr.Field)
	assert.Contains(t, vErr.Error(), "2006")
}

func TestSchoolIdentity_IsCenter(t *testing.T) {
	center, err := NewSchoolIdentity(2021, "csee", "P1234")
	require.NoError(t, err)
	assert.True(t, center.IsCenter())

	school, err := NewSchoolIdentity(2021, "csee", "S1234")
	require.NoError(t, err)
	assert.False(t, school.IsCenter())
}

func TestParseExamIdentity(t *testing.T) {
	id, err := ParseExamIdentity(" 2020 ", "ACSEE")
	require.NoError(t, err)
	assert.Equal(t, ExamIdentity{Year: 2020, ExamType: ACSEE}, id)

	_, err = ParseExamIdentity("twenty", "acsee")
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "year", vErr.Field)
}

func TestParseSchoolIdentity(t *testing.T) {
	id, err := ParseSchoolIdentity("2022", "csee", "S0101")
	require.NoError(t, err)
	assert.Equal(t, "csee/2022/s0101", id.String())
}

func TestExamType_Upper(t *testing.T) {
	assert.Equal(t, "ACSEE", ACSEE.Upper())
	assert.Equal(t, "CSEE", CSEE.Upper())
}
