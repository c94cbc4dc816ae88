package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTeamName_Accepted(t *testing.T) {
	for _, name := range []string{
		"Team Liquidators",
		"Team Alpha 2025",
		"Киберспорт.КГ",
		"abc",
		strings.Repeat("a", 50),
		"A-Team_01",
	} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, ValidateTeamName(name))
		})
	}
}

func TestValidateTeamName_Rejected(t *testing.T) {
	cases := []struct {
		name string
		kind ValidationKind
	}{
		{"", ValidationEmptyName},
		{"   ", ValidationEmptyName},
		{"ab", ValidationNameTooShort},
		{strings.Repeat("a", 51), ValidationNameTooLong},
		{"Team Liquid", ValidationReservedName},
		{"team liquid", ValidationReservedName},
		{"TEAM LIQUID", ValidationReservedName},
		{"Pro Liquid Gaming", ValidationReservedName},
		{"T1", ValidationReservedName},
		{"NaVi", ValidationReservedName},
		{"Team<Alpha>", ValidationInvalidChars},
		{"Команда!", ValidationInvalidChars},
		{"12345", ValidationInsufficientLetters},
		{"1 2 3 a", ValidationInsufficientLetters},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTeamName(tc.name)
			require.Error(t, err)
			ve := AsValidation(err)
			require.NotNil(t, ve, "expected a validation error, got %v", err)
			assert.Equal(t, tc.kind, ve.Kind)
		})
	}
}

func TestValidateTeamName_ReservedBeatsLength(t *testing.T) {
	// "T1" is both too short and reserved; the reserved check wins.
	err := ValidateTeamName("T1")
	require.Error(t, err)
	ve := AsValidation(err)
	require.NotNil(t, ve)
	assert.Equal(t, ValidationReservedName, ve.Kind)
}
