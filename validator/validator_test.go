package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/snomed"
	"github.com/uib-ub/snomedct-transform/validator"
)

func TestRows_SafeModeKeepsGoing(t *testing.T) {
	rows := []snomed.Concept{
		{ID: "1", Active: 1},
		{ID: "2", Active: 7},
		{ID: "3", Active: 0},
	}

	err := validator.Rows(logging.Nop(), snomed.FamilyConcept, rows, true)

	assert.NoError(t, err)
	assert.Len(t, rows, 3, "validation never filters rows")
}

func TestRows_UnsafeModeAbortsOnFirstFailure(t *testing.T) {
	rows := []snomed.Concept{
		{ID: "1", Active: 1},
		{ID: "2", Active: 7},
	}

	err := validator.Rows(logging.Nop(), snomed.FamilyConcept, rows, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "concept")
	assert.Contains(t, err.Error(), "active")
}

func TestRows_ValidTable(t *testing.T) {
	rows := []snomed.Language{
		{ID: "1", Active: 1, AcceptabilityID: snomed.AcceptabilityPreferred},
		{ID: "2", Active: 0, AcceptabilityID: snomed.AcceptabilityAcceptable},
	}

	assert.NoError(t, validator.Rows(logging.Nop(), snomed.FamilyLanguage, rows, false))
}
