package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/cibil-extract/internal/model"
)

func TestExtractAddresses_MultiLine(t *testing.T) {
	lines := []string{
		"ADDRESS DETAILS",
		"Address",
		"FLAT 4B SUNRISE APARTMENTS",
		"MG ROAD BENGALURU 560001",
		"Category",
		"Permanent Address",
		"Residence Code",
		"Owned",
		"Date Reported",
		"15/01/2023",
		"CONTACT DETAILS",
	}

	addresses := extractAddresses(lines)
	require.Len(t, addresses, 1)
	addr := addresses[0]
	assert.Equal(t, "1", addr.Sequence)
	assert.Equal(t, "FLAT 4B SUNRISE APARTMENTS MG ROAD BENGALURU 560001", addr.Address)
	assert.Equal(t, "Permanent Address", addr.Type)
	assert.Equal(t, "Owned", addr.ResidenceCode)
	assert.Equal(t, "15/01/2023", addr.DateReported)
}

func TestExtractAddresses_TwoRecords(t *testing.T) {
	lines := []string{
		"ADDRESS DETAILS",
		"Address",
		"FIRST STREET",
		"Address",
		"SECOND STREET",
		"CONTACT DETAILS",
	}

	addresses := extractAddresses(lines)
	require.Len(t, addresses, 2)
	assert.Equal(t, "FIRST STREET", addresses[0].Address)
	assert.Equal(t, "1", addresses[0].Sequence)
	assert.Equal(t, "SECOND STREET", addresses[1].Address)
	assert.Equal(t, "2", addresses[1].Sequence)
}

func TestExtractAddresses_InlineFields(t *testing.T) {
	lines := []string{
		"ADDRESS DETAILS",
		"Address",
		"12 PARK LANE Category Office Address Date Reported 01/02/2022",
		"CONTACT DETAILS",
	}

	addresses := extractAddresses(lines)
	require.Len(t, addresses, 1)
	addr := addresses[0]
	assert.Equal(t, "Office Address", addr.Type)
	assert.Equal(t, "01/02/2022", addr.DateReported)
	assert.Equal(t, "12 PARK LANE", addr.Address)
}

func TestExtractAddresses_TrailingCategoryMovedToType(t *testing.T) {
	lines := []string{
		"ADDRESS DETAILS",
		"Address",
		"45 LAKE VIEW Permanent Address",
		"CONTACT DETAILS",
	}

	addresses := extractAddresses(lines)
	require.Len(t, addresses, 1)
	assert.Equal(t, "45 LAKE VIEW", addresses[0].Address)
	assert.Equal(t, "Permanent Address", addresses[0].Type)
}

func TestExtractAddresses_PageFurnitureSkipped(t *testing.T) {
	lines := []string{
		"ADDRESS DETAILS",
		"Address",
		"FIRST LINE",
		"3/12",
		"https://myscore.cibil.com/CreditView/report",
		"SECOND LINE",
		"CONTACT DETAILS",
	}

	addresses := extractAddresses(lines)
	require.Len(t, addresses, 1)
	assert.Equal(t, "FIRST LINE SECOND LINE", addresses[0].Address)
}

func TestExtractAddresses_DateOnlyRejectsNonDate(t *testing.T) {
	lines := []string{
		"ADDRESS DETAILS",
		"Address",
		"SOME STREET",
		"Date Reported",
		"not a date",
		"CONTACT DETAILS",
	}

	addresses := extractAddresses(lines)
	require.Len(t, addresses, 1)
	assert.Equal(t, model.NA, addresses[0].DateReported)
}

func TestExtractAddresses_NoSection(t *testing.T) {
	assert.Empty(t, extractAddresses([]string{"CONTACT DETAILS", "Telephone Number"}))
}
