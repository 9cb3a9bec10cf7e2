package shipcatalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsHeaderVariants(t *testing.T) {
	csv := "ShipName,Mass_kg,SpecificHeat_C,FuelCapacity_units,CargoCapacity_kg\n" +
		"Reflex,12383006,1.0,1000,5000\n"
	cat, err := parse(strings.NewReader(csv))
	require.Nil(t, err)

	ship, ok := cat.Get("reflex")
	require.True(t, ok)
	assert.Equal(t, "Reflex", ship.Name)
	assert.Equal(t, 12383006.0, ship.BaseMassKg)
}

func TestParseRejectsDuplicateNamesCaseInsensitive(t *testing.T) {
	csv := "name,base_mass_kg,specific_heat,fuel_capacity,cargo_capacity\n" +
		"Reflex,100,1,10,10\n" +
		"REFLEX,200,1,10,10\n"
	_, err := parse(strings.NewReader(csv))
	require.NotNil(t, err)
	assert.Equal(t, 3, err.Row)
}

func TestParseRejectsNonPositiveField(t *testing.T) {
	csv := "name,base_mass_kg,specific_heat,fuel_capacity,cargo_capacity\n" +
		"Reflex,-5,1,10,10\n"
	_, err := parse(strings.NewReader(csv))
	require.NotNil(t, err)
	assert.Equal(t, "base_mass_kg", err.Field)
}

func TestParseRejectsMissingRequiredColumn(t *testing.T) {
	csv := "name,base_mass_kg\nReflex,100\n"
	_, err := parse(strings.NewReader(csv))
	require.NotNil(t, err)
}

func TestResolvePathShaSuffix(t *testing.T) {
	p, err := ResolvePath("/data/ships.csv.sha256", "")
	require.Nil(t, err)
	assert.Equal(t, "/data/ships.csv", p)
}
