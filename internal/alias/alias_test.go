package alias

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testTable() *Table {
	return NewTable([]Entry{
		{
			Category:     CategoryWater,
			Terms:        "Rhein, Rhine",
			Synonyms:     []string{"Vater Rhein"},
			Translations: []string{"Rhine", "Rhin"},
		},
		{
			Category:     CategoryBasin,
			Terms:        "Donau",
			Translations: []string{"Danube"},
		},
		{
			Category: CategoryDistrict,
			Terms:    "Emsland",
			Synonyms: []string{"Landkreis Emsland"},
		},
		{
			Category: CategoryDistrict,
			Terms:    "Emsland Nord",
			Synonyms: []string{"should never win, earlier row matches first"},
		},
		{
			Category: CategoryWater,
			Terms:    "Lahn",
		},
	})
}

func TestAlternatives_SubstringMatch(t *testing.T) {
	table := testTable()

	assert.Equal(t,
		[]string{"Vater Rhein", "Rhine", "Rhin"},
		table.Alternatives(CategoryWater, "rhein"))
	assert.Equal(t,
		[]string{"Danube"},
		table.Alternatives(CategoryBasin, "Donau"))
}

func TestAlternatives_CategoryIsolation(t *testing.T) {
	table := testTable()

	assert.Nil(t, table.Alternatives(CategoryBasin, "Rhein"))
	assert.Nil(t, table.Alternatives(CategoryWater, "Donau"))
}

func TestAlternatives_DistrictNormalization(t *testing.T) {
	table := testTable()

	want := []string{"Landkreis Emsland"}
	assert.Equal(t, want, table.Alternatives(CategoryDistrict, "Emsland"))
	assert.Equal(t, want, table.Alternatives(CategoryDistrict, "Landkreis Emsland"))
	assert.Equal(t, want, table.Alternatives(CategoryDistrict, "Kreis Emsland"))
	assert.Equal(t, want, table.Alternatives(CategoryDistrict, "LANDKREIS Emsland"))
}

func TestAlternatives_FirstMatchWins(t *testing.T) {
	table := testTable()

	assert.Equal(t,
		[]string{"Landkreis Emsland"},
		table.Alternatives(CategoryDistrict, "Emsland"))
}

func TestAlternatives_EmptyListsReturnNil(t *testing.T) {
	table := testTable()

	assert.Nil(t, table.Alternatives(CategoryWater, "Lahn"))
	assert.Nil(t, table.Alternatives(CategoryWater, "Unbekannt"))
	assert.Nil(t, table.Alternatives(CategoryDistrict, ""))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suchwortliste.xlsx")

	f := excelize.NewFile()
	const sheet = "Tabelle1"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	rows := [][]interface{}{
		{"Suchwortkategorie", "Suchworte", "Synonyme", "Übersetzungen"},
		{"Gewässer / Flüsse", "Rhein", "Vater Rhein", "Rhine, Rhin"},
		{"Landkreis", "Emsland", "", "Emsland district"},
		{"", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))

	table, err := Load(path, sheet)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Vater Rhein", "Rhine", "Rhin"},
		table.Alternatives(CategoryWater, "Rhein"))
	assert.Equal(t,
		[]string{"Emsland district"},
		table.Alternatives(CategoryDistrict, "Landkreis Emsland"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"), "Tabelle1")
	assert.Error(t, err)
}
