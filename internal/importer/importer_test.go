package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	input := "\uFEFFFront,Back\n" +
		"hola,hello\n" +
		"\n" +
		"adios,\n" +
		"\"gracias, amigo\",\"thanks, friend\",ignored\n"

	res, err := Parse(strings.NewReader(input), "deck.CSV", 0)
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{Line: 2, Front: "hola", Back: "hello"},
		{Line: 5, Front: "gracias, amigo", Back: "thanks, friend"},
	}, res.Rows)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"line 4: front and back are both required"}, res.Errors)
}

func TestParseCSVWithoutHeader(t *testing.T) {
	t.Parallel()

	res, err := ParseCSV(strings.NewReader("sol,sun\nluna,moon\n"), 0)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "sol", res.Rows[0].Front)
}

func TestParseEnforcesRowLimit(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("front,back\na,1\nb,2\nc,3\n"), 2)
	assert.ErrorIs(t, err, ErrTooManyRows)

	res, err := ParseCSV(strings.NewReader("front,back\na,1\nb,2\n"), 2)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestParseUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("x"), "deck.txt", 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Question", "Answer"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2 + 2", 4}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"capital of France", "Paris"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"", "orphan"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := Parse(bytes.NewReader(buf.Bytes()), "cards.xlsx", 100)
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{Line: 2, Front: "2 + 2", Back: "4"},
		{Line: 3, Front: "capital of France", Back: "Paris"},
	}, res.Rows)
	assert.Equal(t, 1, res.Skipped)
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseXLSX(strings.NewReader("definitely not a zip"), 0)
	assert.ErrorIs(t, err, ErrUnreadable)
}
