package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/credit-cli/internal/history"
	"github.com/sells-group/credit-cli/internal/model"
)

func sampleRows() []history.Row {
	return history.Rows([]model.ScoreRecord{
		{BusinessID: "B1", Month: "Jan", Date: "2025-01-31", Score: 712, PreviousScore: 700},
		{BusinessID: "B2", Month: "Jan", Date: "2025-01-31", Score: 640, PreviousScore: 655},
	})
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"B1", "Jan", "2025-01-31", "712", "700", "+12", "up"}, records[1])
	assert.Equal(t, []string{"B2", "Jan", "2025-01-31", "640", "655", "-15", "down"}, records[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Business ID,Month,Date,Score,Previous Score,Change,Trend\n", buf.String())
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Business ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "712", sheet.Rows[1].Cells[3].String())

	records, err := ReadXLSX(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.ScoreRecord{BusinessID: "B1", Month: "Jan", Date: "2025-01-31", Score: 712, PreviousScore: 700}, records[0])
	assert.Equal(t, 655, records[1].PreviousScore)
}

func TestReadXLSX_MissingColumn(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Scores")
	require.NoError(t, err)
	row := sheet.AddRow()
	row.AddCell().SetString("Business ID")
	row.AddCell().SetString("Month")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err = ReadXLSX(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "Score"`)
}

func TestReadXLSX_BadScore(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	require.NoError(t, err)
	header := sheet.AddRow()
	for _, h := range []string{"Business ID", "Month", "Score"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("B1")
	row.AddCell().SetString("Jan")
	row.AddCell().SetString("high")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err = ReadXLSX(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2: parse score")
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	t.Parallel()

	_, err := ReadXLSX([]byte("not a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open xlsx")
}
