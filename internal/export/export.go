// Package export writes historical score tables to CSV and XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/credit-cli/internal/history"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "History"

// Header is the column layout shared by every tabular export.
var Header = []string{"Business ID", "Month", "Date", "Score", "Previous Score", "Change", "Trend"}

func rowValues(r history.Row) []string {
	return []string{
		r.BusinessID,
		r.Month,
		r.Date,
		strconv.Itoa(r.Score),
		strconv.Itoa(r.PreviousScore),
		r.Change.Label(),
		string(r.Change.Direction),
	}
}

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []history.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range rows {
		if err := cw.Write(rowValues(r)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes rows to a single-sheet workbook. Scores are numeric cells.
func WriteXLSX(w io.Writer, rows []history.Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.BusinessID)
		row.AddCell().SetString(r.Month)
		row.AddCell().SetString(r.Date)
		row.AddCell().SetInt(r.Score)
		row.AddCell().SetInt(r.PreviousScore)
		row.AddCell().SetInt(r.Change.Delta)
		row.AddCell().SetString(string(r.Change.Direction))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
