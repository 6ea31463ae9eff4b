package export

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/credit-cli/internal/model"
)

// ReadXLSX loads score records from a workbook laid out like WriteXLSX
// output, so exported files can be fed back as offline history fixtures.
// Columns are matched by header name; Change and Trend are recomputed.
func ReadXLSX(data []byte) ([]model.ScoreRecord, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "export: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("export: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if s, ok := f.Sheet[SheetName]; ok {
		sheet = s
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.New("export: sheet is empty")
	}

	cols := make(map[string]int)
	for i, c := range sheet.Rows[0].Cells {
		cols[strings.TrimSpace(c.String())] = i
	}
	for _, required := range []string{"Business ID", "Month", "Score"} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("export: missing column %q", required)
		}
	}

	var records []model.ScoreRecord
	for i, row := range sheet.Rows[1:] {
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[idx].String())
		}

		if cell("Business ID") == "" && cell("Month") == "" {
			continue
		}

		score, err := strconv.Atoi(cell("Score"))
		if err != nil {
			return nil, eris.Wrapf(err, "export: row %d: parse score", i+2)
		}
		prev := score
		if raw := cell("Previous Score"); raw != "" {
			prev, err = strconv.Atoi(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "export: row %d: parse previous score", i+2)
			}
		}

		records = append(records, model.ScoreRecord{
			BusinessID:    cell("Business ID"),
			Month:         cell("Month"),
			Date:          cell("Date"),
			Score:         score,
			PreviousScore: prev,
		})
	}
	return records, nil
}
