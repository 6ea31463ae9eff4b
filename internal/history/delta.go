package history

import (
	"strconv"

	"github.com/sells-group/credit-cli/internal/model"
)

// Direction of a score change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Delta is the change between two scores.
type Delta struct {
	Delta     int       `json:"delta" yaml:"delta"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// ScoreDelta returns current minus previous with its direction.
func ScoreDelta(current, previous int) Delta {
	d := current - previous
	switch {
	case d > 0:
		return Delta{Delta: d, Direction: Up}
	case d < 0:
		return Delta{Delta: d, Direction: Down}
	default:
		return Delta{Delta: 0, Direction: Flat}
	}
}

// Label renders the delta with an explicit sign for increases.
func (d Delta) Label() string {
	if d.Delta > 0 {
		return "+" + strconv.Itoa(d.Delta)
	}
	return strconv.Itoa(d.Delta)
}

// Row is a table row: a record with its change from the previous score.
type Row struct {
	model.ScoreRecord `yaml:",inline"`
	Change            Delta `json:"change" yaml:"change"`
}

// Rows pairs each record with its score delta.
func Rows(records []model.ScoreRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{ScoreRecord: r, Change: ScoreDelta(r.Score, r.PreviousScore)})
	}
	return rows
}
