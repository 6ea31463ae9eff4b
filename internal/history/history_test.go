package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/credit-cli/internal/model"
)

func sampleRecords() []model.ScoreRecord {
	return []model.ScoreRecord{
		{BusinessID: "B1", Month: "Jan", Score: 700, PreviousScore: 690},
		{BusinessID: "B2", Month: "Jan", Score: 800, PreviousScore: 810},
		{BusinessID: "B1", Month: "Feb", Score: 600, PreviousScore: 700},
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	tests := []struct {
		name     string
		month    string
		business string
		want     []int
	}{
		{"all_all", All, All, []int{700, 800, 600}},
		{"month_only", "Jan", All, []int{700, 800}},
		{"business_only", All, "B1", []int{700, 600}},
		{"both", "Feb", "B1", []int{600}},
		{"no_match", "Mar", All, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(records, tt.month, tt.business)
			scores := make([]int, 0, len(got))
			for _, r := range got {
				scores = append(scores, r.Score)
			}
			assert.Equal(t, tt.want, scores)
		})
	}
}

func TestFilter_AllAllReturnsEverything(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	assert.Equal(t, records, Filter(records, All, All))
}

func TestMonthlyAverages(t *testing.T) {
	t.Parallel()

	got := MonthlyAverages(sampleRecords(), []string{"Jan", "Feb", "Mar"})
	assert.Equal(t, []Point{
		{Month: "Jan", AverageScore: 750},
		{Month: "Feb", AverageScore: 600},
		{Month: "Mar", AverageScore: 0},
	}, got)
}

func TestMonthlyAverages_RoundsHalfUp(t *testing.T) {
	t.Parallel()

	records := []model.ScoreRecord{
		{BusinessID: "B1", Month: "Jan", Score: 700},
		{BusinessID: "B2", Month: "Jan", Score: 701},
	}
	got := MonthlyAverages(records, []string{"Jan"})
	assert.Equal(t, 701, got[0].AverageScore)
}

func TestAggregate_AllBusinesses(t *testing.T) {
	t.Parallel()

	filtered, series := Aggregate(sampleRecords(), []string{"Jan", "Feb"}, All, All)
	assert.Len(t, filtered, 3)
	assert.True(t, series.Averaged)
	assert.Equal(t, []Point{{Month: "Jan", AverageScore: 750}, {Month: "Feb", AverageScore: 600}}, series.Points)
}

func TestAggregate_AveragesIgnoreMonthFilter(t *testing.T) {
	t.Parallel()

	filtered, series := Aggregate(sampleRecords(), []string{"Jan", "Feb"}, "Feb", All)
	require.Len(t, filtered, 1)
	assert.Equal(t, 600, filtered[0].Score)
	// The trend still covers every month.
	require.Len(t, series.Points, 2)
	assert.Equal(t, 750, series.Points[0].AverageScore)
}

func TestAggregate_SingleBusiness(t *testing.T) {
	t.Parallel()

	filtered, series := Aggregate(sampleRecords(), []string{"Jan", "Feb"}, All, "B1")
	require.Len(t, filtered, 2)
	assert.False(t, series.Averaged)
	require.Len(t, series.Points, 2)
	for i, p := range series.Points {
		assert.Equal(t, filtered[i].Score, p.Score)
		assert.Equal(t, filtered[i].Month, p.Month)
	}
}

func TestSeries_MarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Series{Averaged: true, Points: []Point{{Month: "Jan", AverageScore: 750}}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"month":"Jan","averageScore":750}]`, string(b))

	b, err = json.Marshal(Series{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestSeries_EmptyMonthKeepsZeroAverage(t *testing.T) {
	t.Parallel()

	records := []model.ScoreRecord{{BusinessID: "B1", Month: "Jan", Score: 700}}
	_, series := Aggregate(records, []string{"Jan", "Feb"}, All, All)

	b, err := json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"month":"Jan","averageScore":700},{"month":"Feb","averageScore":0}]`, string(b))

	y, err := yaml.Marshal(struct {
		Series Series `yaml:"series"`
	}{series})
	require.NoError(t, err)
	assert.Contains(t, string(y), "averageScore: 0")
}

func TestSeries_RecordPointsKeepEmptyBusinessID(t *testing.T) {
	t.Parallel()

	records := []model.ScoreRecord{{BusinessID: "", Month: "Jan", Score: 640}}
	_, series := Aggregate(records, []string{"Jan"}, All, "")

	b, err := json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"month":"Jan","businessId":"","score":640}]`, string(b))
}

func TestBusinessIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"B1", "B2"}, BusinessIDs(sampleRecords()))
	assert.Empty(t, BusinessIDs(nil))
}
