package archive

import (
	"context"
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"

	"voicejudge/internal/stimuli"
)

// ConditionSummary aggregates archived trials of one condition.
type ConditionSummary struct {
	Condition       stimuli.Condition
	Trials          int
	Accuracy        float64
	MeanRT          float64
	MedianRT        float64
	StdRT           float64
	MeanConfidence  float64
	MeanNaturalness float64
}

type summaryRow struct {
	Condition    string  `db:"condition"`
	Correct      int     `db:"correct"`
	ResponseTime float64 `db:"response_time"`
	Confidence   int     `db:"confidence"`
	Naturalness  int     `db:"naturalness"`
}

// Summaries returns one summary per condition with archived trials, main
// conditions first in catalog order.
func (s *Store) Summaries(ctx context.Context) ([]ConditionSummary, error) {
	var rows []summaryRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT condition, correct, response_time, confidence, naturalness FROM trial_results")
	if err != nil {
		return nil, fmt.Errorf("load trial results: %w", err)
	}

	type samples struct {
		correct, rt, confidence, naturalness stats.Float64Data
	}
	grouped := map[stimuli.Condition]*samples{}
	for _, row := range rows {
		condition := stimuli.Condition(row.Condition)
		g, ok := grouped[condition]
		if !ok {
			g = &samples{}
			grouped[condition] = g
		}
		g.correct = append(g.correct, float64(row.Correct))
		g.rt = append(g.rt, row.ResponseTime)
		g.confidence = append(g.confidence, float64(row.Confidence))
		g.naturalness = append(g.naturalness, float64(row.Naturalness))
	}

	conditions := make([]stimuli.Condition, 0, len(grouped))
	for condition := range grouped {
		conditions = append(conditions, condition)
	}
	slices.SortFunc(conditions, func(a, b stimuli.Condition) int {
		if ra, rb := conditionRank(a), conditionRank(b); ra != rb {
			return ra - rb
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})

	out := make([]ConditionSummary, 0, len(conditions))
	for _, condition := range conditions {
		g := grouped[condition]
		summary := ConditionSummary{Condition: condition, Trials: len(g.rt)}
		// Groups are never empty. A single trial leaves StdRT as NaN.
		accuracy, _ := stats.Mean(g.correct)
		summary.Accuracy = 100 * accuracy
		summary.MeanRT, _ = stats.Mean(g.rt)
		summary.MedianRT, _ = stats.Median(g.rt)
		summary.StdRT, _ = stats.StandardDeviationSample(g.rt)
		summary.MeanConfidence, _ = stats.Mean(g.confidence)
		summary.MeanNaturalness, _ = stats.Mean(g.naturalness)
		out = append(out, summary)
	}
	return out, nil
}

func conditionRank(c stimuli.Condition) int {
	if i := slices.Index(stimuli.MainConditions, c); i >= 0 {
		return i
	}
	return len(stimuli.MainConditions)
}
