package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Ramsey-B/fern/pkg/matching"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCandidates writes one row per candidate pair: a_id, b_id, rank, score.
func WriteCandidates(w io.Writer, set matching.CandidateSet) error {
	out := csv.NewWriter(w)
	if err := out.Write([]string{"a_id", "b_id", "rank", "score"}); err != nil {
		return fmt.Errorf("write candidates header: %w", err)
	}
	for _, item := range set.Items {
		for rank, c := range item.Candidates {
			if err := out.Write([]string{item.ID, c.ID, strconv.Itoa(rank + 1), formatFloat(c.Score)}); err != nil {
				return fmt.Errorf("write candidate row: %w", err)
			}
		}
	}
	out.Flush()
	return out.Error()
}

// WriteTrainingSet writes the feature table with the pair ids first and the
// label and overall score last.
func WriteTrainingSet(w io.Writer, ts matching.TrainingSet) error {
	out := csv.NewWriter(w)

	header := make([]string, 0, len(ts.Columns)+4)
	header = append(header, "a_id", "b_id")
	header = append(header, ts.Columns...)
	header = append(header, "label", "overall_score")
	if err := out.Write(header); err != nil {
		return fmt.Errorf("write training header: %w", err)
	}

	row := make([]string, len(header))
	for i, p := range ts.Pairs {
		row = row[:0]
		row = append(row, p.AID, p.BID)
		for _, v := range ts.Rows[i] {
			row = append(row, formatFloat(v))
		}
		row = append(row, strconv.Itoa(ts.Labels[i]), formatFloat(p.OverallScore))
		if err := out.Write(row); err != nil {
			return fmt.Errorf("write training row: %w", err)
		}
	}
	out.Flush()
	return out.Error()
}
