package results

import (
	"math"
	"strconv"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/experiment"
)

var baseColumns = []string{
	"ParticipantID",
	"Age",
	"Gender",
	"EnglishNativity",
	"Familiarity",
	"Trial",
	"Filename",
	"ResponseTime",
	"ActualAuthenticity",
	"Difficulty",
	"Condition",
	"Response",
	"Correct",
	"Confidence",
	"Naturalness",
}

// Columns is the logfile header in output order.
var Columns = append(append([]string(nil), baseColumns...), acoustics.FeatureNames...)

// cell is one logfile value. Number is used for the spreadsheet; Text is the
// CSV rendering. Undefined measurements have Missing set and render empty.
type cell struct {
	Text    string
	Number  float64
	Numeric bool
	Missing bool
}

func textCell(value string) cell { return cell{Text: value} }

func intCell(value int) cell {
	return cell{Text: strconv.Itoa(value), Number: float64(value), Numeric: true}
}

func floatCell(value float64) cell {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return cell{Missing: true}
	}
	return cell{Text: strconv.FormatFloat(value, 'f', -1, 64), Number: value, Numeric: true}
}

// row lays out one result in Columns order.
func row(p experiment.Participant, r experiment.TrialResult) []cell {
	cells := []cell{
		textCell(p.ID),
		intCell(p.Age),
		textCell(p.Gender),
		textCell(p.Nativity),
		textCell(p.Familiarity),
		intCell(r.Index),
		textCell(r.Trial.Filename),
		floatCell(r.ResponseTime),
		textCell(string(r.Trial.Authenticity)),
		textCell(string(r.Trial.Difficulty)),
		textCell(string(r.Trial.Condition)),
		textCell(string(r.Response)),
		intCell(r.Correct),
		intCell(r.Confidence),
		intCell(r.Naturalness),
	}
	for _, v := range r.Features.Values() {
		cells = append(cells, floatCell(v))
	}
	return cells
}

// Records renders a session as CSV records, header first.
func Records(session *experiment.Session) [][]string {
	results := session.Results()
	records := make([][]string, 0, len(results)+1)
	records = append(records, append([]string(nil), Columns...))
	for _, r := range results {
		cells := row(session.Participant, r)
		record := make([]string, len(cells))
		for i, c := range cells {
			record[i] = c.Text
		}
		records = append(records, record)
	}
	return records
}
