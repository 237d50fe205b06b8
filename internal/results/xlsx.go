package results

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"voicejudge/internal/experiment"
)

const sheetName = "Trials"

func writeXLSX(path string, session *experiment.Session) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header := make([]interface{}, len(Columns))
	for i, name := range Columns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range session.Results() {
		cells := row(session.Participant, r)
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			switch {
			case c.Missing:
				values[j] = nil
			case c.Numeric:
				values[j] = c.Number
			default:
				values[j] = c.Text
			}
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}
