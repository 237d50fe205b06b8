package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// column is one table column; numeric columns are right aligned.
type column struct {
	header string
	align  columnAlignment
}

// tableView renders operator tables. Rows shorter than the column list are
// padded with blanks and extra cells are dropped. The title is printed on its
// own line above the table so narrow tables never wrap it.
type tableView struct {
	title   string
	columns []column
	rows    [][]string
	footer  []string
}

func (v *tableView) addRow(cells ...string) {
	v.rows = append(v.rows, cells)
}

func (v *tableView) fit(cells []string) table.Row {
	row := make(table.Row, len(v.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func (v *tableView) render() string {
	if len(v.columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(v.columns))
	configs := make([]table.ColumnConfig, len(v.columns))
	for i, c := range v.columns {
		header[i] = c.header
		align := text.AlignLeft
		if c.align == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	for _, cells := range v.rows {
		tw.AppendRow(v.fit(cells))
	}
	if len(v.footer) > 0 {
		tw.AppendFooter(v.fit(v.footer))
	}
	tw.SetColumnConfigs(configs)
	if v.title == "" {
		return tw.Render()
	}
	return v.title + "\n" + tw.Render()
}
