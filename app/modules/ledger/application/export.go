package ledgerservice

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const seasonSheet = "Debts"

// ExportSeasonWorkbook writes the season debt table as an XLSX workbook.
func (s *LedgerService) ExportSeasonWorkbook(ctx context.Context, w io.Writer) error {
	table, err := s.SeasonDebtTable(ctx)
	if err != nil {
		return err
	}
	return WriteSeasonWorkbook(w, table)
}

// WriteSeasonWorkbook renders table on a single sheet: one row per player,
// one column per round and a final total column.
func WriteSeasonWorkbook(w io.Writer, table SeasonTable) error {
	if len(table.Rows) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", seasonSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(table.Rounds)+2)
	header = append(header, "Player")
	for _, r := range table.Rounds {
		header = append(header, r.Label)
	}
	header = append(header, "Total")
	if err := f.SetSheetRow(seasonSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(seasonSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]any, 0, len(row.PerRound)+2)
		values = append(values, row.DisplayName)
		for _, amount := range row.PerRound {
			values = append(values, amount)
		}
		values = append(values, row.Total)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(seasonSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(seasonSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
