package feed

import (
	"bytes"
	"fmt"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/xuri/excelize/v2"
)

// RosterSheet is the sheet name holding the roster in XLSX feeds.
const RosterSheet = "Roster"

// XLSXParser parses XLSX feed workbooks. The Roster sheet holds the roster;
// every other sheet is one round, in workbook order, labeled by its name.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse parses XLSX data and returns a Feed.
func (p *XLSXParser) Parse(data []byte) (*sharedtypes.Feed, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "zip: not a valid zip file") {
			return nil, fmt.Errorf("failed to open XLSX file: %w. (Hint: If this is a CSV file, please ensure it has a .csv extension)", err)
		}
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	feed := &sharedtypes.Feed{}
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		rows = dropBlankRows(rows)

		if strings.EqualFold(sheet, RosterSheet) {
			roster, err := parseRoster(rows)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sheet, err)
			}
			feed.Roster = roster
			continue
		}

		if len(rows) == 0 {
			continue
		}
		entries, err := parseRoundTable(rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		feed.Rounds = append(feed.Rounds, sharedtypes.RoundFeed{Label: sheet, Entries: entries})
	}

	if len(feed.Roster) == 0 && len(feed.Rounds) == 0 {
		return nil, ErrEmptyFeed
	}
	return feed, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if !isBlankRow(row) {
			out = append(out, row)
		}
	}
	return out
}
