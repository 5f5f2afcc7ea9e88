package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
)

// CSVParser parses CSV feed files. A header with a points column makes a
// single round file. Otherwise every column that is not a roster column is a
// round, labeled by its header, and the rows double as the roster.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse parses CSV data and returns a Feed.
func (p *CSVParser) Parse(data []byte) (*sharedtypes.Feed, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if isBlankRow(record) {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	if findColumn(records[0], pointsColumns) >= 0 {
		entries, err := parseRoundTable(records)
		if err != nil {
			return nil, err
		}
		return &sharedtypes.Feed{Rounds: []sharedtypes.RoundFeed{{Entries: entries}}}, nil
	}

	return parseSeasonGrid(records)
}

// parseSeasonGrid reads a wide table: roster columns plus one column per round.
func parseSeasonGrid(records [][]string) (*sharedtypes.Feed, error) {
	roster, err := parseRoster(records)
	if err != nil {
		return nil, err
	}

	header := records[0]
	cols := findRosterColumns(header)
	rosterCols := map[int]bool{cols.user: true, cols.name: true, cols.avatar: true}
	userCol := cols.user

	feed := &sharedtypes.Feed{Roster: roster}
	for col := range header {
		if rosterCols[col] {
			continue
		}
		label := cell(header, col)
		round := sharedtypes.RoundFeed{Label: label}
		for _, row := range records[1:] {
			username := cell(row, userCol)
			points := cell(row, col)
			if username == "" || points == "" {
				continue
			}
			round.Entries = append(round.Entries, sharedtypes.RawPoints{Username: username, Points: points})
		}
		if label == "" && len(round.Entries) == 0 {
			continue
		}
		feed.Rounds = append(feed.Rounds, round)
	}

	if len(feed.Roster) == 0 && len(feed.Rounds) == 0 {
		return nil, ErrEmptyFeed
	}
	return feed, nil
}
