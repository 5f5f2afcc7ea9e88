package feed

import (
	"slices"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
)

var (
	usernameColumns    = []string{"username", "user", "player", "name", "nombre"}
	displayNameColumns = []string{"display_name", "displayname", "nick", "name", "nombre"}
	avatarColumns      = []string{"avatar_url", "avatar", "profile_image_url", "image"}
	pointsColumns      = []string{"points", "pts", "puntos", "score"}
)

// findColumn searches for a column by multiple possible names (case-insensitive).
// Spaces, underscores and hyphens are ignored. Names are tried in order, so an
// earlier name wins over a later one wherever they sit in the header. Columns
// listed in taken are never returned.
func findColumn(header []string, possibleNames []string, taken ...int) int {
	for _, name := range possibleNames {
		want := normalizeHeader(name)
		for i, col := range header {
			if slices.Contains(taken, i) {
				continue
			}
			if normalizeHeader(col) == want {
				return i
			}
		}
	}
	return -1
}

// rosterColumns locates the username, display name and avatar columns. A
// column claimed as the username is not reused as the display name.
type rosterColumns struct {
	user, name, avatar int
}

func findRosterColumns(header []string) rosterColumns {
	user := findColumn(header, usernameColumns)
	name := findColumn(header, displayNameColumns, user)
	return rosterColumns{
		user:   user,
		name:   name,
		avatar: findColumn(header, avatarColumns, user, name),
	}
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseRoster reads roster rows below header. Rows without a username are skipped.
func parseRoster(rows [][]string) ([]sharedtypes.RosterEntry, error) {
	if len(rows) == 0 {
		return nil, errEmptySheet
	}
	cols := findRosterColumns(rows[0])
	if cols.user < 0 {
		return nil, errNoUsernameColumn
	}

	var roster []sharedtypes.RosterEntry
	for _, row := range rows[1:] {
		username := cell(row, cols.user)
		if username == "" {
			continue
		}
		roster = append(roster, sharedtypes.RosterEntry{
			Username:    username,
			DisplayName: cell(row, cols.name),
			AvatarURL:   cell(row, cols.avatar),
		})
	}
	return roster, nil
}

// parseRoundTable reads a two column (username, points) table. Points are
// kept as raw text.
func parseRoundTable(rows [][]string) ([]sharedtypes.RawPoints, error) {
	if len(rows) == 0 {
		return nil, errEmptySheet
	}
	header := rows[0]
	userCol := findColumn(header, usernameColumns)
	if userCol < 0 {
		return nil, errNoUsernameColumn
	}
	pointsCol := findColumn(header, pointsColumns, userCol)
	if pointsCol < 0 {
		return nil, errNoPointsColumn
	}

	var entries []sharedtypes.RawPoints
	for _, row := range rows[1:] {
		username := cell(row, userCol)
		if username == "" {
			continue
		}
		entries = append(entries, sharedtypes.RawPoints{
			Username: username,
			Points:   cell(row, pointsCol),
		})
	}
	return entries, nil
}
