package ledgerservice

// StandingRow is one line of a round leaderboard.
type StandingRow struct {
	Rank        int    `json:"rank"`
	PlayerID    int64  `json:"player_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Points      int    `json:"points"`
	Debt        int    `json:"debt"`
}

// RoundColumn identifies one round column of the season table.
type RoundColumn struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
}

// SeasonRow is one player's line of the season table. PerRound is aligned
// with SeasonTable.Rounds.
type SeasonRow struct {
	PlayerID    int64  `json:"player_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PerRound    []int  `json:"per_round"`
	Total       int    `json:"total"`
}

// SeasonTable is the full-season debt table ordered by total descending.
type SeasonTable struct {
	Rounds []RoundColumn `json:"rounds"`
	Rows   []SeasonRow   `json:"rows"`
}
