// Package sharedtypes holds the feed shapes exchanged between the ingestion
// collaborators and the ledger modules.
package sharedtypes

// RosterEntry is one player as reported by the roster feed.
type RosterEntry struct {
	Username    string `yaml:"username" json:"username"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	AvatarURL   string `yaml:"avatar_url" json:"avatar_url"`
}

// RawPoints is one scraped (username, points) pair. Points is untrusted text
// such as "12 pts".
type RawPoints struct {
	Username string `yaml:"username" json:"username"`
	Points   string `yaml:"points" json:"points"`
}

// RoundFeed is the standings of one round in feed order.
type RoundFeed struct {
	Label   string      `yaml:"label" json:"label"`
	Entries []RawPoints `yaml:"entries" json:"entries"`
}

// Feed is a full season snapshot: the roster plus every round in arrival order.
type Feed struct {
	Roster []RosterEntry `yaml:"roster" json:"roster"`
	Rounds []RoundFeed   `yaml:"rounds" json:"rounds"`
}
