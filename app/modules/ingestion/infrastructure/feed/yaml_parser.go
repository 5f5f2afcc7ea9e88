package feed

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"gopkg.in/yaml.v3"
)

// YAMLParser parses a whole season feed written as YAML.
type YAMLParser struct{}

// NewYAMLParser creates a new YAML parser.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// Parse decodes data strictly: unknown keys are an error.
func (p *YAMLParser) Parse(data []byte) (*sharedtypes.Feed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var feed sharedtypes.Feed
	if err := dec.Decode(&feed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFeed
		}
		return nil, fmt.Errorf("failed to decode YAML feed: %w", err)
	}
	if len(feed.Roster) == 0 && len(feed.Rounds) == 0 {
		return nil, ErrEmptyFeed
	}
	return &feed, nil
}
