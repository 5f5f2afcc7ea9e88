package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
)

// Parser turns a feed file into a Feed.
type Parser interface {
	Parse(data []byte) (*sharedtypes.Feed, error)
}

// ParserFactory picks a Parser for a file name.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	case ".yaml", ".yml":
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported feed file type: %q", ext)
	}
}

// Load reads path and parses it with the parser matching its extension.
func (f *Factory) Load(path string) (*sharedtypes.Feed, error) {
	parser, err := f.GetParser(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}
	parsed, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return parsed, nil
}
