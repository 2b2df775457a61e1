package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/fixctl/internal/dictionary"
	"github.com/danmuck/fixctl/internal/protocol"
)

// ParseDelimiter accepts a single byte or one of the names soh, pipe, caret.
func ParseDelimiter(raw string) (byte, error) {
	switch strings.ToLower(raw) {
	case "soh", "\\x01", "\\u0001", "\\001":
		return protocol.SOH, nil
	case "pipe":
		return protocol.Pipe, nil
	case "caret":
		return protocol.Caret, nil
	}
	if len(raw) != 1 {
		return 0, fmt.Errorf("delimiter must be a single byte or soh|pipe|caret, got %q", raw)
	}
	if raw[0] == '=' || (raw[0] >= '0' && raw[0] <= '9') {
		return 0, fmt.Errorf("delimiter %q collides with tag syntax", raw)
	}
	// the CLI frames one message per line
	if raw[0] == '\n' || raw[0] == '\r' {
		return 0, fmt.Errorf("delimiter %q collides with line framing", raw)
	}
	return raw[0], nil
}

func DecoderOptions(cfg Config) ([]protocol.Option, error) {
	delim, err := ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	return []protocol.Option{protocol.WithDelimiter(delim)}, nil
}

// Tables loads the configured dictionary. Without strict_dictionary a
// missing or broken file degrades to empty tables.
func Tables(cfg Config) (dictionary.Tables, error) {
	if cfg.Dictionary == "" {
		return dictionary.Empty(), nil
	}
	if cfg.StrictDictionary {
		return dictionary.Load(cfg.Dictionary)
	}
	return dictionary.LoadOrEmpty(cfg.Dictionary), nil
}

// NewDecoder builds the decoder described by cfg.
func NewDecoder(cfg Config) (*protocol.Decoder, dictionary.Tables, error) {
	opts, err := DecoderOptions(cfg)
	if err != nil {
		return nil, dictionary.Tables{}, err
	}
	tables, err := Tables(cfg)
	if err != nil {
		return nil, dictionary.Tables{}, err
	}
	return protocol.NewDecoder(tables.Fields, tables.Groups, opts...), tables, nil
}
