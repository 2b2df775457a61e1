// Package render writes decoded messages as JSON, YAML or CBOR.
//
// Group fields render as arrays of per-instance objects.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/danmuck/fixctl/internal/protocol/tagvalue"
	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

var ErrUnknownFormat = errors.New("render: unknown format")

// cborMode uses Core Deterministic Encoding so equal messages produce
// identical bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("render: CBOR encoder initialization failed: " + err.Error())
	}
}

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case JSON, YAML, CBOR:
		return f, nil
	case "":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/yaml"
	case CBOR:
		return "application/cbor"
	default:
		return "application/json"
	}
}

// Token is the rendered form of a raw wire token.
type Token struct {
	Tag    uint32 `json:"tag" yaml:"tag" cbor:"tag"`
	Value  string `json:"value" yaml:"value" cbor:"value"`
	Offset int    `json:"offset" yaml:"offset" cbor:"offset"`
}

func Tokens(in []tagvalue.Token) []Token {
	out := make([]Token, 0, len(in))
	for _, tok := range in {
		out = append(out, Token{Tag: tok.Tag, Value: string(tok.Value), Offset: tok.Offset})
	}
	return out
}

// Marshal renders one message.
func Marshal(format Format, msg *protocol.Message) ([]byte, error) {
	v := msg.Map()
	switch format {
	case JSON:
		return json.Marshal(v)
	case YAML:
		return yaml.Marshal(v)
	case CBOR:
		return cborMode.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encoder writes a stream of values: JSON lines, YAML documents separated
// by "---", or a CBOR sequence.
type Encoder struct {
	json *json.Encoder
	yaml *yaml.Encoder
	cbor *cbor.Encoder
}

func NewEncoder(w io.Writer, format Format) (*Encoder, error) {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return &Encoder{json: enc}, nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &Encoder{yaml: enc}, nil
	case CBOR:
		return &Encoder{cbor: cborMode.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (e *Encoder) EncodeMessage(msg *protocol.Message) error {
	return e.Encode(msg.Map())
}

func (e *Encoder) Encode(v any) error {
	switch {
	case e.json != nil:
		return e.json.Encode(v)
	case e.yaml != nil:
		return e.yaml.Encode(v)
	default:
		return e.cbor.Encode(v)
	}
}

// Close flushes buffered YAML output.
func (e *Encoder) Close() error {
	if e.yaml != nil {
		return e.yaml.Close()
	}
	return nil
}
