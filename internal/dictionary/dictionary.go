// Package dictionary loads tag dictionaries and repeating group layouts.
//
// The XML form is the primary one: <field name="<tag>" description="<name>"/>
// elements anywhere in the document name tags, and each
// <repeatingGroup name="<count tag>"> lists its members as the field
// elements of its nested <group> elements, in document order. TOML, YAML
// and JSONC files describe the same tables as a Document.
package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/fixctl/internal/protocol/schema"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatXML  Format = "xml"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("dictionary: unsupported format")

// FieldError reports an attribute or entry that does not describe a tag.
type FieldError struct {
	Element string
	Attr    string
	Value   string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("dictionary: <%s %s=%q>: %v", e.Element, e.Attr, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

type FieldEntry struct {
	Tag  uint32 `toml:"tag" yaml:"tag" json:"tag"`
	Name string `toml:"name" yaml:"name" json:"name"`
}

type GroupEntry struct {
	Tag     uint32   `toml:"tag" yaml:"tag" json:"tag"`
	Members []uint32 `toml:"members" yaml:"members" json:"members"`
}

// Document is the format-neutral form of a dictionary file.
type Document struct {
	Fields []FieldEntry `toml:"fields" yaml:"fields" json:"fields"`
	Groups []GroupEntry `toml:"groups" yaml:"groups" json:"groups"`
}

// Tables is a loaded dictionary and its group layouts.
type Tables struct {
	Fields *schema.Dictionary
	Groups *schema.Groups
}

// Empty resolves every tag as unknown and expands no groups.
func Empty() Tables {
	groups, _ := schema.NewGroups(nil)
	return Tables{Fields: schema.NewDictionary(nil), Groups: groups}
}

func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and builds the tables at path, choosing the format by extension.
func Load(path string) (Tables, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Tables{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("dictionary load failed (%s): %w", path, err)
	}
	doc, err := Parse(format, data)
	if err != nil {
		return Tables{}, fmt.Errorf("dictionary parse failed (%s): %w", path, err)
	}
	tables, err := Build(doc)
	if err != nil {
		return Tables{}, fmt.Errorf("dictionary build failed (%s): %w", path, err)
	}
	log.Info().
		Str("path", path).
		Str("format", string(format)).
		Int("fields", tables.Fields.Len()).
		Int("groups", tables.Groups.Len()).
		Msg("dictionary loaded")
	return tables, nil
}

// LoadOrEmpty is Load that degrades to Empty on any failure.
func LoadOrEmpty(path string) Tables {
	tables, err := Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("dictionary unavailable, every tag resolves as unknown")
		return Empty()
	}
	return tables
}

func Parse(format Format, data []byte) (Document, error) {
	var doc Document
	switch format {
	case FormatXML:
		return parseXML(data)
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Document{}, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, err
		}
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return Document{}, err
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return doc, nil
}

// Build turns a document into immutable tables. Later entries for the same
// tag replace earlier ones; entries without a name only declare membership.
func Build(doc Document) (Tables, error) {
	names := make(map[schema.TagID]string, len(doc.Fields))
	for _, f := range doc.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		names[schema.TagID(f.Tag)] = name
	}
	layouts := make(map[schema.TagID][]schema.TagID, len(doc.Groups))
	for _, g := range doc.Groups {
		members := make([]schema.TagID, 0, len(g.Members))
		for _, m := range g.Members {
			members = append(members, schema.TagID(m))
		}
		layouts[schema.TagID(g.Tag)] = members
	}
	groups, err := schema.NewGroups(layouts)
	if err != nil {
		return Tables{}, err
	}
	return Tables{Fields: schema.NewDictionary(names), Groups: groups}, nil
}
