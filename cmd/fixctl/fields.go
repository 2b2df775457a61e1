package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/danmuck/fixctl/internal/config"
	"github.com/danmuck/fixctl/internal/dictionary"
	"github.com/danmuck/fixctl/internal/protocol/schema"
	"github.com/danmuck/fixctl/internal/render"
	"github.com/danmuck/fixctl/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

type fieldRow struct {
	Tag     schema.TagID   `json:"tag" yaml:"tag" cbor:"tag"`
	Name    string         `json:"name" yaml:"name" cbor:"name"`
	Group   schema.TagID   `json:"group,omitempty" yaml:"group,omitempty" cbor:"group,omitempty"`
	Members []schema.TagID `json:"members,omitempty" yaml:"members,omitempty" cbor:"members,omitempty"`
}

func runFields(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("fields", pflag.ContinueOnError)
	common := bindCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	tables, err := config.Tables(cfg)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	tags := listedTags(tables)
	if fs.NArg() > 0 {
		tags = tags[:0:0]
		for _, raw := range fs.Args() {
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid tag %q: %w", raw, err)
			}
			tags = append(tags, schema.TagID(v))
		}
	}

	enc, err := render.NewEncoder(stdout, format)
	if err != nil {
		return err
	}
	if err := enc.Encode(fieldRows(tables, tags)); err != nil {
		return err
	}
	return enc.Close()
}

// listedTags is every named tag plus count tags the dictionary never named.
func listedTags(tables dictionary.Tables) []schema.TagID {
	tags := append(tables.Fields.Tags(), tables.Groups.CountTags()...)
	slices.Sort(tags)
	return slices.Compact(tags)
}

func fieldRows(tables dictionary.Tables, tags []schema.TagID) []fieldRow {
	rows := make([]fieldRow, 0, len(tags))
	for _, tag := range tags {
		row := fieldRow{Tag: tag, Name: tables.Fields.Name(tag)}
		if owner, ok := tables.Groups.Owner(tag); ok {
			row.Group = owner
		}
		if tables.Groups.IsCountTag(tag) {
			row.Members, _ = tables.Groups.LookupGroupMembers(tag)
		}
		rows = append(rows, row)
	}
	return rows
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	common := bindCommon(fs)
	listen := fs.StringP("listen", "l", config.DefaultListen, "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	if fs.Changed("listen") {
		cfg.Listen = *listen
	}
	decoder, tables, err := config.NewDecoder(cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg, decoder, tables)
	if err != nil {
		return err
	}
	log.Info().Str("config", common.configPath).Str("dictionary", cfg.Dictionary).Msg("starting decode service")
	return srv.Serve()
}
