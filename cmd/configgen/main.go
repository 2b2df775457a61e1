package main

import (
	"fmt"
	"os"

	"github.com/danmuck/fixctl/internal/config"
	"github.com/danmuck/fixctl/internal/dictionary"
	"github.com/danmuck/fixctl/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func defaultPath(kind string) (string, error) {
	switch kind {
	case "config":
		return "fixctl.toml", nil
	case "dictionary":
		return "fix.xml", nil
	default:
		return "", fmt.Errorf("unknown kind: %s", kind)
	}
}

func main() {
	observability.InitLogger("configgen")

	kind := pflag.String("kind", "config", "template kind: config|dictionary")
	output := pflag.String("output", "", "output path for the template")
	validate := pflag.Bool("validate", false, "validate an existing file")
	input := pflag.String("input", "", "path for validation (defaults to the per-kind path)")
	force := pflag.Bool("force", false, "overwrite an existing file")
	pflag.Parse()

	if err := run(*kind, *output, *input, *validate, *force); err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
}

func run(kind, output, input string, validate, force bool) error {
	if validate {
		path := input
		if path == "" {
			p, err := defaultPath(kind)
			if err != nil {
				return err
			}
			path = p
		}
		switch kind {
		case "config":
			if _, err := config.Load(path); err != nil {
				return err
			}
		case "dictionary":
			tables, err := dictionary.Load(path)
			if err != nil {
				return err
			}
			log.Info().Int("fields", tables.Fields.Len()).Int("groups", tables.Groups.Len()).Msg("dictionary tables built")
		default:
			return fmt.Errorf("unknown kind: %s", kind)
		}
		log.Info().Str("kind", kind).Str("path", path).Msg("validated")
		return nil
	}

	target := output
	if target == "" {
		p, err := defaultPath(kind)
		if err != nil {
			return err
		}
		target = p
	}
	if err := config.WriteTemplate(target, kind, force); err != nil {
		return err
	}
	log.Info().Str("kind", kind).Str("path", target).Msg("wrote template")
	return nil
}
