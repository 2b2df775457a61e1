package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/fixctl/internal/config"
	"github.com/danmuck/fixctl/internal/observability"
	"github.com/spf13/pflag"
)

const usage = `usage: fixctl <command> [flags]

commands:
  decode [file...]  decode one message per line from files or stdin
  fields [tag...]   list the loaded dictionary
  serve             run the HTTP decode service
`

var errUsage = errors.New("fixctl: usage")

func main() {
	observability.InitLogger("fixctl")
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "fixctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "decode":
		return runDecode(rest, stdin, stdout)
	case "fields":
		return runFields(rest, stdout)
	case "serve":
		return runServe(rest)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

// commonFlags are accepted by every subcommand and override the config file.
type commonFlags struct {
	configPath string
	dictionary string
	strict     bool
	delimiter  string
	format     string
}

func bindCommon(fs *pflag.FlagSet) *commonFlags {
	f := &commonFlags{}
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML config file")
	fs.StringVarP(&f.dictionary, "dictionary", "d", "", "dictionary file (.xml, .toml, .yaml, .json, .jsonc)")
	fs.BoolVar(&f.strict, "strict", false, "fail when the dictionary cannot be loaded")
	fs.StringVar(&f.delimiter, "delimiter", config.DefaultDelimiter, "field delimiter: single byte or soh|pipe|caret")
	fs.StringVarP(&f.format, "format", "f", config.DefaultFormat, "output format: json|yaml|cbor")
	return f
}

// resolve loads the config file, if any, then applies explicitly set flags.
func (f *commonFlags) resolve(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if fs.Changed("dictionary") {
		cfg.Dictionary = f.dictionary
	}
	if fs.Changed("strict") {
		cfg.StrictDictionary = f.strict
	}
	if fs.Changed("delimiter") {
		cfg.Delimiter = f.delimiter
	}
	if fs.Changed("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(f.format))
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
