package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/fixctl/internal/config"
	"github.com/danmuck/fixctl/internal/observability"
	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/danmuck/fixctl/internal/protocol/tagvalue"
	"github.com/danmuck/fixctl/internal/render"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const metricsSource = "cli"

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	common := bindCommon(fs)
	tokens := fs.Bool("tokens", false, "dump raw tag=value tokens instead of decoded messages")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve(fs)
	if err != nil {
		return err
	}
	decoder, _, err := config.NewDecoder(cfg)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	enc, err := render.NewEncoder(stdout, format)
	if err != nil {
		return err
	}

	d := &lineDecoder{
		decoder: decoder,
		enc:     enc,
		tokens:  *tokens,
		maxLine: int(cfg.MaxMessageBytes),
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, path := range inputs {
		if err := d.decodeInput(path, stdin); err != nil {
			_ = enc.Close()
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}

	log.Debug().Int("lines", d.lines).Int("failed", d.failed).Msg("decode finished")
	if d.failed > 0 {
		return fmt.Errorf("%d of %d messages failed to decode", d.failed, d.lines)
	}
	return nil
}

type lineDecoder struct {
	decoder *protocol.Decoder
	enc     *render.Encoder
	tokens  bool
	maxLine int

	lines  int
	failed int
}

// decodeInput reads one message per line. "-" is stdin; a .zst suffix is
// decompressed on the fly.
func (d *lineDecoder) decodeInput(path string, stdin io.Reader) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("open zstd input %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(d.maxLine, 64*1024)), d.maxLine)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		d.lines++
		if err := d.decodeLine(line); err != nil {
			d.failed++
			log.Error().Err(err).Str("input", path).Int("line", lineNo).Msg("decode failed")
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func (d *lineDecoder) decodeLine(line []byte) error {
	if d.tokens {
		toks, err := tagvalue.Tokenize(line, d.decoder.Delimiter())
		if err != nil {
			return err
		}
		return d.enc.Encode(render.Tokens(toks))
	}

	start := time.Now()
	msg, err := d.decoder.Decode(line)
	observability.RecordDecode(metricsSource, msg, err, time.Since(start))
	if err != nil {
		return err
	}
	if msg.Truncated {
		log.Warn().Int("consumed", msg.Consumed).Int("length", len(line)).Msg("message truncated")
	}
	return d.enc.EncodeMessage(msg)
}
