package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/fixctl/internal/protocol/schema"
	"github.com/danmuck/fixctl/internal/testutil/testlog"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testDictionary = "../../internal/dictionary/testdata/fix.xml"

const orderLines = "8=FIX.4.2^35=D^957=1^958=Style^959=String^960=Passive^55=IBM^\n" +
	"\n" +
	"35=8^55=MSFT^\r\n"

func decodeLines(t *testing.T, out []byte) []map[string]any {
	t.Helper()
	var msgs []map[string]any
	dec := json.NewDecoder(bytes.NewReader(out))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		msgs = append(msgs, m)
	}
	return msgs
}

func TestDecodeFromStdin(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	err := run([]string{"decode", "--dictionary", testDictionary}, strings.NewReader(orderLines), &out)
	require.NoError(t, err)

	msgs := decodeLines(t, out.Bytes())
	require.Len(t, msgs, 2)
	assert.Equal(t, "IBM", msgs[0]["Symbol"])
	params, ok := msgs[0]["NoStrategyParameters"].([]any)
	require.True(t, ok)
	assert.Equal(t, "Passive", params[0].(map[string]any)["StrategyParameterValue"])
	assert.Equal(t, "MSFT", msgs[1]["Symbol"])
}

func TestDecodeCompressedFileAsYAML(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "orders.fix.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte("35=D|55=IBM|\n35=F|55=MSFT|\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	var out bytes.Buffer
	err = run([]string{"decode", "-d", testDictionary, "--delimiter", "pipe", "-f", "YAML", path}, strings.NewReader(""), &out)
	require.NoError(t, err)

	dec := yaml.NewDecoder(&out)
	var symbols []string
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			break
		}
		symbols = append(symbols, m["Symbol"].(string))
	}
	assert.Equal(t, []string{"IBM", "MSFT"}, symbols)
}

func TestDecodeTokens(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	err := run([]string{"decode", "--tokens"}, strings.NewReader("35=D^55=IBM^58\n"), &out)
	require.NoError(t, err)

	var toks []struct {
		Tag    uint32 `json:"tag"`
		Value  string `json:"value"`
		Offset int    `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &toks))
	require.Len(t, toks, 2)
	assert.Equal(t, uint32(55), toks[1].Tag)
	assert.Equal(t, "IBM", toks[1].Value)
	assert.Equal(t, 5, toks[1].Offset)
}

func TestDecodeReportsFailedLines(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	err := run([]string{"decode"}, strings.NewReader("35=D^\nX5=D^\n55=IBM^\n"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 messages")
	assert.Len(t, decodeLines(t, out.Bytes()), 2)
}

func TestDecodeRejectsBadFlags(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	assert.Error(t, run([]string{"decode", "--delimiter", "="}, strings.NewReader(""), &out))
	assert.Error(t, run([]string{"decode", "--delimiter", "\n"}, strings.NewReader(""), &out))
	assert.Error(t, run([]string{"decode", "--format", "xml"}, strings.NewReader(""), &out))
	assert.Error(t, run([]string{"decode", "--strict", "-d", "missing.xml"}, strings.NewReader(""), &out))
	assert.Error(t, run([]string{"decode", filepath.Join(t.TempDir(), "absent.fix")}, strings.NewReader(""), &out))
	assert.True(t, errors.Is(run(nil, nil, &out), errUsage))
	assert.True(t, errors.Is(run([]string{"bogus"}, nil, &out), errUsage))
}

func TestFieldsListsDictionary(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"fields", "-d", testDictionary}, nil, &out))

	var rows []fieldRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 17)
	assert.Equal(t, "BeginString", rows[0].Name)

	out.Reset()
	require.NoError(t, run([]string{"fields", "-d", testDictionary, "957", "959", "4242"}, nil, &out))
	rows = nil
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Len(t, rows[0].Members, 3)
	assert.EqualValues(t, 957, rows[1].Group)
	assert.Equal(t, "UnknownTag(4242)", rows[2].Name)

	assert.Error(t, run([]string{"fields", "x"}, nil, &out))
}

func TestFieldsListsUnnamedCountTags(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "parties.yaml")
	doc := "fields:\n  - {tag: 448, name: PartyID}\ngroups:\n  - {tag: 453, members: [448]}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"fields", "-d", path}, nil, &out))
	var rows []fieldRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "PartyID", rows[0].Name)
	assert.EqualValues(t, 453, rows[0].Group)
	assert.Equal(t, "UnknownTag(453)", rows[1].Name)
	assert.Equal(t, []schema.TagID{448}, rows[1].Members)
}
