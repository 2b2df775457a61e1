package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "config":
		return configTemplate, nil
	case "dictionary":
		return dictionaryTemplate, nil
	default:
		return "", fmt.Errorf("unknown template kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const configTemplate = `name = "fixctl"
dictionary = "fix.xml"
strict_dictionary = false
# single byte, or soh | pipe | caret
delimiter = "^"
# json | yaml | cbor
format = "json"
listen = ":9400"
cors_origins = ["http://localhost:3000"]
max_message_bytes = 65536
# bearer token required on POST /decode; empty disables auth
auth_token = ""
`

const dictionaryTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<fix major="4" minor="2">
  <fields>
    <field name="8" description="BeginString"/>
    <field name="9" description="BodyLength"/>
    <field name="10" description="CheckSum"/>
    <field name="11" description="ClOrdID"/>
    <field name="34" description="MsgSeqNum"/>
    <field name="35" description="MsgType"/>
    <field name="49" description="SenderCompID"/>
    <field name="52" description="SendingTime"/>
    <field name="54" description="Side"/>
    <field name="55" description="Symbol"/>
    <field name="56" description="TargetCompID"/>
    <field name="59" description="TimeInForce"/>
    <field name="60" description="TransactTime"/>
    <field name="957" description="NoStrategyParameters"/>
  </fields>
  <repeatingGroups>
    <repeatingGroup name="957">
      <group>
        <field name="958" description="StrategyParameterName"/>
        <field name="959" description="StrategyParameterType"/>
        <field name="960" description="StrategyParameterValue"/>
      </group>
    </repeatingGroup>
  </repeatingGroups>
</fix>
`
