package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// TOML is a koanf parser over BurntSushi/toml.
type TOML struct{}

// TOMLParser returns the parser used for flume.toml.
func TOMLParser() *TOML { return &TOML{} }

func (*TOML) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if _, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (*TOML) Marshal(o map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
