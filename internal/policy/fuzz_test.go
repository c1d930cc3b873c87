package policy

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func FuzzConfigYAML(f *testing.F) {
	f.Add([]byte(DefaultConfigYAML()))
	f.Add([]byte(`actions:
  export:
    max_allowed: public
`))
	f.Add([]byte{})
	f.Add([]byte(`{{{not yaml at all`))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic on any input.
		var cfg Config
		yaml.Unmarshal(data, &cfg)
	})
}
