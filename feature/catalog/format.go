package catalog

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// setFile is one set as found in the catalog files.
type setFile struct {
	Code         string     `json:"code" yaml:"code"`
	Name         string     `json:"name" yaml:"name"`
	IsOnlineOnly bool       `json:"isOnlineOnly" yaml:"isOnlineOnly"`
	OnlineOnly   bool       `json:"onlineOnly" yaml:"onlineOnly"`
	Cards        []cardFile `json:"cards" yaml:"cards"`
}

func (s setFile) onlineOnly() bool {
	return s.IsOnlineOnly || s.OnlineOnly
}

// cardFile is one card of a set. Finishes may be given as a list or through
// the older hasFoil/hasNonFoil flags.
type cardFile struct {
	Name       string          `json:"name" yaml:"name"`
	Number     collectorNumber `json:"number" yaml:"number"`
	Finishes   []string        `json:"finishes" yaml:"finishes"`
	HasFoil    *bool           `json:"hasFoil" yaml:"hasFoil"`
	HasNonFoil *bool           `json:"hasNonFoil" yaml:"hasNonFoil"`
}

// collectorNumber accepts both quoted and bare numbers.
type collectorNumber string

func (n *collectorNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = collectorNumber(s)
		return nil
	}
	if string(b) == "null" {
		*n = ""
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("collector number: %w", err)
	}
	*n = collectorNumber(num.String())
	return nil
}

func (n *collectorNumber) UnmarshalYAML(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*n = ""
		return nil
	}
	*n = collectorNumber(fmt.Sprint(v))
	return nil
}

// parseJSON decodes a JSON catalog file. It accepts a single set wrapped in
// "data", a map of sets wrapped in "data", or a bare map of sets.
func parseJSON(data []byte) ([]setFile, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	body := top
	if raw, ok := top["data"]; ok {
		body = nil
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
	}

	if _, single := body["cards"]; single {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		var set setFile
		if err := json.Unmarshal(raw, &set); err != nil {
			return nil, err
		}
		return []setFile{set}, nil
	}

	sets := make([]setFile, 0, len(body))
	for _, code := range sortedKeys(body) {
		if code == "meta" {
			continue
		}
		var set setFile
		if err := json.Unmarshal(body[code], &set); err != nil {
			return nil, fmt.Errorf("set %s: %w", code, err)
		}
		if set.Code == "" {
			set.Code = code
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// parseYAML decodes a YAML catalog file holding a single set.
func parseYAML(data []byte) ([]setFile, error) {
	var set setFile
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return []setFile{set}, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
