package logbridge

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeverityConfig maps logger name prefixes to tiers (1-4, 0 suppresses the
// logger). The empty key is the root; when it is absent, loggers without a
// configured prefix are suppressed.
//
// A severity is given either as a single tier or as a mapping; both are
// normalized to this map by Scalar and Mapping.
type SeverityConfig map[string]int

// Scalar returns the configuration applying tier to every logger.
func Scalar(tier int) SeverityConfig {
	return SeverityConfig{emptyString: tier}
}

// Mapping returns a copy of m as a configuration.
func Mapping(m map[string]int) SeverityConfig {
	c := make(SeverityConfig, len(m))
	maps.Copy(c, m)
	return c
}

// Validate reports the first invalid tier or prefix.
func (c SeverityConfig) Validate() error {
	return validateSeverity(c)
}

// UnmarshalYAML accepts either a scalar tier or a prefix mapping.
func (c *SeverityConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var tier int
		if err := node.Decode(&tier); err != nil {
			return err
		}
		*c = Scalar(tier)
		return nil
	case yaml.MappingNode:
		var m map[string]int
		if err := node.Decode(&m); err != nil {
			return err
		}
		*c = Mapping(m)
		return nil
	}
	return fmt.Errorf("severity: line %d: expected an integer or a mapping", node.Line)
}

// UnmarshalTOML accepts either an integer or a table of integers.
func (c *SeverityConfig) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case int64:
		*c = Scalar(int(v))
		return nil
	case map[string]any:
		m := make(SeverityConfig, len(v))
		for k, raw := range v {
			tier, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("severity: %q: expected an integer, got %T", k, raw)
			}
			m[k] = int(tier)
		}
		*c = m
		return nil
	}
	return fmt.Errorf("severity: expected an integer or a table, got %T", data)
}

// UnmarshalJSON accepts either a number or an object of numbers.
func (c *SeverityConfig) UnmarshalJSON(data []byte) error {
	var tier int
	if err := json.Unmarshal(data, &tier); err == nil {
		*c = Scalar(tier)
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("severity: expected a number or an object: %w", err)
	}
	*c = Mapping(m)
	return nil
}

// SetValue parses an environment value: either a tier ("3") or a comma
// separated list of prefix=tier pairs ("app=4,app.request=3,=1").
func (c *SeverityConfig) SetValue(s string) error {
	s = strings.TrimSpace(s)
	if tier, err := strconv.Atoi(s); err == nil {
		*c = Scalar(tier)
		return nil
	}
	m := SeverityConfig{}
	for _, pair := range strings.Split(s, ",") {
		if strings.TrimSpace(pair) == emptyString {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("severity: %q: expected prefix=tier", pair)
		}
		tier, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("severity: %q: %w", pair, err)
		}
		m[strings.TrimSpace(name)] = tier
	}
	*c = m
	return nil
}
