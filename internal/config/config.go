// Package config reads batch files.
package config

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"
)

func Parse(r io.Reader) (*Batch, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var b Batch
	err := decoder.Decode(&b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func keyEmptyError(key string) error {
	return fmt.Errorf("key '%s' is missing or value is empty", key)
}

// checkKnownFields is needed because node.Decode inside UnmarshalYAML
// does not inherit KnownFields from the decoder.
func checkKnownFields(node *yaml.Node, v any, prefix string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	known := yamlKeys(reflect.TypeOf(v))
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(known, key.Value) {
			return fmt.Errorf("line %d: field %s%s not found", key.Line, prefix, key.Value)
		}
	}
	return nil
}

func yamlKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}
