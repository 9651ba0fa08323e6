package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"gopkg.in/yaml.v3"
)

// parseFields turns FIELD=VALUE arguments into a record.
func parseFields(args []string) (sfrest.Record, error) {
	fields := make(sfrest.Record, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q, expected FIELD=VALUE", arg)
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("field %q given more than once", name)
		}

		fields[name] = parseValue(raw)
	}
	return fields, nil
}

// parseValue decodes raw as JSON, keeping numbers exact, and falls back to
// the raw string.
func parseValue(raw string) interface{} {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return raw
	}
	if _, err := dec.Token(); err != io.EOF {
		return raw
	}
	return value
}

func validateOutput(format string) error {
	switch format {
	case "", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func render(w io.Writer, format string, v interface{}) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(plain(v))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// plain converts json.Number values so YAML prints them as numbers.
func plain(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	}
	return v
}
