package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
)

// Layout file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const schemaURL = "https://dronesafari.local/schemas/layout.schema.json"

//go:embed layout.schema.json
var layoutSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Schema returns the JSON Schema every layout document must satisfy.
func Schema() []byte {
	return []byte(layoutSchemaJSON)
}

func layoutSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, layoutSchemaJSON)
	})
	return schema, schemaErr
}

// FormatFromPath maps a file extension to a layout format.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported layout extension %q: use .json, .yaml or .yml", filepath.Ext(path))
}

// DecodeLayout parses a layout document, checks it against the schema and
// then against the engine's rules. YAML documents are normalised to JSON
// first so both formats go through the same checks.
func DecodeLayout(data []byte, format string) (*engine.GameConfig, error) {
	doc := data
	if format == FormatYAML || format == "yml" {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidConfig, err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: yaml is not representable as json: %v", ErrInvalidConfig, err)
		}
		doc = b
	} else if format != FormatJSON {
		return nil, fmt.Errorf("unsupported layout format %q", format)
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrInvalidConfig, err)
	}
	sch, err := layoutSchema()
	if err != nil {
		return nil, fmt.Errorf("compile layout schema: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// EncodeLayout renders a layout in the given format.
func EncodeLayout(config *engine.GameConfig, format string) ([]byte, error) {
	out := config.Clone()
	if out.Trees == nil {
		out.Trees = []engine.Position{}
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal layout: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("failed to marshal layout: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal layout: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported layout format %q", format)
}

// LoadFile reads and validates a single layout file.
func LoadFile(path string) (*engine.GameConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	config, err := DecodeLayout(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return config, nil
}
