// FILE: lixenwraith/datacast/io.go
package datacast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a document format for input, settings and schema files
type Format string

const (
	FormatAuto Format = ""
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MaxDocumentSize bounds the size of any document read from disk
const MaxDocumentSize = 10 * 1024 * 1024

// ErrDocumentNotFound is returned when a document path does not exist
var ErrDocumentNotFound = errors.New("document not found")

// ParseFormat maps a format name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "toml", "tml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatAuto, fmt.Errorf("unknown document format %q", name)
}

// LoadInputFile reads a TOML, JSON or YAML document as a cast input.
// Nested tables are flattened to dot-notation keys ("server.port").
func LoadInputFile(path string) (map[string]any, error) {
	doc, err := readDocument(path, FormatAuto)
	if err != nil {
		return nil, err
	}
	return flattenMap(doc, ""), nil
}

// ReadInput decodes a cast input from r. FormatAuto detects the format from content.
func ReadInput(r io.Reader, format Format) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	doc, err := decodeDocument(data, format, "input")
	if err != nil {
		return nil, err
	}
	return flattenMap(doc, ""), nil
}

// LoadOverridesFile reads a settings layer from a TOML, JSON or YAML document.
// Only scalar settings and result_class names can be expressed in a file;
// caster names need Registry.ResolveOverrides.
func LoadOverridesFile(path string) (Overrides, error) {
	doc, err := readDocument(path, FormatAuto)
	if err != nil {
		return nil, err
	}
	return Overrides(doc), nil
}

// WriteDocument encodes a flat result map as a document; dotted keys become nested tables.
func WriteDocument(w io.Writer, flat map[string]any, format Format) error {
	nested := nestMap(flat)

	switch format {
	case FormatTOML, FormatAuto:
		if err := toml.NewEncoder(w).Encode(nested); err != nil {
			return fmt.Errorf("failed to marshal TOML: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(nested); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nested); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML: %w", err)
		}
	default:
		return fmt.Errorf("unknown document format %q", format)
	}
	return nil
}

// readDocument reads and decodes a document file into a nested map
func readDocument(path string, format Format) (map[string]any, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat document '%s': %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("document '%s' is a directory", path)
	}
	if fileInfo.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("document '%s' exceeds maximum size %d bytes", path, MaxDocumentSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read document '%s': %w", path, err)
	}

	if format == FormatAuto {
		format = detectFileFormat(path)
	}
	return decodeDocument(data, format, path)
}

// decodeDocument parses data; FormatAuto falls back to content detection
func decodeDocument(data []byte, format Format, name string) (map[string]any, error) {
	if format == FormatAuto {
		format = detectFormatFromContent(data)
	}

	doc := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML document '%s': %w", name, err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve integer values
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON document '%s': %w", name, err)
		}
		normalizeNumbers(doc)
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document '%s': %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unable to determine format of document '%s'", name)
	}
	return doc, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) Format {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// Try YAML (superset of JSON, so check after JSON)
	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	// Try TOML last
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	return FormatAuto
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
