// Package export converts the store to and from portable YAML or JSON
// documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// DocumentVersion is written to every document. Decode rejects newer ones.
const DocumentVersion = 1

// Document is the portable form of the store.
type Document struct {
	Version    int              `yaml:"version" json:"version"`
	ExportedAt time.Time        `yaml:"exported_at" json:"exported_at"`
	Materials  []MaterialRecord `yaml:"materials" json:"materials"`
	Meals      []MealRecord     `yaml:"meals" json:"meals"`
	Plans      []PlanRecord     `yaml:"plans" json:"plans"`
}

type MaterialRecord struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Category        string   `yaml:"category" json:"category"`
	NutritionalInfo []string `yaml:"nutritional_info,omitempty" json:"nutritional_info,omitempty"`
	Available       bool     `yaml:"available" json:"available"`
	Description     string   `yaml:"description,omitempty" json:"description,omitempty"`
	ImageURL        string   `yaml:"image_url,omitempty" json:"image_url,omitempty"`
}

type MealRecord struct {
	ID              string    `yaml:"id" json:"id"`
	Name            string    `yaml:"name" json:"name"`
	Description     string    `yaml:"description,omitempty" json:"description,omitempty"`
	MealType        string    `yaml:"meal_type" json:"meal_type"`
	MaterialIDs     []string  `yaml:"materials" json:"materials"`
	PreparationTime int       `yaml:"preparation_time" json:"preparation_time"`
	Instructions    string    `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	CreatedAt       time.Time `yaml:"created_at" json:"created_at"`
	Calories        *int      `yaml:"calories,omitempty" json:"calories,omitempty"`
	Tags            []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// PlanRecord references meals by ID. Slots maps meal type names to meal IDs
// and omits empty slots.
type PlanRecord struct {
	ID        string            `yaml:"id" json:"id"`
	Date      string            `yaml:"date" json:"date"`
	Slots     map[string]string `yaml:"slots,omitempty" json:"slots,omitempty"`
	CreatedAt time.Time         `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time         `yaml:"updated_at" json:"updated_at"`
	Notes     string            `yaml:"notes,omitempty" json:"notes,omitempty"`
	Completed bool              `yaml:"completed" json:"completed"`
}

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" and "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want yaml or json)", s)
	}
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot tell the format of %s without an extension", path)
	}
	return ParseFormat(ext)
}

// Encode writes doc to w.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Decode reads a document from r.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.SetStrict(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	if doc.Version < 1 || doc.Version > DocumentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	return &doc, nil
}
