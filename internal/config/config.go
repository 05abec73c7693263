package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a decoded definition file. YAML and CUE decode into the same shape.
type File struct {
	Name      string        `yaml:"name" json:"name"`
	Database  string        `yaml:"database" json:"database,omitempty"`
	UUID      string        `yaml:"uuid" json:"uuid,omitempty"`
	Layout    string        `yaml:"layout" json:"layout"`
	Lifetime  *LifetimeSpec `yaml:"lifetime" json:"lifetime,omitempty"`
	Structure StructureSpec `yaml:"structure" json:"structure"`
	Source    SourceSpec    `yaml:"source" json:"source"`

	// Path is the file the definition was read from. Relative source paths
	// resolve against its directory. Empty for definitions parsed from memory.
	Path string `yaml:"-" json:"-"`
}

// LifetimeSpec is the reload interval in seconds.
type LifetimeSpec struct {
	Min uint64 `yaml:"min" json:"min"`
	Max uint64 `yaml:"max" json:"max"`
}

// StructureSpec declares the key and attribute columns.
type StructureSpec struct {
	ID         *ColumnSpec     `yaml:"id" json:"id,omitempty"`
	Key        []ColumnSpec    `yaml:"key" json:"key,omitempty"`
	RangeMin   *ColumnSpec     `yaml:"range_min" json:"range_min,omitempty"`
	RangeMax   *ColumnSpec     `yaml:"range_max" json:"range_max,omitempty"`
	Attributes []AttributeSpec `yaml:"attributes" json:"attributes"`
}

// ColumnSpec is a key column. Type defaults to UInt64 for the id column.
type ColumnSpec struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type,omitempty"`
}

// AttributeSpec is an attribute column.
type AttributeSpec struct {
	Name         string `yaml:"name" json:"name"`
	Type         string `yaml:"type" json:"type"`
	NullValue    any    `yaml:"null_value" json:"null_value,omitempty"`
	Hierarchical bool   `yaml:"hierarchical" json:"hierarchical,omitempty"`
	Injective    bool   `yaml:"injective" json:"injective,omitempty"`
}

// SourceSpec configures exactly one source.
type SourceSpec struct {
	SQLite   *SQLSpec    `yaml:"sqlite" json:"sqlite,omitempty"`
	Postgres *SQLSpec    `yaml:"postgres" json:"postgres,omitempty"`
	MySQL    *SQLSpec    `yaml:"mysql" json:"mysql,omitempty"`
	Bolt     *BoltSpec   `yaml:"bolt" json:"bolt,omitempty"`
	Memory   *MemorySpec `yaml:"memory" json:"memory,omitempty"`
}

// SQLSpec configures a SQL table source. SQLite uses Path; PostgreSQL and
// MySQL use DSN.
type SQLSpec struct {
	Path      string `yaml:"path" json:"path,omitempty"`
	DSN       string `yaml:"dsn" json:"dsn,omitempty"`
	Table     string `yaml:"table" json:"table"`
	Where     string `yaml:"where" json:"where,omitempty"`
	BlockSize int    `yaml:"block_size" json:"block_size,omitempty"`
	MaxParams int    `yaml:"max_params" json:"max_params,omitempty"`
}

// BoltSpec configures a bbolt bucket source.
type BoltSpec struct {
	Path      string `yaml:"path" json:"path"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	BlockSize int    `yaml:"block_size" json:"block_size,omitempty"`
}

// MemorySpec configures an in-memory source. Each row lists the key columns
// followed by the attributes in declaration order.
type MemorySpec struct {
	BlockSize int     `yaml:"block_size" json:"block_size,omitempty"`
	Rows      [][]any `yaml:"rows" json:"rows"`
}

// Source kinds, as they appear under "source".
const (
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceMySQL    = "mysql"
	SourceBolt     = "bolt"
	SourceMemory   = "memory"
)

// Kinds returns the configured source kinds in a fixed order.
func (s SourceSpec) Kinds() []string {
	var kinds []string
	if s.SQLite != nil {
		kinds = append(kinds, SourceSQLite)
	}
	if s.Postgres != nil {
		kinds = append(kinds, SourcePostgres)
	}
	if s.MySQL != nil {
		kinds = append(kinds, SourceMySQL)
	}
	if s.Bolt != nil {
		kinds = append(kinds, SourceBolt)
	}
	if s.Memory != nil {
		kinds = append(kinds, SourceMemory)
	}
	return kinds
}

// Format is a definition file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported definition file %q: expected .yaml, .yml or .cue", path)
	}
}

// Load reads and parses a definition file.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	f, err := Parse(data, path, format)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// Parse decodes a definition. filename is used in error positions only.
func Parse(data []byte, filename string, format Format) (*File, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatCUE:
		return decodeCUE(data, filename)
	default:
		return nil, fmt.Errorf("unknown definition format %q", format)
	}
}

// baseDir is the directory relative source paths resolve against.
func (f *File) baseDir() string {
	if f.Path == "" {
		return "."
	}
	return filepath.Dir(f.Path)
}

func (f *File) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.baseDir(), path)
}
