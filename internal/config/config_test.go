package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/direct"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/testutil"
)

const regionsYAML = `
name: regions
database: geo
layout: direct
structure:
  id: {name: id}
  attributes:
    - {name: parent, type: UInt64, null_value: 0, hierarchical: true}
    - {name: name, type: String, null_value: unknown, injective: true}
source:
  memory:
    block_size: 2
    rows:
      - [1, 0, world]
      - [2, 1, europe]
      - [3, 2, ~]
`

const regionsCUE = `
name:     "regions"
database: "geo"
layout:   "direct"
structure: {
	id: name: "id"
	attributes: [
		{name: "parent", type: "UInt64", hierarchical: true},
		{name: "name", type: "String", null_value: "unknown"},
	]
}
source: memory: {
	block_size: 2
	rows: [[1, 0, "world"], [2, 1, "europe"]]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.cue", FormatCUE, false},
		{"a.json", "", true},
		{"a", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "regions.yaml", regionsYAML)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "regions", f.Name)
	assert.Equal(t, "geo", f.Database)
	assert.Equal(t, "direct", f.Layout)
	assert.Equal(t, path, f.Path)
	require.NotNil(t, f.Structure.ID)
	assert.Equal(t, "id", f.Structure.ID.Name)
	require.Len(t, f.Structure.Attributes, 2)
	assert.True(t, f.Structure.Attributes[0].Hierarchical)
	assert.Equal(t, "unknown", f.Structure.Attributes[1].NullValue)
	assert.Equal(t, []string{SourceMemory}, f.Source.Kinds())
	assert.Len(t, f.Source.Memory.Rows, 3)
}

func TestParse_YAML_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nlayout: direct\nlayuot: direct\n"), "x.yaml", FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read definition")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	f := &File{
		UUID: "not-a-uuid",
		Structure: StructureSpec{
			Key:        []ColumnSpec{{Name: "region"}},
			Attributes: []AttributeSpec{{Name: "v", Type: "Decimal"}},
		},
		Source: SourceSpec{
			Memory: &MemorySpec{},
			Bolt:   &BoltSpec{Path: "x", Bucket: "y"},
		},
	}

	errs := f.Validate()
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Equal(t, []string{
		ErrMissingField, // name
		ErrMissingField, // layout
		ErrInvalidUUID,
		ErrMissingField, // key type
		ErrUnknownType,
		ErrSourceCount,
	}, codes)
	assert.Contains(t, errs.Error(), "[E203] source: exactly one source is required")
}

func TestValidate_Sources(t *testing.T) {
	tests := []struct {
		name   string
		source SourceSpec
		fields []string
	}{
		{"sqlite", SourceSpec{SQLite: &SQLSpec{}}, []string{"source.sqlite.path", "source.sqlite.table"}},
		{"postgres", SourceSpec{Postgres: &SQLSpec{Table: "t"}}, []string{"source.postgres.dsn"}},
		{"mysql", SourceSpec{MySQL: &SQLSpec{DSN: "dsn"}}, []string{"source.mysql.table"}},
		{"bolt", SourceSpec{Bolt: &BoltSpec{Path: "p"}}, []string{"source.bolt.bucket"}},
		{"memory", SourceSpec{Memory: &MemorySpec{Rows: [][]any{{1, 2}, {1}}}}, []string{"source.memory.rows[1]"}},
		{"none", SourceSpec{}, []string{"source"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{
				Name:   "d",
				Layout: direct.LayoutDirect,
				Structure: StructureSpec{
					ID:         &ColumnSpec{Name: "id"},
					Attributes: []AttributeSpec{{Name: "v", Type: "UInt64"}},
				},
				Source: tt.source,
			}
			var fields []string
			for _, e := range f.Validate() {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestCompile(t *testing.T) {
	f, err := Parse([]byte(regionsYAML), "regions.yaml", FormatYAML)
	require.NoError(t, err)

	def, err := f.Compile(testutil.NewFixedIDGenerator(testutil.DefaultUUID))
	require.NoError(t, err)

	assert.Equal(t, "geo.regions", def.ID.FullName())
	assert.Equal(t, testutil.DefaultUUID, def.ID.UUID)
	assert.Equal(t, direct.LayoutDirect, def.Layout)
	assert.Nil(t, def.Lifetime)

	s := def.Structure
	assert.Equal(t, field.TypeUInt64, s.ID.Type)
	assert.Equal(t, field.String("unknown"), s.Attributes[1].NullValue)
	assert.Equal(t, field.UInt64(0), s.Attributes[0].NullValue)
	assert.True(t, s.Attributes[1].Injective)
}

func TestCompile_KeepsConfiguredUUID(t *testing.T) {
	f, err := Parse([]byte(regionsYAML+"uuid: 0190a6f1-7c3e-7d2a-9b1e-5f8c2a4d6e10\n"), "regions.yaml", FormatYAML)
	require.NoError(t, err)

	def, err := f.Compile(testutil.NewFixedIDGenerator(testutil.DefaultUUID))
	require.NoError(t, err)
	assert.Equal(t, "0190a6f1-7c3e-7d2a-9b1e-5f8c2a4d6e10", def.ID.UUID.String())
}

func TestCompile_NormalizesAttributeNames(t *testing.T) {
	f := &File{
		Name:   "d",
		Layout: direct.LayoutDirect,
		Structure: StructureSpec{
			ID:         &ColumnSpec{Name: "id"},
			Attributes: []AttributeSpec{{Name: "cafe\u0301", Type: "String"}},
		},
		Source: SourceSpec{Memory: &MemorySpec{}},
	}

	def, err := f.Compile(nil)
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", def.Structure.Attributes[0].Name)
	assert.NotEqual(t, uuid.Nil, def.ID.UUID)
}

func TestCompile_Lifetime(t *testing.T) {
	f, err := Parse([]byte(regionsYAML+"lifetime: {min: 0, max: 0}\n"), "regions.yaml", FormatYAML)
	require.NoError(t, err)

	def, err := f.Compile(nil)
	require.NoError(t, err)
	require.NotNil(t, def.Lifetime)
	assert.True(t, def.Lifetime.IsZero())
}

func TestCompile_StructureErrors(t *testing.T) {
	tests := []struct {
		name      string
		structure StructureSpec
		code      dicterr.Code
	}{
		{
			"id and key",
			StructureSpec{ID: &ColumnSpec{Name: "id"}, Key: []ColumnSpec{{Name: "k", Type: "String"}}},
			dicterr.BadArguments,
		},
		{
			"non UInt64 id",
			StructureSpec{ID: &ColumnSpec{Name: "id", Type: "Int32"}},
			dicterr.TypeMismatch,
		},
		{
			"bad null value",
			StructureSpec{
				ID:         &ColumnSpec{Name: "id"},
				Attributes: []AttributeSpec{{Name: "v", Type: "UInt8", NullValue: 300}},
			},
			dicterr.TypeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{Name: "d", Layout: "direct", Structure: tt.structure, Source: SourceSpec{Memory: &MemorySpec{}}}
			_, err := f.Compile(nil)
			require.Error(t, err)
			assert.True(t, dicterr.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestCompile_ReturnsValidationErrors(t *testing.T) {
	_, err := (&File{}).Compile(nil)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.NotEmpty(t, errs)
}
