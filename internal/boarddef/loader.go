// Package boarddef loads board definitions from YAML files. Documents are
// checked against an embedded JSON schema before they are decoded, then run
// through the static board checks.
package boarddef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

//go:embed board.schema.json
var schemaJSON string

const schemaURL = "https://propboard.local/schemas/board.schema.json"

// ErrInvalidDefinition is wrapped by every schema or decode failure
var ErrInvalidDefinition = errors.New("invalid board definition")

// SchemaError lists every schema violation found in one document
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDefinition, strings.Join(e.Problems, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidDefinition
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("board schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("board schema compile failed: %w", err)
	}
	return compiled, nil
})

// Definition is one loaded file
type Definition struct {
	Path   string              `json:"path"`
	Board  *models.BoardConfig `json:"board"`
	Issues []workflow.Issue    `json:"issues,omitempty"`
}

// Valid reports whether the definition has no error-level issues
func (d *Definition) Valid() bool {
	return !workflow.HasErrors(d.Issues)
}

// IsDefinitionFile reports whether path looks like a board definition
func IsDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Parse validates a YAML document against the board schema and decodes it
func Parse(data []byte) (*models.BoardConfig, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	// the schema validator wants plain JSON values
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &SchemaError{Problems: leafProblems(verr)}
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	var board models.BoardConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&board); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &board, nil
}

func leafProblems(e *jsonschema.ValidationError) []string {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, e.Message)}
	}
	var out []string
	for _, cause := range e.Causes {
		out = append(out, leafProblems(cause)...)
	}
	return out
}

// LoadFile reads and parses one definition. Static issues are attached to
// the result rather than returned as an error.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseFile(path, data)
}

func parseFile(path string, data []byte) (*Definition, error) {
	board, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Definition{
		Path:   path,
		Board:  board,
		Issues: workflow.ValidateBoard(board),
	}, nil
}

// LoadDir loads every definition file directly inside dir, in name order.
// Files that fail to parse are reported in the joined error; the rest are
// still returned.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsDefinitionFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(paths)

	var (
		defs []*Definition
		errs []error
	)
	for _, path := range paths {
		def, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

// Encode writes the board as a definition document
func Encode(w io.Writer, board *models.BoardConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(board); err != nil {
		return err
	}
	return enc.Close()
}
