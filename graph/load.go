package graph

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed schema.json
	documentSchemaJSON []byte

	//go:embed node.schema.json
	nodeSchemaJSON []byte
)

var (
	documentSchema = mustSchema("schema.json", documentSchemaJSON)
	nodeSchema     = mustSchema("node.schema.json", nodeSchemaJSON)
)

func mustSchema(name string, data []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("graph: compile %s: %v", name, err))
	}
	return s
}

// Format is the encoding of a graph document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "YAML"
	default:
		return "JSON"
	}
}

// ParseFormat parses a format name ("json", "yaml" or "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, fmt.Errorf("unknown format %q (expected \"json\" or \"yaml\")", s)
	}
}

// FormatForPath infers the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type document struct {
	Nodes []json.RawMessage `json:"nodes"`
}

// Load parses a JSON graph document.
func Load(text string) ([]Node, error) {
	return LoadFormat(text, FormatJSON)
}

// LoadFormat parses a graph document in the given format and returns its
// nodes in document order with their kinds classified. Unknown fields are
// ignored. Only a document without a "nodes" array is rejected; an entry
// with the wrong shape is returned as a KindInvalid node so the rest of the
// document still compiles.
func LoadFormat(text string, format Format) ([]Node, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &EmptyInputError{}
	}

	var doc any
	var err error
	switch format {
	case FormatYAML:
		doc, err = parseYAML(trimmed)
	default:
		doc, err = parseJSON(trimmed)
	}
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so both formats share one validation and
	// decoding path.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &SchemaError{Problems: []string{err.Error()}}
	}
	problems, err := validate(documentSchema, raw)
	if err != nil {
		return nil, &SchemaError{Problems: []string{err.Error()}}
	}
	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &SchemaError{Problems: []string{err.Error()}}
	}
	nodes := make([]Node, 0, len(d.Nodes))
	for i, entry := range d.Nodes {
		nodes = append(nodes, decodeNode(i, entry))
	}
	return nodes, nil
}

// decodeNode decodes entry i of the nodes array.
func decodeNode(i int, entry json.RawMessage) Node {
	problems, err := validate(nodeSchema, entry)
	if err != nil {
		problems = []string{err.Error()}
	}
	if len(problems) > 0 {
		return invalidNode(i, entry, problems)
	}

	var n Node
	if err := json.Unmarshal(entry, &n); err != nil {
		return invalidNode(i, entry, []string{err.Error()})
	}
	n.Kind = Classify(n.Properties)
	return n
}

// invalidNode keeps the entry's id when it is a string so the problem can
// be attributed to it.
func invalidNode(i int, entry json.RawMessage, problems []string) Node {
	n := Node{
		Kind:    KindInvalid,
		Problem: fmt.Sprintf("nodes[%d]: %s", i, strings.Join(problems, "; ")),
	}
	var fields map[string]any
	if json.Unmarshal(entry, &fields) == nil {
		if id, ok := fields["id"].(string); ok {
			n.ID = id
		}
	}
	return n
}

func parseJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, jsonError(text, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		line, col := position(text, int(dec.InputOffset()))
		return nil, &MalformedError{
			Format: FormatJSON,
			Line:   line,
			Column: col,
			Err:    errors.New("unexpected data after top-level value"),
		}
	}
	return doc, nil
}

func jsonError(text string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := position(text, int(syntaxErr.Offset))
		return &MalformedError{Format: FormatJSON, Line: line, Column: col, Err: err}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		line, col := position(text, len(text))
		return &MalformedError{Format: FormatJSON, Line: line, Column: col, Err: err}
	}
	return &MalformedError{Format: FormatJSON, Err: err}
}

// position converts a byte offset into a 1-based line and column.
func position(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndex(before, "\n")
	return line, col
}

func parseYAML(text string) (any, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &MalformedError{Format: FormatYAML, Err: err}
	}
	return normalizeYAML(doc), nil
}

// normalizeYAML converts mappings with non-string keys into string-keyed
// maps so the value can be encoded as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}

// validate returns the schema violations of raw as sorted
// "field: description" entries.
func validate(schema *gojsonschema.Schema, raw []byte) ([]string, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
	}
	sort.Strings(problems)
	return problems, nil
}

// DecodeNodes is a convenience for callers holding raw bytes.
func DecodeNodes(data []byte, format Format) ([]Node, error) {
	return LoadFormat(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), format)
}
