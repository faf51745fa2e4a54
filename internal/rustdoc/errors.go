package rustdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaError reports a JSON sub-document that matches no known shape.
// It is fatal for the whole document.
type SchemaError struct {
	ID    ID     // item being decoded, when known
	Shape string // shape that failed, e.g. "borrowed_ref" or "item"
	JSON  string // offending sub-document, pretty-printed
	Err   error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("rustdoc: ")
	if e.ID != "" {
		fmt.Fprintf(&b, "item %s: ", e.ID)
	}
	fmt.Fprintf(&b, "unrecognized %s shape", e.Shape)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.JSON != "" {
		b.WriteString("\n")
		b.WriteString(e.JSON)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaError(shape string, raw json.RawMessage, err error) *SchemaError {
	return &SchemaError{Shape: shape, JSON: prettyJSON(raw), Err: err}
}

func missingField(shape string, raw json.RawMessage, field string) *SchemaError {
	return schemaError(shape, raw, fmt.Errorf("missing field %q", field))
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
