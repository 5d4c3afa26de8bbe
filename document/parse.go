package document

import (
	"bytes"
	"fmt"

	"github.com/dgryski/go-farm"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Parse renders the document and parses it back into a gqlparser query
// document, the artifact handed to transports that want an AST.
func (d *Document) Parse() (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: d.Name, Input: d.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", d.Name, err)
	}
	return doc, nil
}

// Format returns the document pretty-printed by the gqlparser formatter.
func (d *Document) Format() (string, error) {
	doc, err := d.Parse()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String(), nil
}

// Validate checks the document against schema with the gqlparser validator.
func (d *Document) Validate(schema *ast.Schema) error {
	_, errs := gqlparser.LoadQuery(schema, d.String())
	if len(errs) > 0 {
		return fmt.Errorf("document %s is invalid: %w", d.Name, errs)
	}
	return nil
}

// Fingerprint is a stable hash of the rendered document. Documents with the
// same fingerprint are interchangeable for dedup.
func (d *Document) Fingerprint() uint64 {
	return farm.Fingerprint64([]byte(d.String()))
}
