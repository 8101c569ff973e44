package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/valter-silva-au/gantt/internal/core"
)

//go:embed schema/snapshot.schema.json
var snapshotSchemaJSON []byte

const snapshotSchemaURL = "snapshot.schema.json"

var (
	schemaOnce     sync.Once
	snapshotSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(snapshotSchemaURL, bytes.NewReader(snapshotSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("loading snapshot schema: %w", err)
			return
		}
		snapshotSchema, schemaErr = compiler.Compile(snapshotSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compiling snapshot schema: %w", schemaErr)
		}
	})
	return snapshotSchema, schemaErr
}

// SnapshotSchema returns the embedded JSON Schema that injected snapshots are
// checked against.
func SnapshotSchema() []byte {
	return append([]byte(nil), snapshotSchemaJSON...)
}

// ValidateJSON checks a JSON document against the snapshot schema. Schema
// violations are reported as a *core.ValidationError naming the offending
// location, e.g. "/tasks/0/progress".
func ValidateJSON(data []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return core.NewValidationError("", fmt.Sprintf("Snapshot is not valid JSON: %v", err))
	}
	return validateDocument(doc)
}

func validateDocument(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return schemaViolation(err)
	}
	return nil
}

// schemaViolation reduces a jsonschema error tree to its first leaf cause.
func schemaViolation(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return core.NewValidationError("", err.Error())
	}
	leaf := firstLeaf(ve)
	field := leaf.InstanceLocation
	if field == "" {
		field = "/"
	}
	return core.NewValidationError(field, fmt.Sprintf("Snapshot %s: %s", field, strings.TrimSpace(leaf.Message)))
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
