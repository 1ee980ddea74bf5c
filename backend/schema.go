package backend

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/file_metadata.schema.json
var fileMetadataSchemaJSON string

//go:embed schema/translation.schema.json
var translationSchemaJSON string

var (
	compileOnce       sync.Once
	metadataSchema    *jsonschema.Schema
	translationSchema *jsonschema.Schema
	compileErr        error
)

func loadSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		resources := map[string]string{
			"file_metadata.schema.json": fileMetadataSchemaJSON,
			"translation.schema.json":   translationSchemaJSON,
		}
		for name, body := range resources {
			if err := compiler.AddResource(name, strings.NewReader(body)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", name, err)
				return
			}
		}

		metadataSchema, compileErr = compiler.Compile("file_metadata.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile metadata schema: %w", compileErr)
			return
		}
		translationSchema, compileErr = compiler.Compile("translation.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile translation schema: %w", compileErr)
		}
	})
	return compileErr
}

// validatePayload checks body against the schema selected by pick.
func validatePayload(body []byte, pick func() *jsonschema.Schema) error {
	value, err := decodeJSONValue(body)
	if err != nil {
		return fmt.Errorf("decode payload JSON: %w", err)
	}
	if err := loadSchemas(); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if err := pick().Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func validateMetadataPayload(body []byte) error {
	return validatePayload(body, func() *jsonschema.Schema { return metadataSchema })
}

func validateTranslationPayload(body []byte) error {
	return validatePayload(body, func() *jsonschema.Schema { return translationSchema })
}

func decodeJSONValue(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing data")
	}
	return value, nil
}
