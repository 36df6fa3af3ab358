// Package schema validates sample payloads and descriptor documents against
// JSON Schemas. Descriptor shapes are checked against meta-schemas embedded in
// this package; payloads are checked against the metadataSchema a datasource
// declares.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aifabrix/connector-engine/pkg/models"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	systemSchemaPath     = "schemas/system.schema.json"
	datasourceSchemaPath = "schemas/datasource.schema.json"
)

// Checker validates instances against JSON Schemas and renders each violation
// as a JSON-Pointer-qualified error string.
type Checker struct {
	logger           *zap.Logger
	printer          *message.Printer
	systemSchema     *jsonschema.Schema
	datasourceSchema *jsonschema.Schema
}

// NewChecker compiles the embedded descriptor meta-schemas.
func NewChecker(logger *zap.Logger) (*Checker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	systemSchema, err := compileEmbedded(systemSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("compile system descriptor schema: %w", err)
	}
	datasourceSchema, err := compileEmbedded(datasourceSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("compile datasource descriptor schema: %w", err)
	}

	return &Checker{
		logger:           logger.Named("schema"),
		printer:          message.NewPrinter(language.English),
		systemSchema:     systemSchema,
		datasourceSchema: datasourceSchema,
	}, nil
}

func compileEmbedded(path string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(path, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(path)
}

// CheckInstance validates an instance against an inline schema document such
// as a datasource's metadataSchema. Schema compilation problems are reported
// as errors on the outcome rather than aborting the run.
func (c *Checker) CheckInstance(instance any, schemaDoc map[string]any) *models.ValidationOutcome {
	outcome := models.NewValidationOutcome()

	compiled, err := c.compileInline(schemaDoc)
	if err != nil {
		outcome.AddError(fmt.Sprintf("invalid schema: %v", err))
		return outcome
	}

	c.validate(compiled, instance, outcome)
	return outcome
}

// CheckSystemDescriptor validates a system descriptor's shape.
func (c *Checker) CheckSystemDescriptor(sys *models.ExternalSystem) *models.ValidationOutcome {
	outcome := models.NewValidationOutcome()

	instance, err := toJSONValue(sys)
	if err != nil {
		outcome.AddError(fmt.Sprintf("cannot encode system descriptor: %v", err))
		return outcome
	}

	c.validate(c.systemSchema, instance, outcome)
	return outcome
}

// CheckDatasourceDescriptor validates a datasource descriptor's shape and its
// systemKey cross-reference against the loaded system's key.
func (c *Checker) CheckDatasourceDescriptor(ds *models.Datasource, systemKey string) *models.ValidationOutcome {
	outcome := models.NewValidationOutcome()

	instance, err := toJSONValue(ds)
	if err != nil {
		outcome.AddError(fmt.Sprintf("cannot encode datasource descriptor: %v", err))
		return outcome
	}

	c.validate(c.datasourceSchema, instance, outcome)

	if ds.SystemKey != systemKey {
		outcome.AddError(fmt.Sprintf("systemKey mismatch: expected '%s', got '%s'", systemKey, ds.SystemKey))
	}
	return outcome
}

// compileInline compiles a schema document that arrived as decoded JSON/YAML.
// The document is round-tripped through JSON so YAML-native types (ints,
// map[any]any) become the value shapes the compiler expects.
func (c *Checker) compileInline(schemaDoc map[string]any) (*jsonschema.Schema, error) {
	doc, err := toJSONValue(schemaDoc)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("inline.schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("inline.schema.json")
}

func (c *Checker) validate(compiled *jsonschema.Schema, instance any, outcome *models.ValidationOutcome) {
	instance, err := toJSONValue(instance)
	if err != nil {
		outcome.AddError(fmt.Sprintf("cannot encode instance: %v", err))
		return
	}

	err = compiled.Validate(instance)
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		outcome.AddError(err.Error())
		return
	}
	for _, msg := range c.flatten(ve) {
		outcome.AddError(msg)
	}
	c.logger.Debug("Instance failed schema validation", zap.Int("violations", len(outcome.Errors)))
}

// flatten collects the leaf causes of a validation error as
// "<json-pointer>: <message>" strings.
func (c *Checker) flatten(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		pointer := "/" + strings.Join(ve.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", pointer, ve.ErrorKind.LocalizedString(c.printer))}
	}
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, c.flatten(cause)...)
	}
	return msgs
}

// toJSONValue round-trips a value through encoding/json so structs and
// YAML-decoded documents validate as plain JSON values.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}
