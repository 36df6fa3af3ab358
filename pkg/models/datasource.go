package models

// Datasource describes one entity or resource type exposed by an external
// system, together with the rules for extracting normalized fields from its
// raw payloads. The SystemKey must reference the key of a loaded
// ExternalSystem.
type Datasource struct {
	Key            string         `json:"key" yaml:"key"`
	SystemKey      string         `json:"systemKey" yaml:"systemKey"`
	EntityKey      string         `json:"entityKey" yaml:"entityKey"`
	ResourceType   string         `json:"resourceType" yaml:"resourceType"`
	FieldMappings  FieldMappings  `json:"fieldMappings" yaml:"fieldMappings"`
	MetadataSchema map[string]any `json:"metadataSchema,omitempty" yaml:"metadataSchema,omitempty"`
	TestPayload    *TestPayload   `json:"testPayload,omitempty" yaml:"testPayload,omitempty"`
}

// FieldMappings groups the mapping declaration of a datasource.
type FieldMappings struct {
	AccessFields []string                `json:"accessFields,omitempty" yaml:"accessFields,omitempty"`
	Fields       map[string]FieldMapping `json:"fields" yaml:"fields"`
}

// FieldMapping declares how one normalized field is extracted from a raw
// payload. Expression follows the "{{path}} | transform | ..." grammar.
type FieldMapping struct {
	Expression string `json:"expression" yaml:"expression"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
}

// TestPayload carries a sample raw payload for exercising a datasource's
// mappings, and optionally the normalized result the mappings should produce.
type TestPayload struct {
	PayloadTemplate map[string]any `json:"payloadTemplate,omitempty" yaml:"payloadTemplate,omitempty"`
	ExpectedResult  map[string]any `json:"expectedResult,omitempty" yaml:"expectedResult,omitempty"`
}
