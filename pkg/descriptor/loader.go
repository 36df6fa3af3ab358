// Package descriptor parses integration descriptor documents into their model
// types. Path resolution and file discovery belong to the caller; this package
// only deals with already-read descriptor bytes, keeping the originating path
// alongside each descriptor for error reporting.
package descriptor

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aifabrix/connector-engine/pkg/models"
)

// SystemFile pairs a parsed system descriptor with its originating path.
type SystemFile struct {
	Path   string
	System *models.ExternalSystem
}

// DatasourceFile pairs a parsed datasource descriptor with its originating path.
type DatasourceFile struct {
	Path       string
	Datasource *models.Datasource
}

// ParseSystem decodes a system descriptor. Descriptors may be authored as
// YAML or JSON; YAML is a superset, so one decoder covers both.
func ParseSystem(data []byte) (*models.ExternalSystem, error) {
	var sys models.ExternalSystem
	if err := yaml.Unmarshal(data, &sys); err != nil {
		return nil, fmt.Errorf("parse system descriptor: %w", err)
	}
	return &sys, nil
}

// ParseDatasource decodes a datasource descriptor.
func ParseDatasource(data []byte) (*models.Datasource, error) {
	var ds models.Datasource
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse datasource descriptor: %w", err)
	}
	return &ds, nil
}

// ParsePayload decodes a standalone payload document, such as an explicit
// payload override for integration tests.
func ParsePayload(data []byte) (map[string]any, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return payload, nil
}
