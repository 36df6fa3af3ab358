package models

// SystemType identifies how an external system's API surface is described.
type SystemType string

const (
	SystemTypeOpenAPI SystemType = "openapi"
	SystemTypeCustom  SystemType = "custom"
)

// AuthType discriminates the authentication block of a system descriptor.
type AuthType string

const (
	AuthTypeAPIKey AuthType = "apikey"
	AuthTypeOAuth2 AuthType = "oauth2"
	AuthTypeNone   AuthType = "none"
)

// ExternalSystem describes a third-party system integrated into the platform.
// Descriptors are read-only for the lifetime of a validation or test run.
type ExternalSystem struct {
	Key            string         `json:"key" yaml:"key"`
	DisplayName    string         `json:"displayName" yaml:"displayName"`
	Type           SystemType     `json:"type" yaml:"type"`
	Authentication Authentication `json:"authentication,omitzero" yaml:"authentication,omitempty"`
}

// Authentication holds the auth declaration of a system descriptor.
// Only the fields matching Type are meaningful.
type Authentication struct {
	Type AuthType `json:"type" yaml:"type"`

	// apikey
	HeaderName string `json:"headerName,omitempty" yaml:"headerName,omitempty"`

	// oauth2
	TokenURL string   `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	ClientID string   `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	Scopes   []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}
