package instance

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
)

// Scope identifies which host surface an instance state belongs to. Each
// scope is persisted independently.
type Scope string

const (
	ScopeDialog      Scope = "dialog"
	ScopeToolWindow  Scope = "tool-window"
	ScopeApplication Scope = "application"
)

// Scopes lists every scope.
var Scopes = []Scope{ScopeDialog, ScopeToolWindow, ScopeApplication}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	for _, scope := range Scopes {
		if string(scope) == s {
			return scope, nil
		}
	}
	return "", core.ErrValidation(core.CodeInvalidScope,
		fmt.Sprintf("unknown scope %q (expected dialog, tool-window or application)", s))
}

func (s Scope) String() string { return string(s) }

// InstanceState is the persisted document of one scope. Pointer fields
// distinguish a missing attribute from an empty one.
type InstanceState struct {
	XMLName                   xml.Name             `xml:"InstanceState" json:"-" yaml:"-"`
	Version                   *string              `xml:"version,attr,omitempty" json:"version,omitempty" yaml:"version,omitempty"`
	LastSelectedContentNodeID *string              `xml:"lastSelectedContentNodeId,attr,omitempty" json:"lastSelectedContentNodeId,omitempty" yaml:"lastSelectedContentNodeId,omitempty"`
	Configurations            []ConfigurationState `xml:"developerToolsConfigurations>developerToolConfiguration" json:"developerToolsConfigurations,omitempty" yaml:"developerToolsConfigurations,omitempty"`
	ExpandedGroupNodeIDs      []string             `xml:"expandedGroupNodeId" json:"expandedGroupNodeIds,omitempty" yaml:"expandedGroupNodeIds,omitempty"`
}

// ConfigurationState is one persisted tool configuration.
type ConfigurationState struct {
	DeveloperToolID *string          `xml:"developerToolId,attr,omitempty" json:"developerToolId,omitempty" yaml:"developerToolId,omitempty"`
	ID              *string          `xml:"id,attr,omitempty" json:"id,omitempty" yaml:"id,omitempty"`
	Name            *string          `xml:"name,attr,omitempty" json:"name,omitempty" yaml:"name,omitempty"`
	Properties      *PropertiesState `xml:"properties" json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertiesState wraps the property list so that an empty list and a missing
// one can be told apart.
type PropertiesState struct {
	Properties []PropertyState `xml:"property" json:"property" yaml:"property"`
}

// PropertyState is one persisted property. Value has the form "typeId|value".
type PropertyState struct {
	Key   *string `xml:"key,attr,omitempty" json:"key,omitempty" yaml:"key,omitempty"`
	Value *string `xml:"value,attr,omitempty" json:"value,omitempty" yaml:"value,omitempty"`
	Type  *string `xml:"type,attr,omitempty" json:"type,omitempty" yaml:"type,omitempty"`
}

// Store persists instance states.
type Store interface {
	// Load returns the state of scope, or nil when none was saved.
	Load(ctx context.Context, scope Scope) (*InstanceState, error)
	// Save replaces the state of scope.
	Save(ctx context.Context, scope Scope, state *InstanceState) error
	// Close releases the store.
	Close() error
}
