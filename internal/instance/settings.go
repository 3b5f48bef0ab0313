// Package instance keeps every tool configuration of one scope and converts
// them to and from the persisted InstanceState document.
package instance

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
	"github.com/hugo-lorenzo-mato/devtools/internal/migration"
	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
)

// DefaultConfigurationName is the name given to new configurations.
const DefaultConfigurationName = "Default"

// Settings holds the configurations of one scope, grouped by tool id.
type Settings struct {
	mu                        sync.RWMutex
	configurations            map[string][]*toolconfig.Configuration
	lastSelectedContentNodeID *string
	expandedGroupNodeIDs      []string

	settings      toolconfig.Settings
	registry      *proptype.Registry
	logger        *logging.Logger
	pluginVersion string
	rules         []migration.Rule
}

// Option configures Settings.
type Option func(*Settings)

// WithSettings sets the persistence toggles.
func WithSettings(s toolconfig.Settings) Option {
	return func(is *Settings) {
		is.settings = s
	}
}

// WithRegistry sets the property type registry.
func WithRegistry(r *proptype.Registry) Option {
	return func(is *Settings) {
		is.registry = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(is *Settings) {
		is.logger = l
	}
}

// WithPluginVersion sets the version stamped on saved states.
func WithPluginVersion(v string) Option {
	return func(is *Settings) {
		is.pluginVersion = v
	}
}

// WithMigrationRules replaces the key migration rules. Defaults to
// migration.DefaultRules().
func WithMigrationRules(rules ...migration.Rule) Option {
	return func(is *Settings) {
		is.rules = rules
	}
}

// New creates empty instance settings.
func New(opts ...Option) *Settings {
	s := &Settings{
		configurations: make(map[string][]*toolconfig.Configuration),
		settings:       toolconfig.DefaultSettings(),
		registry:       proptype.Default(),
		rules:          migration.DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// GetDeveloperToolConfigurations returns a snapshot of the configurations of
// toolID. The slice is not affected by later mutations.
func (s *Settings) GetDeveloperToolConfigurations(toolID string) []*toolconfig.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.configurations[toolID])
}

// CreateDeveloperToolConfiguration appends a fresh configuration to toolID.
func (s *Settings) CreateDeveloperToolConfiguration(toolID string) *toolconfig.Configuration {
	c := s.newConfiguration(toolID, DefaultConfigurationName, uuid.New(), nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Copy on write so that snapshots handed out earlier stay intact.
	s.configurations[toolID] = append(slices.Clone(s.configurations[toolID]), c)
	return c
}

// RemoveDeveloperToolConfiguration removes c from toolID. It does nothing
// when c is not present.
func (s *Settings) RemoveDeveloperToolConfiguration(toolID string, c *toolconfig.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.configurations[toolID]
	i := slices.Index(current, c)
	if i < 0 {
		return
	}
	next := slices.Delete(slices.Clone(current), i, i+1)
	if len(next) == 0 {
		delete(s.configurations, toolID)
		return
	}
	s.configurations[toolID] = next
}

// ToolIDs returns the tool ids that have configurations, sorted.
func (s *Settings) ToolIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := lo.Keys(s.configurations)
	slices.Sort(ids)
	return ids
}

// LastSelectedContentNodeID returns the node selected when the state was saved.
func (s *Settings) LastSelectedContentNodeID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSelectedContentNodeID == nil {
		return "", false
	}
	return *s.lastSelectedContentNodeID, true
}

// SetLastSelectedContentNodeID records the selected node.
func (s *Settings) SetLastSelectedContentNodeID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSelectedContentNodeID = lo.ToPtr(id)
}

// ExpandedGroupNodeIDs returns the expanded group nodes.
func (s *Settings) ExpandedGroupNodeIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expandedGroupNodeIDs)
}

// SetExpandedGroupNodeIDs records the expanded group nodes.
func (s *Settings) SetExpandedGroupNodeIDs(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expandedGroupNodeIDs = slices.Clone(ids)
}

// GetState builds the document to persist.
//
// A configuration that no tool consumed this session is written back with
// its staged values unchanged. Otherwise only properties whose value differs
// from both default and example, and whose category is saved, are written.
// Configurations without any property are left out.
func (s *Settings) GetState() *InstanceState {
	s.mu.RLock()
	toolIDs := lo.Keys(s.configurations)
	slices.Sort(toolIDs)
	configurations := make(map[string][]*toolconfig.Configuration, len(toolIDs))
	for _, toolID := range toolIDs {
		configurations[toolID] = s.configurations[toolID]
	}
	state := &InstanceState{
		LastSelectedContentNodeID: s.lastSelectedContentNodeID,
		ExpandedGroupNodeIDs:      slices.Clone(s.expandedGroupNodeIDs),
	}
	s.mu.RUnlock()

	if s.pluginVersion != "" {
		state.Version = lo.ToPtr(s.pluginVersion)
	}

	for _, toolID := range toolIDs {
		for _, c := range configurations[toolID] {
			properties := s.propertiesToPersist(toolID, c)
			if len(properties) == 0 {
				continue
			}
			state.Configurations = append(state.Configurations, ConfigurationState{
				DeveloperToolID: lo.ToPtr(toolID),
				ID:              lo.ToPtr(c.ID().String()),
				Name:            lo.ToPtr(c.Name()),
				Properties:      &PropertiesState{Properties: properties},
			})
		}
	}
	return state
}

func (s *Settings) propertiesToPersist(toolID string, c *toolconfig.Configuration) []PropertyState {
	var source []toolconfig.PersistentProperty
	if !c.WasConsumedByDeveloperTool() {
		source = c.PersistentProperties()
	} else {
		for _, p := range c.Properties() {
			if !p.ValueWasChanged() || !s.settings.ShouldSave(p.Type()) {
				continue
			}
			source = append(source, toolconfig.PersistentProperty{Key: p.Key(), Value: p.AnyValue(), Type: p.Type()})
		}
	}

	result := make([]PropertyState, 0, len(source))
	for _, p := range source {
		value, err := s.registry.Serialize(p.Value)
		if err != nil {
			s.logger.Warn("skipping unserializable property",
				"tool", toolID, "configuration", c.ID().String(), "key", p.Key, "error", err)
			continue
		}
		result = append(result, PropertyState{
			Key:   lo.ToPtr(p.Key),
			Value: lo.ToPtr(value),
			Type:  lo.ToPtr(p.Type.String()),
		})
	}
	return result
}

// LoadReport summarizes a LoadState call.
type LoadReport struct {
	Configurations int
	Properties     int
	// Issues holds one error per dropped configuration or property.
	Issues []error
}

// LoadState replaces all configurations with those in state.
//
// Keys are migrated before anything else. Entries that are incomplete,
// cannot be decoded, or belong to a category that is not saved are dropped
// individually; loading continues with the rest.
func (s *Settings) LoadState(state *InstanceState) LoadReport {
	var report LoadReport
	if state == nil {
		state = &InstanceState{}
	}
	version := migration.ParseVersion(lo.FromPtr(state.Version))

	configurations := make(map[string][]*toolconfig.Configuration)
	for i, cs := range state.Configurations {
		c, toolID, err := s.loadConfiguration(cs, version, &report)
		if err != nil {
			s.logger.Warn("dropping persisted configuration", "index", i, "error", err)
			report.Issues = append(report.Issues, err)
			continue
		}
		configurations[toolID] = append(configurations[toolID], c)
		report.Configurations++
	}

	s.mu.Lock()
	s.configurations = configurations
	s.lastSelectedContentNodeID = state.LastSelectedContentNodeID
	s.expandedGroupNodeIDs = slices.Clone(state.ExpandedGroupNodeIDs)
	s.mu.Unlock()

	s.logger.Debug("instance state loaded",
		"configurations", report.Configurations, "properties", report.Properties, "issues", len(report.Issues))
	return report
}

func (s *Settings) loadConfiguration(cs ConfigurationState, version *semver.Version, report *LoadReport) (*toolconfig.Configuration, string, error) {
	if cs.DeveloperToolID == nil || cs.ID == nil || cs.Name == nil || cs.Properties == nil {
		return nil, "", core.ErrStructure(core.CodeMissingAttribute,
			"configuration requires developerToolId, id, name and properties")
	}
	toolID := *cs.DeveloperToolID
	id, err := uuid.Parse(*cs.ID)
	if err != nil {
		return nil, "", core.ErrStructure(core.CodeInvalidID,
			fmt.Sprintf("configuration of %s has invalid id %q", toolID, *cs.ID)).WithCause(err)
	}

	var persistent []toolconfig.PersistentProperty
	for _, ps := range cs.Properties.Properties {
		p, keep, err := s.loadProperty(toolID, ps, version)
		if err != nil {
			s.logger.Warn("dropping persisted property",
				"tool", toolID, "configuration", id.String(), "key", lo.FromPtr(ps.Key), "error", err)
			report.Issues = append(report.Issues, err)
			continue
		}
		if !keep {
			continue
		}
		persistent = append(persistent, p)
		report.Properties++
	}

	return s.newConfiguration(toolID, *cs.Name, id, persistent), toolID, nil
}

// loadProperty decodes one property. keep is false for properties of a
// category that is not saved.
func (s *Settings) loadProperty(toolID string, ps PropertyState, version *semver.Version) (toolconfig.PersistentProperty, bool, error) {
	if ps.Key == nil || ps.Value == nil || ps.Type == nil {
		return toolconfig.PersistentProperty{}, false, core.ErrData(core.CodeMissingAttribute,
			"property requires key, value and type")
	}
	typ, err := toolconfig.ParsePropertyType(*ps.Type)
	if err != nil {
		return toolconfig.PersistentProperty{}, false, err
	}
	if !s.settings.ShouldSave(typ) {
		return toolconfig.PersistentProperty{}, false, nil
	}

	key := migration.Apply(s.rules, toolID, *ps.Key, version)
	value, err := s.registry.Deserialize(*ps.Value)
	if err != nil {
		return toolconfig.PersistentProperty{}, false, fmt.Errorf("property %s: %w", key, err)
	}
	return toolconfig.PersistentProperty{Key: key, Value: value, Type: typ}, true, nil
}

func (s *Settings) newConfiguration(toolID, name string, id uuid.UUID, persistent []toolconfig.PersistentProperty) *toolconfig.Configuration {
	return toolconfig.New(name, id, persistent,
		toolconfig.WithSettings(s.settings),
		toolconfig.WithRegistry(s.registry),
		toolconfig.WithLogger(s.logger.WithTool(toolID)),
	)
}
