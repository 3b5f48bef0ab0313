package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hugo-lorenzo-mato/devtools/internal/adapters/state"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
	"github.com/hugo-lorenzo-mato/devtools/internal/migration"
	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
	"github.com/hugo-lorenzo-mato/devtools/internal/tools"
)

// runtime bundles what the state commands need.
type runtime struct {
	store    instance.Store
	registry *proptype.Registry
	catalog  *tools.Catalog
	settings *toolconfig.AtomicSettings
	logger   *logging.Logger
}

func newRuntime() (*runtime, error) {
	registry, err := tools.NewRegistry()
	if err != nil {
		return nil, err
	}
	store, err := state.NewStore(appConfig.State, appLogger)
	if err != nil {
		return nil, err
	}
	return &runtime{
		store:    store,
		registry: registry,
		catalog:  tools.Default(),
		settings: toolconfig.NewAtomicSettings(appConfig.General.Settings()),
		logger:   appLogger,
	}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}

func (r *runtime) newSettings(scope instance.Scope) *instance.Settings {
	return instance.New(
		instance.WithSettings(r.settings),
		instance.WithRegistry(r.registry),
		instance.WithLogger(r.logger.WithScope(scope.String())),
		instance.WithPluginVersion(stateVersion()),
	)
}

// load reads the state of scope into fresh instance settings.
func (r *runtime) load(ctx context.Context, scope instance.Scope) (*instance.Settings, instance.LoadReport, error) {
	doc, err := r.store.Load(ctx, scope)
	if err != nil {
		return nil, instance.LoadReport{}, fmt.Errorf("loading %s state: %w", scope, err)
	}
	s := r.newSettings(scope)
	return s, s.LoadState(doc), nil
}

func (r *runtime) save(ctx context.Context, scope instance.Scope, s *instance.Settings) error {
	if err := r.store.Save(ctx, scope, s.GetState()); err != nil {
		return fmt.Errorf("saving %s state: %w", scope, err)
	}
	return nil
}

// stateVersion is the version stamped on saved documents. Development builds
// have no semantic version and stamp the newest key layout instead.
func stateVersion() string {
	if migration.ParseVersion(appVersion) != nil {
		return appVersion
	}
	return migration.EditorKeyCutover.String()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
