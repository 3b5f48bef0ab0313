package toolconfig

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/lifecycle"
	"github.com/hugo-lorenzo-mato/devtools/internal/observable"
)

func newTestConfiguration(t *testing.T, settings Settings, persistent ...PersistentProperty) *Configuration {
	t.Helper()
	return New("Default", uuid.New(), persistent, WithSettings(settings))
}

func TestRegister_NewPropertyInitialValue(t *testing.T) {
	tests := []struct {
		name       string
		settings   StaticSettings
		persistent []PersistentProperty
		example    bool
		want       string
	}{
		{name: "default", settings: StaticSettings{SaveConfigurations: true}, want: "def"},
		{name: "example when loading examples", settings: StaticSettings{LoadExamples: true}, example: true, want: "ex"},
		{name: "default when examples disabled", settings: StaticSettings{}, example: true, want: "def"},
		{
			name:       "persisted value wins",
			settings:   StaticSettings{LoadExamples: true},
			persistent: []PersistentProperty{{Key: "k", Value: "stored", Type: TypeInput}},
			example:    true,
			want:       "stored",
		},
		{
			name:       "persisted value of another type is ignored",
			settings:   StaticSettings{},
			persistent: []PersistentProperty{{Key: "k", Value: int32(7), Type: TypeInput}},
			want:       "def",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConfiguration(t, tt.settings, tt.persistent...)
			opts := []RegisterOption[string]{WithType[string](TypeInput)}
			if tt.example {
				opts = append(opts, WithExample("ex"))
			}

			p, err := Register(c, "k", "def", opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Get())
			assert.True(t, c.WasConsumedByDeveloperTool())
		})
	}
}

func TestRegister_Idempotent(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings())

	first := MustRegister(c, "k", "a")
	first.Set("changed")

	second, err := Register(c, "k", "b")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "changed", second.Get())
	assert.Len(t, c.Properties(), 1)
}

func TestRegister_ResetOnReuseWhenCategoryNotSaved(t *testing.T) {
	c := newTestConfiguration(t, StaticSettings{SaveConfigurations: true, LoadExamples: true})

	secret := MustRegister(c, "secret", "", WithType[string](TypeSensitive), WithExample("sample"))
	secret.Set("hunter2")
	again := MustRegister(c, "secret", "", WithType[string](TypeSensitive), WithExample("sample"))
	assert.Equal(t, "sample", again.Get())

	mode := MustRegister(c, "mode", "a")
	mode.Set("b")
	assert.Equal(t, "b", MustRegister(c, "mode", "a").Get())
}

func TestRegister_TypeMismatch(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings())
	MustRegister(c, "k", "text")

	_, err := Register(c, "k", int32(1))
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatProgramming))

	assert.Panics(t, func() { MustRegister(c, "k", int64(1)) })
}

func TestRegister_UnsupportedType(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings())

	_, err := Register(c, "k", struct{ X int }{})
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatProgramming))
	_, ok := c.Property("k")
	assert.False(t, ok)
	assert.False(t, c.WasConsumedByDeveloperTool(), "failed registration must not mark the configuration consumed")

	MustRegister(c, "k", "text")
	assert.True(t, c.WasConsumedByDeveloperTool())
}

func TestConfiguration_ChangeListener(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings())
	p := MustRegister(c, "k", "a")

	var keys []string
	c.AddChangeListener(nil, func(changed AnyProperty) {
		keys = append(keys, changed.Key())
	})

	p.Set("a")
	assert.Empty(t, keys, "equal write must not notify")

	p.Set("b")
	p.Set("b")
	p.Set("c")
	assert.Equal(t, []string{"k", "k"}, keys)
}

func TestConfiguration_ListenerRemovedWithScope(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings())
	p := MustRegister(c, "k", "a")
	scope := lifecycle.NewScope()

	changes, resets := 0, 0
	c.AddChangeListener(scope, func(AnyProperty) { changes++ })
	c.AddResetListener(scope, func() { resets++ })

	p.Set("b")
	c.Reset()
	assert.Equal(t, 2, changes)
	assert.Equal(t, 1, resets)

	scope.Dispose()
	p.Set("c")
	c.Reset()
	assert.Equal(t, 2, changes)
	assert.Equal(t, 1, resets)
	assert.Zero(t, c.onChange.len())
	assert.Zero(t, c.onReset.len())
}

func TestConfiguration_RemoveListener(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings())
	p := MustRegister(c, "k", "a")

	calls := 0
	sub := c.AddChangeListener(nil, func(AnyProperty) { calls++ })
	c.RemoveChangeListener(sub)
	c.RemoveChangeListener(sub)

	p.Set("b")
	assert.Zero(t, calls)
}

func TestConfiguration_Reset(t *testing.T) {
	c := newTestConfiguration(t, StaticSettings{SaveConfigurations: true, SaveInputs: true, LoadExamples: true})
	withExample := MustRegister(c, "input", "", WithType[string](TypeInput), WithExample("sample"))
	plain := MustRegister(c, "count", int32(3))

	withExample.Set("typed")
	plain.Set(10)

	var resettingDuringChange []bool
	c.AddChangeListener(nil, func(AnyProperty) {
		resettingDuringChange = append(resettingDuringChange, c.IsResetting())
	})
	resetsSeen := 0
	c.AddResetListener(nil, func() {
		assert.True(t, c.IsResetting())
		resetsSeen++
	})

	c.Reset(ResetType(TypeInput))
	assert.Equal(t, "sample", withExample.Get())
	assert.Equal(t, int32(10), plain.Get())

	c.Reset(ResetLoadExamples(false))
	assert.Equal(t, "", withExample.Get())
	assert.Equal(t, int32(3), plain.Get())

	assert.Equal(t, []bool{true, true, true}, resettingDuringChange)
	assert.Equal(t, 2, resetsSeen)
	assert.False(t, c.IsResetting())
}

func TestProperty_ValueWasChanged(t *testing.T) {
	c := newTestConfiguration(t, StaticSettings{})

	plain := MustRegister(c, "plain", "def")
	assert.False(t, plain.ValueWasChanged())
	plain.Set("other")
	assert.True(t, plain.ValueWasChanged())

	example := MustRegister(c, "example", "def", WithExample("ex"))
	example.Set("ex")
	assert.False(t, example.ValueWasChanged())
	example.Set("other")
	assert.True(t, example.ValueWasChanged())

	amount := MustRegister(c, "amount", decimal.RequireFromString("1.5"))
	changes := 0
	amount.AddListener(func(observable.Change[decimal.Decimal]) { changes++ })
	amount.Set(decimal.RequireFromString("1.50"))
	assert.False(t, amount.ValueWasChanged())
	assert.Zero(t, changes)
}

func TestConfiguration_Snapshot(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings(),
		PersistentProperty{Key: "stale", Value: "x", Type: TypeConfiguration})
	MustRegister(c, "b", true)
	MustRegister(c, "a", "text", WithType[string](TypeInput))

	snapshot := c.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, PersistentProperty{Key: "b", Value: true, Type: TypeConfiguration}, snapshot[0])
	assert.Equal(t, PersistentProperty{Key: "a", Value: "text", Type: TypeInput}, snapshot[1])
	assert.Len(t, c.PersistentProperties(), 1)
}

func TestNew_DuplicatePersistentKeysKeepLast(t *testing.T) {
	c := newTestConfiguration(t, DefaultSettings(),
		PersistentProperty{Key: "k", Value: "first"},
		PersistentProperty{Key: "k", Value: "second"})

	require.Len(t, c.PersistentProperties(), 1)
	assert.Equal(t, "second", MustRegister(c, "k", "").Get())
}

func TestAtomicSettings(t *testing.T) {
	s := NewAtomicSettings(DefaultSettings())
	c := newTestConfiguration(t, s)
	p := MustRegister(c, "k", "", WithType[string](TypeInput), WithExample("ex"))
	p.Set("typed")

	assert.Equal(t, "typed", MustRegister(c, "k", "", WithType[string](TypeInput), WithExample("ex")).Get())

	next := s.Load()
	next.SaveInputs = false
	s.Store(next)
	assert.Equal(t, "ex", MustRegister(c, "k", "", WithType[string](TypeInput), WithExample("ex")).Get())
}

func TestParsePropertyType(t *testing.T) {
	for _, typ := range PropertyTypes {
		text, err := typ.MarshalText()
		require.NoError(t, err)

		var parsed PropertyType
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, typ, parsed)
	}

	_, err := ParsePropertyType("SECRET")
	assert.True(t, core.IsCategory(err, core.ErrCatData))
}
