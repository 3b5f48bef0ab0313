package tools

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
)

func newRegistry(t *testing.T) *proptype.Registry {
	t.Helper()
	r, err := NewRegistry()
	require.NoError(t, err)
	return r
}

func newConfiguration(t *testing.T, persistent ...toolconfig.PersistentProperty) *toolconfig.Configuration {
	t.Helper()
	return toolconfig.New("Default", uuid.New(), persistent,
		toolconfig.WithRegistry(newRegistry(t)),
		toolconfig.WithSettings(toolconfig.DefaultSettings()),
	)
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	noop := func(*toolconfig.Configuration) error { return nil }

	_, err := NewCatalog(
		Definition{ID: "a", Bind: noop},
		Definition{ID: "a", Bind: noop},
	)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatProgramming))

	_, err = NewCatalog(Definition{ID: "", Bind: noop})
	require.Error(t, err)

	_, err = NewCatalog(Definition{ID: "b"})
	require.Error(t, err)
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	def, ok := c.Lookup("hmac-transformer")
	require.True(t, ok)
	assert.Equal(t, "HMAC", def.Title)
	assert.Equal(t, GroupTransformer, def.Group)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestCatalog_Find(t *testing.T) {
	c := Default()

	assert.Len(t, c.Find(""), len(c.IDs()))

	found := c.Find("jwt")
	require.NotEmpty(t, found)
	assert.Equal(t, "jwt-encoder-decoder", found[0].ID)

	found = c.Find("Barcode")
	require.NotEmpty(t, found)
	assert.Equal(t, "barcode-generator", found[0].ID)

	assert.Empty(t, c.Find("zzzzqqq"))
}

func TestCatalog_ByGroup(t *testing.T) {
	groups := Default().ByGroup()
	ids := make([]string, 0)
	for _, d := range groups[GroupEncoderDecoder] {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []string{"base64-encoder-decoder", "jwt-encoder-decoder"}, ids)
}

func TestBuiltins_BindCleanly(t *testing.T) {
	for _, def := range Default().All() {
		t.Run(def.ID, func(t *testing.T) {
			c := newConfiguration(t)
			require.NoError(t, def.Bind(c))
			assert.True(t, c.WasConsumedByDeveloperTool())
			assert.NotEmpty(t, c.Properties())

			// Binding twice returns the same properties.
			count := len(c.Properties())
			require.NoError(t, def.Bind(c))
			assert.Len(t, c.Properties(), count)
		})
	}
}

func TestBuiltins_PersistentValuesWin(t *testing.T) {
	c := newConfiguration(t,
		toolconfig.PersistentProperty{Key: "algorithm", Value: HmacSHA512, Type: toolconfig.TypeConfiguration},
		toolconfig.PersistentProperty{Key: "source", Value: "stored", Type: toolconfig.TypeInput},
	)
	def, _ := Default().Lookup("hmac-transformer")
	require.NoError(t, def.Bind(c))

	p, ok := c.Property("algorithm")
	require.True(t, ok)
	assert.Equal(t, HmacSHA512, p.AnyValue())

	p, ok = c.Property("source")
	require.True(t, ok)
	assert.Equal(t, "stored", p.AnyValue())

	p, ok = c.Property("secretKey")
	require.True(t, ok)
	assert.Equal(t, toolconfig.TypeSensitive, p.Type())
}

func TestBuiltins_ExerciseEveryKind(t *testing.T) {
	c := newConfiguration(t)
	for _, id := range []string{"data-size-converter", "date-time-converter", "barcode-generator"} {
		def, ok := Default().Lookup(id)
		require.True(t, ok)
		require.NoError(t, def.Bind(c))
	}

	value, _ := c.Property("value")
	assert.True(t, decimal.NewFromInt(1024).Equal(value.AnyValue().(decimal.Decimal)))

	locale, _ := c.Property("locale")
	assert.Equal(t, language.AmericanEnglish, locale.AnyValue())

	foreground, _ := c.Property("foreground")
	assert.Equal(t, "#000000", foreground.AnyValue().(proptype.Color).Hex())

	margin, _ := c.Property("margin")
	assert.Equal(t, float32(4), margin.AnyValue())
}

func TestEnums_RoundTrip(t *testing.T) {
	r := newRegistry(t)

	line, err := r.Serialize(SQLPostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, "sql-dialect|POSTGRESQL", line)

	v, err := r.Deserialize("data-size-unit|MEBIBYTES")
	require.NoError(t, err)
	assert.Equal(t, Mebibytes, v)

	_, err = r.Deserialize("hash-algorithm|MD4")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatData))
}

func TestCatalog_BindAll(t *testing.T) {
	s := instance.New(instance.WithRegistry(newRegistry(t)))
	hmac := s.CreateDeveloperToolConfiguration("hmac-transformer")
	other := s.CreateDeveloperToolConfiguration("retired-tool")

	unknown, err := Default().BindAll(s, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"retired-tool"}, unknown)
	assert.True(t, hmac.WasConsumedByDeveloperTool())
	assert.False(t, other.WasConsumedByDeveloperTool())
}
