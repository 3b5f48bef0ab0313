package proptype

import (
	"fmt"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
)

// EnumContributor registers the enum types of one feature area.
type EnumContributor interface {
	ContributeEnums(r *Registry) error
}

// EnumContributorFunc adapts a function to EnumContributor.
type EnumContributorFunc func(r *Registry) error

// ContributeEnums calls f(r).
func (f EnumContributorFunc) ContributeEnums(r *Registry) error {
	return f(r)
}

// RegisterContributors runs every contributor against r and stops at the first error.
func RegisterContributors(r *Registry, contributors ...EnumContributor) error {
	for _, c := range contributors {
		if err := c.ContributeEnums(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEnum adds a descriptor for the enum type E. Values serialize by
// their constant name; parsing requires an exact, case-sensitive match.
// legacyID may be empty.
func RegisterEnum[E Enum](r *Registry, legacyID string, values ...E) error {
	var zero E
	id := zero.PropertyTypeID()
	if id == "" {
		return core.ErrProgramming(core.CodeUnsupportedType,
			fmt.Sprintf("enum type %T has an empty type id", zero))
	}
	if len(values) == 0 {
		return core.ErrProgramming(core.CodeUnsupportedType,
			fmt.Sprintf("enum type %q has no constants", id))
	}

	byName := make(map[string]E, len(values))
	for _, v := range values {
		byName[v.String()] = v
	}

	return r.add(&Descriptor{
		ID:       id,
		LegacyID: legacyID,
		Kind:     KindEnum,
		fromPersistent: func(s string) (any, error) {
			v, ok := byName[s]
			if !ok {
				return nil, core.ErrData(core.CodeUnknownEnumConstant,
					fmt.Sprintf("%q is not a constant of %s", s, id))
			}
			return v, nil
		},
		toPersistent: typed(func(v E) string { return v.String() }),
	})
}
