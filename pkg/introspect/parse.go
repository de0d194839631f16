// Package introspect recovers spatial column specs from the type metadata
// PostgreSQL reports, e.g. "geometry(PointZ,4326)".
package introspect

import (
	"errors"
	"fmt"
	"strings"

	"pg-spatial/pkg/column"
	"pg-spatial/pkg/geom"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrMalformedMetadata is returned when a metadata string does not have the
// shape [geometry|geography][(<Type>[Z|M|ZM][,<srid>])].
var ErrMalformedMetadata = errors.New("malformed spatial column metadata")

//nolint:govet
type metadata struct {
	Prefix string  `@Ident?`
	Typmod *typmod `( "(" @@ ")" )?`
}

//nolint:govet
type typmod struct {
	Type string `@Ident`
	SRID *int   `( "," @Int )?`
}

var metadataLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var metadataParser = participle.MustBuild[metadata](
	participle.Lexer(metadataLexer),
	participle.Elide("Whitespace"),
)

// dimension suffixes, longest first
var suffixes = []struct {
	text       string
	hasZ, hasM bool
}{
	{"zm", true, true},
	{"z", true, false},
	{"m", false, true},
}

// Parse turns a metadata string into a column spec. An empty string or a
// bare geometry/geography prefix is an untyped column. The geographic flag
// is never derived from the string; see ParseColumn.
func Parse(meta string) (column.Spec, error) {
	meta = strings.TrimSpace(meta)
	if meta == "" {
		return column.Untyped(), nil
	}

	m, err := metadataParser.ParseString("", meta)
	if err != nil {
		return column.Spec{}, fmt.Errorf("%w: %q: %w", ErrMalformedMetadata, meta, err)
	}

	if m.Prefix != "" && !strings.EqualFold(m.Prefix, "geometry") && !strings.EqualFold(m.Prefix, "geography") {
		return column.Spec{}, fmt.Errorf("%w: %q: unknown prefix %q", ErrMalformedMetadata, meta, m.Prefix)
	}
	if m.Typmod == nil {
		if m.Prefix == "" {
			return column.Spec{}, fmt.Errorf("%w: %q", ErrMalformedMetadata, meta)
		}
		return column.Untyped(), nil
	}

	kind, hasZ, hasM, ok := parseType(m.Typmod.Type)
	if !ok {
		return column.Spec{}, fmt.Errorf("%w: %q: unknown geometry type %q", ErrMalformedMetadata, meta, m.Typmod.Type)
	}

	spec := column.Spec{
		TypeName: kind.TypeName(),
		HasZ:     hasZ,
		HasM:     hasM,
		Typmod:   true,
	}
	if m.Typmod.SRID != nil {
		spec.SRID = *m.Typmod.SRID
	}
	return spec, nil
}

// ParseColumn is Parse with the geographic flag of the column's base type.
func ParseColumn(meta string, geographic bool) (column.Spec, error) {
	spec, err := Parse(meta)
	if err != nil {
		return column.Spec{}, err
	}
	spec.Geographic = geographic
	return spec, nil
}

func parseType(name string) (kind geom.GeometryType, hasZ, hasM bool, ok bool) {
	if kind, ok = geom.GeometryTypeFromName(name); ok {
		return kind, false, false, true
	}

	lower := strings.ToLower(name)
	for _, s := range suffixes {
		base, found := strings.CutSuffix(lower, s.text)
		if !found || base == "" {
			continue
		}
		if kind, ok = geom.GeometryTypeFromName(base); ok {
			return kind, s.hasZ, s.hasM, true
		}
	}
	return geom.GEOMETRY, false, false, false
}
