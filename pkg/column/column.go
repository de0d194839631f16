// Package column describes spatial column types: the type a column was
// declared with, its SRID and its dimensionality, and the SQL fragments that
// declare such a column.
package column

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pg-spatial/pkg/geom"

	"github.com/lib/pq"
)

// ErrNonConforming is returned when a geometry does not fit a column.
var ErrNonConforming = errors.New("geometry does not conform to column")

// Spec is the resolved type of a spatial column.
//
// SRID 0 means any SRID is accepted. Typmod is set when the spec comes from
// an explicit PostGIS type modifier such as geometry(PointZ,4326): such a
// column pins its dimensionality exactly. Without Typmod, HasZ and HasM only
// require the ordinate to be present.
type Spec struct {
	TypeName   string `json:"type_name"`
	Geographic bool   `json:"geographic"`
	SRID       int    `json:"srid"`
	HasZ       bool   `json:"has_z"`
	HasM       bool   `json:"has_m"`
	Typmod     bool   `json:"typmod,omitempty"`
}

// Untyped is the spec of a bare geometry column.
func Untyped() Spec {
	return Spec{TypeName: "geometry"}
}

// GeometryType maps the type name to a geometry kind. Names that do not
// pin a kind (geometry, geography, spatial and custom names) map to GEOMETRY.
func (s Spec) GeometryType() geom.GeometryType {
	switch s.TypeName {
	case "st_point":
		return geom.POINT
	case "st_polygon":
		return geom.POLYGON
	}
	if t, ok := geom.GeometryTypeFromName(s.TypeName); ok {
		return t
	}
	return geom.GEOMETRY
}

func (s Spec) Layout() geom.Layout {
	return geom.NewLayout(s.HasZ, s.HasM)
}

// SQLType renders the column type, e.g. geometry(PointZ,4326) or
// geography(Point,4326). An untyped planar column is just "geometry".
func (s Spec) SQLType() string {
	base := "geometry"
	if s.Geographic {
		base = "geography"
	}

	kind := s.GeometryType()
	if kind == geom.GEOMETRY && s.SRID == 0 && !s.HasZ && !s.HasM {
		return base
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("(")
	sb.WriteString(kind.String())
	sb.WriteString(s.Layout().Suffix())
	if s.SRID != 0 {
		sb.WriteString(",")
		sb.WriteString(strconv.Itoa(s.SRID))
	}
	sb.WriteString(")")

	return sb.String()
}

// Definition renders a column definition fragment for CREATE/ALTER TABLE.
func Definition(name string, s Spec) string {
	return pq.QuoteIdentifier(name) + " " + s.SQLType()
}

// Conforms checks that g can be stored in a column of this spec.
func (s Spec) Conforms(g geom.Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: nil geometry", ErrNonConforming)
	}
	if !geom.Known(g) {
		return fmt.Errorf("%w: unsupported geometry %T", ErrNonConforming, g)
	}

	if kind := s.GeometryType(); kind != geom.GEOMETRY && kind != g.GetGeometryType() {
		return fmt.Errorf("%w: column %s expects %s, got %s",
			ErrNonConforming, s.TypeName, kind, g.GetGeometryType())
	}

	if s.SRID != 0 && g.GetSRID() != s.SRID {
		return fmt.Errorf("%w: geometry SRID %d does not match column SRID %d",
			ErrNonConforming, g.GetSRID(), s.SRID)
	}

	l := g.GetLayout()
	if s.Typmod {
		if l.HasZ() != s.HasZ || l.HasM() != s.HasM {
			return fmt.Errorf("%w: column has layout %s, geometry has %s",
				ErrNonConforming, s.Layout(), l)
		}
		return nil
	}

	if (s.HasZ && !l.HasZ()) || (s.HasM && !l.HasM()) {
		return fmt.Errorf("%w: column requires layout %s, geometry has %s",
			ErrNonConforming, s.Layout(), l)
	}
	return nil
}
