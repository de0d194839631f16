package geom

import (
	"encoding/json"
	"fmt"
)

// GeoJSONGeometry represents a GeoJSON geometry object
type GeoJSONGeometry struct {
	Type        string            `json:"type"`
	Coordinates json.RawMessage   `json:"coordinates,omitempty"`
	Geometries  []GeoJSONGeometry `json:"geometries,omitempty"`
}

type position []float64

// ToGeoJSON converts a geometry to GeoJSON bytes. GeoJSON has no measure
// ordinate, so M values are dropped.
func ToGeoJSON(g Geometry) ([]byte, error) {
	obj, err := toGeoJSONObject(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

type geoJSONOut struct {
	Type        string       `json:"type"`
	Coordinates any          `json:"coordinates,omitempty"`
	Geometries  []geoJSONOut `json:"geometries,omitempty"`
}

func toGeoJSONObject(g Geometry) (geoJSONOut, error) {
	if !Known(g) {
		return geoJSONOut{}, fmt.Errorf("unsupported geometry %T", g)
	}
	l := g.GetLayout()

	switch v := g.(type) {
	case Point:
		return geoJSONOut{Type: "Point", Coordinates: toPosition(v.Coord, l)}, nil
	case LineString:
		return geoJSONOut{Type: "LineString", Coordinates: toPositions(v.Coords, l)}, nil
	case Polygon:
		return geoJSONOut{Type: "Polygon", Coordinates: toRings(v.Rings, l)}, nil
	case MultiPoint:
		coords := make([]position, len(v.Points))
		for i, p := range v.Points {
			coords[i] = toPosition(p.Coord, l)
		}
		return geoJSONOut{Type: "MultiPoint", Coordinates: coords}, nil
	case MultiLineString:
		coords := make([][]position, len(v.LineStrings))
		for i, ls := range v.LineStrings {
			coords[i] = toPositions(ls.Coords, l)
		}
		return geoJSONOut{Type: "MultiLineString", Coordinates: coords}, nil
	case MultiPolygon:
		coords := make([][][]position, len(v.Polygons))
		for i, p := range v.Polygons {
			coords[i] = toRings(p.Rings, l)
		}
		return geoJSONOut{Type: "MultiPolygon", Coordinates: coords}, nil
	case GeometryCollection:
		members := make([]geoJSONOut, len(v.Geometries))
		for i, m := range v.Geometries {
			out, err := toGeoJSONObject(m)
			if err != nil {
				return geoJSONOut{}, err
			}
			members[i] = out
		}
		return geoJSONOut{Type: "GeometryCollection", Geometries: members}, nil
	default:
		return geoJSONOut{}, fmt.Errorf("unsupported geometry %T", g)
	}
}

func toPosition(c Coord, l Layout) position {
	if l.HasZ() {
		return position{c.X, c.Y, c.Z}
	}
	return position{c.X, c.Y}
}

func toPositions(coords []Coord, l Layout) []position {
	out := make([]position, len(coords))
	for i, c := range coords {
		out[i] = toPosition(c, l)
	}
	return out
}

func toRings(rings [][]Coord, l Layout) [][]position {
	out := make([][]position, len(rings))
	for i, r := range rings {
		out[i] = toPositions(r, l)
	}
	return out
}

// FromGeoJSON parses a GeoJSON geometry object. The layout is XYZ when
// positions carry a third value and XY otherwise; mixing both is an error.
// The result is validated.
func FromGeoJSON(data []byte, srid int) (Geometry, error) {
	var obj GeoJSONGeometry
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geojson: %w", err)
	}

	layout, err := detectLayout(obj)
	if err != nil {
		return nil, err
	}

	g, err := fromGeoJSONObject(obj, layout, srid)
	if err != nil {
		return nil, err
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func fromGeoJSONObject(obj GeoJSONGeometry, l Layout, srid int) (Geometry, error) {
	switch obj.Type {
	case "Point":
		var p position
		if err := json.Unmarshal(obj.Coordinates, &p); err != nil {
			return nil, fmt.Errorf("point coordinates: %w", err)
		}
		c, err := fromPosition(p)
		if err != nil {
			return nil, err
		}
		return NewPoint(l, srid, c), nil
	case "LineString":
		var ps []position
		if err := json.Unmarshal(obj.Coordinates, &ps); err != nil {
			return nil, fmt.Errorf("line string coordinates: %w", err)
		}
		coords, err := fromPositions(ps)
		if err != nil {
			return nil, err
		}
		return NewLineString(l, srid, coords), nil
	case "Polygon":
		var rs [][]position
		if err := json.Unmarshal(obj.Coordinates, &rs); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %w", err)
		}
		rings, err := fromRings(rs)
		if err != nil {
			return nil, err
		}
		return NewPolygon(l, srid, rings), nil
	case "MultiPoint":
		var ps []position
		if err := json.Unmarshal(obj.Coordinates, &ps); err != nil {
			return nil, fmt.Errorf("multi point coordinates: %w", err)
		}
		coords, err := fromPositions(ps)
		if err != nil {
			return nil, err
		}
		return NewMultiPoint(l, srid, coords), nil
	case "MultiLineString":
		var ls [][]position
		if err := json.Unmarshal(obj.Coordinates, &ls); err != nil {
			return nil, fmt.Errorf("multi line string coordinates: %w", err)
		}
		lines, err := fromRings(ls)
		if err != nil {
			return nil, err
		}
		return NewMultiLineString(l, srid, lines), nil
	case "MultiPolygon":
		var ps [][][]position
		if err := json.Unmarshal(obj.Coordinates, &ps); err != nil {
			return nil, fmt.Errorf("multi polygon coordinates: %w", err)
		}
		polygons := make([][][]Coord, len(ps))
		for i, p := range ps {
			rings, err := fromRings(p)
			if err != nil {
				return nil, err
			}
			polygons[i] = rings
		}
		return NewMultiPolygon(l, srid, polygons), nil
	case "GeometryCollection":
		members := make([]Geometry, len(obj.Geometries))
		for i, m := range obj.Geometries {
			g, err := fromGeoJSONObject(m, l, srid)
			if err != nil {
				return nil, err
			}
			members[i] = g
		}
		return NewGeometryCollection(l, srid, members), nil
	default:
		return nil, fmt.Errorf("unsupported geojson type %q", obj.Type)
	}
}

func fromPosition(p position) (Coord, error) {
	if len(p) < 2 {
		return Coord{}, fmt.Errorf("position needs at least 2 coordinates, got %d", len(p))
	}
	c := Coord{X: p[0], Y: p[1]}
	if len(p) > 2 {
		c.Z = p[2]
	}
	return c, nil
}

func fromPositions(ps []position) ([]Coord, error) {
	out := make([]Coord, len(ps))
	for i, p := range ps {
		c, err := fromPosition(p)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func fromRings(rs [][]position) ([][]Coord, error) {
	out := make([][]Coord, len(rs))
	for i, r := range rs {
		ring, err := fromPositions(r)
		if err != nil {
			return nil, err
		}
		out[i] = ring
	}
	return out, nil
}

// detectLayout scans every position in obj and returns XY or XYZ.
func detectLayout(obj GeoJSONGeometry) (Layout, error) {
	dims := 0
	var visit func(o GeoJSONGeometry) error
	visit = func(o GeoJSONGeometry) error {
		for _, m := range o.Geometries {
			if err := visit(m); err != nil {
				return err
			}
		}
		if len(o.Coordinates) == 0 {
			return nil
		}

		var raw any
		if err := json.Unmarshal(o.Coordinates, &raw); err != nil {
			return fmt.Errorf("%s coordinates: %w", o.Type, err)
		}
		return walkPositions(raw, func(n int) error {
			if n < 2 || n > 3 {
				return fmt.Errorf("position with %d values", n)
			}
			if dims != 0 && dims != n {
				return fmt.Errorf("mixed 2D and 3D positions")
			}
			dims = n
			return nil
		})
	}

	if err := visit(obj); err != nil {
		return XY, err
	}
	if dims == 3 {
		return XYZ, nil
	}
	return XY, nil
}

// walkPositions calls fn with the length of every innermost number array.
func walkPositions(v any, fn func(n int) error) error {
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expected array, got %T", v)
	}
	if len(arr) > 0 {
		if _, isNum := arr[0].(float64); isNum {
			for _, x := range arr {
				if _, ok := x.(float64); !ok {
					return fmt.Errorf("expected number, got %T", x)
				}
			}
			return fn(len(arr))
		}
	}
	for _, x := range arr {
		if err := walkPositions(x, fn); err != nil {
			return err
		}
	}
	return nil
}
