package geo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrSpatialReferenceMismatch is matched (via errors.Is) by every *MismatchError.
var ErrSpatialReferenceMismatch = errors.New("spatial reference mismatch")

// ErrUnknownRef is returned by ParseRef for descriptors it cannot classify.
var ErrUnknownRef = errors.New("unrecognized spatial reference")

// RefKind selects how coordinates are interpreted.
type RefKind uint8

const (
	// KindPlanar is a projected coordinate system; distances are Euclidean in projection units.
	KindPlanar RefKind = iota
	// KindGeodetic is longitude/latitude in degrees; distances are great-circle meters.
	KindGeodetic
)

func (k RefKind) String() string {
	switch k {
	case KindPlanar:
		return "planar"
	case KindGeodetic:
		return "geodetic"
	default:
		return "RefKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// SpatialRef describes the coordinate reference of a whole graph.
// Code is the normalized descriptor; two refs are the same system iff Equal.
type SpatialRef struct {
	Kind RefKind
	Code string
}

// Well-known references.
var (
	WGS84 = SpatialRef{Kind: KindGeodetic, Code: "EPSG:4326"}

	// FlatEarth is an equidistant cylindrical projection in meters on a sphere.
	FlatEarth = MustParseRef("+proj=eqc +lat_ts=0 +lat_0=0 +lon_0=0 +x_0=0 +y_0=0 +a=6371007.0 +units=m +no_defs")
)

// IsZero reports whether the reference is unset.
func (r SpatialRef) IsZero() bool { return r.Code == "" }

// Equal reports whether r and o denote the same reference system.
func (r SpatialRef) Equal(o SpatialRef) bool {
	return r.Kind == o.Kind && r.Code == o.Code
}

func (r SpatialRef) String() string {
	if r.IsZero() {
		return "<unset>"
	}
	return r.Code
}

// geodeticEPSG lists EPSG codes of geographic (lon/lat) systems we recognize.
var geodeticEPSG = map[int]bool{
	4326: true, // WGS 84
	4269: true, // NAD83
	4258: true, // ETRS89
	4267: true, // NAD27
	4283: true, // GDA94
	4674: true, // SIRGAS 2000
}

// ParseRef classifies and normalizes a reference descriptor. It accepts
// AUTHORITY:CODE pairs, OGC URNs, the CRS84/WGS84 aliases and PROJ.4 strings.
func ParseRef(s string) (SpatialRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SpatialRef{}, fmt.Errorf("%w: empty descriptor", ErrUnknownRef)
	}

	if strings.HasPrefix(s, "+") {
		return parseProj4(s)
	}

	upper := strings.ToUpper(s)
	switch upper {
	case "WGS84", "CRS84", "OGC:CRS84":
		return WGS84, nil
	}

	// urn:ogc:def:crs:EPSG::4326 / urn:ogc:def:crs:OGC:1.3:CRS84
	if strings.HasPrefix(upper, "URN:OGC:DEF:CRS:") {
		parts := strings.Split(upper, ":")
		auth := parts[4]
		code := parts[len(parts)-1]
		if code == "CRS84" {
			return WGS84, nil
		}
		return parseAuthority(auth, code, s)
	}

	if auth, code, ok := strings.Cut(upper, ":"); ok {
		return parseAuthority(auth, code, s)
	}

	return SpatialRef{}, fmt.Errorf("%w: %q", ErrUnknownRef, s)
}

// MustParseRef is like ParseRef but panics on error.
func MustParseRef(s string) SpatialRef {
	ref, err := ParseRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

func parseAuthority(auth, code, raw string) (SpatialRef, error) {
	auth = strings.TrimSpace(auth)
	code = strings.TrimSpace(code)
	if auth == "" || code == "" {
		return SpatialRef{}, fmt.Errorf("%w: %q", ErrUnknownRef, raw)
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return SpatialRef{}, fmt.Errorf("%w: %q", ErrUnknownRef, raw)
	}
	kind := KindPlanar
	if auth == "EPSG" && geodeticEPSG[n] {
		kind = KindGeodetic
	}
	return SpatialRef{Kind: kind, Code: auth + ":" + strconv.Itoa(n)}, nil
}

func parseProj4(s string) (SpatialRef, error) {
	tokens := strings.Fields(s)
	params := make(map[string]string, len(tokens))
	for i, tok := range tokens {
		if !strings.HasPrefix(tok, "+") || len(tok) == 1 {
			return SpatialRef{}, fmt.Errorf("%w: bad proj4 token %q", ErrUnknownRef, tok)
		}
		tok = strings.ToLower(tok)
		tokens[i] = tok
		k, v, _ := strings.Cut(tok[1:], "=")
		params[k] = v
	}

	proj := params["proj"]
	if proj == "" {
		return SpatialRef{}, fmt.Errorf("%w: proj4 without +proj: %q", ErrUnknownRef, s)
	}

	if proj == "longlat" || proj == "latlong" {
		datum := params["datum"]
		if datum == "" {
			datum = params["ellps"]
		}
		if datum == "wgs84" && params["towgs84"] == "" {
			return WGS84, nil
		}
		slices.Sort(tokens)
		return SpatialRef{Kind: KindGeodetic, Code: strings.Join(slices.Compact(tokens), " ")}, nil
	}

	slices.Sort(tokens)
	return SpatialRef{Kind: KindPlanar, Code: strings.Join(slices.Compact(tokens), " ")}, nil
}

// MismatchError reports that demand points and the existing network use
// different reference systems. It is never retried or reprojected.
type MismatchError struct {
	Demand  SpatialRef
	Network SpatialRef
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("spatial reference mismatch: demand %s, network %s", e.Demand, e.Network)
}

// Is makes errors.Is(err, ErrSpatialReferenceMismatch) succeed.
func (e *MismatchError) Is(target error) bool {
	return target == ErrSpatialReferenceMismatch
}

// Validate checks that demand and network share a reference system. An unset
// network reference is accepted only when allowUnset is true (empty network).
func Validate(demand, network SpatialRef, allowUnset bool) error {
	if network.IsZero() && allowUnset {
		return nil
	}
	if !demand.Equal(network) {
		return &MismatchError{Demand: demand, Network: network}
	}
	return nil
}
