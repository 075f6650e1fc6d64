package points

import (
	"strings"

	"missioncore/amb"
)

// Point is a named physical pose on the active map.
type Point struct {
	ID  string
	X   float64
	Y   float64
	Ori float64
}

const (
	loadSuffix    = "_load"
	dockingSuffix = "_docking"
)

// IsNumeric reports whether an id is a bare rack number like "104".
func IsNumeric(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HasLoadSuffix reports whether an id names a load point ("104_load").
func HasLoadSuffix(id string) bool {
	return strings.HasSuffix(strings.ToLower(id), loadSuffix)
}

// HasDockingSuffix reports whether an id names a docking approach pose.
func HasDockingSuffix(id string) bool {
	return strings.HasSuffix(strings.ToLower(id), dockingSuffix)
}

// LoadID derives the load-point id for a symbolic location.
func LoadID(id string) string {
	if IsNumeric(id) {
		return id + loadSuffix
	}
	if HasDockingSuffix(id) {
		id = trimSuffixFold(id, dockingSuffix)
	}
	if HasLoadSuffix(id) {
		return id
	}
	return id + loadSuffix
}

// DockingID derives the docking approach pose id for a symbolic location.
func DockingID(id string) string {
	if IsNumeric(id) {
		return id + loadSuffix + dockingSuffix
	}
	if HasDockingSuffix(id) {
		return id
	}
	return id + dockingSuffix
}

// BaseID strips docking and load suffixes, returning the bare location id.
func BaseID(id string) string {
	if HasDockingSuffix(id) {
		id = trimSuffixFold(id, dockingSuffix)
	}
	if HasLoadSuffix(id) {
		id = trimSuffixFold(id, loadSuffix)
	}
	return id
}

// trimSuffixFold removes a suffix matched case-insensitively.
func trimSuffixFold(id, suffix string) string {
	if len(id) < len(suffix) {
		return id
	}
	return id[:len(id)-len(suffix)]
}

// MapSource feeds the resolver from the robot's active map.
type MapSource struct {
	client *amb.Client
}

func NewMapSource(client *amb.Client) *MapSource {
	return &MapSource{client: client}
}

func (s *MapSource) ListPoints() ([]Point, error) {
	raw, err := s.client.GetActiveMapPoints()
	if err != nil {
		return nil, err
	}
	pts := make([]Point, len(raw))
	for i, p := range raw {
		pts[i] = Point{ID: p.Name, X: p.X, Y: p.Y, Ori: p.Yaw}
	}
	return pts, nil
}
