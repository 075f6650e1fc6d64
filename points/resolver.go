package points

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when all resolution stages fail.
var ErrNotFound = errors.New("point not found")

// Source provides the raw point list for the active map.
type Source interface {
	ListPoints() ([]Point, error)
}

// Resolver maps symbolic location ids to physical poses. The point
// list is cached with a fixed TTL; a fetch failure keeps serving the
// last good cache.
type Resolver struct {
	source Source
	ttl    time.Duration

	mu        sync.Mutex
	cached    []Point
	byID      map[string]Point
	fetchedAt time.Time
	haveCache bool

	now func() time.Time
}

func NewResolver(source Source, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Resolver{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Invalidate forces a refetch on the next Resolve.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
}

// snapshot returns the current point list, refreshing the cache when
// the TTL window has elapsed.
func (r *Resolver) snapshot() ([]Point, map[string]Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.haveCache && r.now().Sub(r.fetchedAt) < r.ttl {
		return r.cached, r.byID
	}

	pts, err := r.source.ListPoints()
	if err != nil {
		if r.haveCache {
			log.Printf("points: refresh failed, serving stale cache: %v", err)
			return r.cached, r.byID
		}
		log.Printf("points: fetch failed with no cache: %v", err)
		pts = nil
	}

	byID := make(map[string]Point, len(pts))
	for _, p := range pts {
		byID[p.ID] = p
	}
	r.cached = pts
	r.byID = byID
	r.fetchedAt = r.now()
	r.haveCache = err == nil || r.haveCache
	return r.cached, r.byID
}

// Resolve maps a symbolic id to a Point. Stages, each tried only if
// the previous fails:
//
//  1. exact match
//  2. case-insensitive match
//  3. normalized id (load suffix appended or stripped)
//  4. sibling ids (bare base, docking variant)
//  5. prefix/substring fallback for purely numeric ids, preferring a
//     load-suffixed hit over a bare one
func (r *Resolver) Resolve(id string) (Point, error) {
	pts, byID := r.snapshot()

	if p, ok := byID[id]; ok {
		return p, nil
	}
	if p, ok := matchFold(pts, id); ok {
		return p, nil
	}
	for _, cand := range normalizedIDs(id) {
		if p, ok := byID[cand]; ok {
			return p, nil
		}
		if p, ok := matchFold(pts, cand); ok {
			return p, nil
		}
	}
	for _, cand := range siblingIDs(id) {
		if p, ok := byID[cand]; ok {
			return p, nil
		}
		if p, ok := matchFold(pts, cand); ok {
			return p, nil
		}
	}
	if IsNumeric(id) {
		if p, ok := numericFallback(pts, id); ok {
			return p, nil
		}
	}
	return Point{}, fmt.Errorf("resolve %q: %w", id, ErrNotFound)
}

func matchFold(pts []Point, id string) (Point, bool) {
	for _, p := range pts {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return Point{}, false
}

// normalizedIDs applies the canonicalization rule: bare numeric ids
// imply their load point, suffixed ids imply their base, named points
// imply their load variant.
func normalizedIDs(id string) []string {
	switch {
	case IsNumeric(id):
		return []string{id + loadSuffix}
	case HasDockingSuffix(id):
		return []string{trimSuffixFold(id, dockingSuffix)}
	case HasLoadSuffix(id):
		return []string{trimSuffixFold(id, loadSuffix)}
	default:
		return []string{id + loadSuffix}
	}
}

// siblingIDs derives alternates: the bare base id, its load variant,
// and docking variants.
func siblingIDs(id string) []string {
	base := BaseID(id)
	sibs := []string{}
	if base != id {
		sibs = append(sibs, base)
	}
	if l := LoadID(base); l != id {
		sibs = append(sibs, l)
	}
	if !HasDockingSuffix(id) {
		sibs = append(sibs, id+dockingSuffix)
	}
	if d := DockingID(base); d != id {
		sibs = append(sibs, d)
	}
	return sibs
}

// numericFallback scans for points whose id starts with or contains
// the numeric id. A load-suffixed candidate wins over a bare one.
func numericFallback(pts []Point, id string) (Point, bool) {
	var bare Point
	var haveBare bool
	for _, p := range pts {
		if !strings.HasPrefix(p.ID, id) && !strings.Contains(p.ID, id) {
			continue
		}
		if HasLoadSuffix(p.ID) {
			return p, true
		}
		if !haveBare {
			bare = p
			haveBare = true
		}
	}
	return bare, haveBare
}
