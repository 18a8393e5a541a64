package geofence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Registry holds the configured zones per identity code. Mutations are
// serialized and flushed to disk as a whole file before they are reported
// as successful.
//
// The on-disk format matches the wire format: a JSON object mapping codes
// to [lat, lng, radius_m] triples.
type Registry struct {
	mu           sync.RWMutex
	path         string
	maxAccuracyM float64
	zones        map[string][]Zone
}

// NewRegistry loads the registry from path. When the file does not exist the
// seed zones (typically the embedded default zone) are used in memory; the
// file is only created on the first mutation.
func NewRegistry(path string, maxAccuracyM float64, seed map[string][]Zone) (*Registry, error) {
	r := &Registry{
		path:         path,
		maxAccuracyM: maxAccuracyM,
		zones:        make(map[string][]Zone),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		for code, zones := range seed {
			r.zones[code] = append([]Zone(nil), zones...)
		}
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading zones file: %w", err)
	}

	raw := make(map[string][][3]float64)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing zones file %s: %w", path, err)
	}
	for code, triples := range raw {
		zones := make([]Zone, 0, len(triples))
		for _, t := range triples {
			zones = append(zones, Zone{Lat: t[0], Lng: t[1], RadiusM: t[2]})
		}
		r.zones[code] = zones
	}
	return r, nil
}

// Zones returns the zones configured for code, falling back to the default
// entry when the code has no zones of its own. The returned slice is a copy.
func (r *Registry) Zones(code string) []Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zones := r.zones[code]
	if len(zones) == 0 {
		zones = r.zones[DefaultCode]
	}
	return append([]Zone(nil), zones...)
}

// SetZones replaces the zone list for code and flushes the registry to disk.
// The mutation is not reported as successful if the flush fails.
func (r *Registry) SetZones(code string, zones []Zone) error {
	if len(zones) == 0 {
		return errors.New("at least one zone is required")
	}
	for i, z := range zones {
		if err := z.Validate(); err != nil {
			return fmt.Errorf("zone %d: %w", i, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, existed := r.zones[code]
	r.zones[code] = append([]Zone(nil), zones...)
	if err := r.save(); err != nil {
		if existed {
			r.zones[code] = previous
		} else {
			delete(r.zones, code)
		}
		return err
	}
	return nil
}

// Evaluate decides whether the reported position is acceptable for code.
//
// Policy order:
//  1. A reported accuracy above the configured maximum rejects the fix
//     before any distance math.
//  2. Zones resolve to the code's own entry when present (even if empty),
//     otherwise the default entry. No resolvable zones means no_sites_configured.
//  3. The first zone whose radius contains the position wins; its distance is
//     reported. Zone order matters and is preserved as configured.
//  4. Otherwise the minimum distance across all zones is reported.
func (r *Registry) Evaluate(code string, lat, lng, accuracyM float64) Result {
	if accuracyM > 0 && r.maxAccuracyM > 0 && accuracyM > r.maxAccuracyM {
		return Result{Within: false, Reason: ReasonGPSAccuracyPoor}
	}

	zones := r.resolveForEval(code)
	if len(zones) == 0 {
		return Result{Within: false, Reason: ReasonNoSites}
	}

	var minDistance *float64
	for _, z := range zones {
		d := distanceM(lat, lng, z.Lat, z.Lng)
		if minDistance == nil || d < *minDistance {
			dd := d
			minDistance = &dd
		}
		if d <= z.RadiusM {
			dd := d
			return Result{Within: true, DistanceM: &dd, Reason: ReasonOK}
		}
	}
	return Result{Within: false, DistanceM: minDistance, Reason: ReasonOutsideRadius}
}

// resolveForEval returns the zone list used for containment checks. Unlike
// Zones, a present-but-empty entry shadows the default: it means the code
// explicitly has no sites, not that it should inherit the default ones.
func (r *Registry) resolveForEval(code string) []Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if zones, ok := r.zones[code]; ok {
		return append([]Zone(nil), zones...)
	}
	return append([]Zone(nil), r.zones[DefaultCode]...)
}

// save writes the whole registry to disk. Caller must hold the write lock.
func (r *Registry) save() error {
	raw := make(map[string][][3]float64, len(r.zones))
	for code, zones := range r.zones {
		triples := make([][3]float64, 0, len(zones))
		for _, z := range zones {
			triples = append(triples, [3]float64{z.Lat, z.Lng, z.RadiusM})
		}
		raw[code] = triples
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding zones: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing zones file: %w", err)
	}
	return nil
}
