package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/audit"
	"github.com/kozaktomas/face-attendance/internal/geofence"
	"github.com/kozaktomas/face-attendance/internal/identity"
)

// DefaultThreshold is the similarity threshold applied when the caller
// does not supply one.
const DefaultThreshold = 0.50

// Pipeline combines the identity store, the geofence registry and the
// audit log into the attendance decision flow.
type Pipeline struct {
	store identity.Store
	zones *geofence.Registry
	log   *audit.Log
	now   func() time.Time
}

// NewPipeline creates a decision pipeline over the given collaborators.
func NewPipeline(store identity.Store, zones *geofence.Registry, log *audit.Log) *Pipeline {
	return &Pipeline{
		store: store,
		zones: zones,
		log:   log,
		now:   time.Now,
	}
}

// Decide matches the probe embedding against all enrolled identities and,
// when the match clears the threshold, evaluates the reported position
// against the matched identity's geofence. The attempt is accepted only
// when both checks pass; accepted attempts are appended to the audit log
// before the verdict is returned.
//
// The threshold comparison is inclusive and the value is taken as-is: the
// caller stays in control even for values outside [-1, 1].
//
// An error is returned only when the roster cannot be loaded or when
// recording an accepted attempt fails; an attempt must not be reported as
// accepted if the log write did not land.
func (p *Pipeline) Decide(ctx context.Context, probe []float32, kind string, threshold, lat, lng, accuracyM float64) (Verdict, error) {
	identities, err := p.store.All(ctx)
	if err != nil {
		return Verdict{}, fmt.Errorf("loading identities: %w", err)
	}

	bestCode, bestScore := identity.Match(probe, identities)
	matched := bestScore >= threshold && bestCode != ""

	geo := GeofenceResult{Within: false, Reason: geofence.ReasonFaceNotMatched}
	if matched {
		res := p.zones.Evaluate(bestCode, lat, lng, accuracyM)
		geo = GeofenceResult{Within: res.Within, DistanceM: round1p(res.DistanceM), Reason: res.Reason}
	}

	name := UnknownName
	if matched {
		name = bestCode
	}

	verdict := Verdict{
		AttemptID: uuid.NewString(),
		Matched:   matched,
		Name:      name,
		Score:     round3(bestScore),
		Threshold: threshold,
		Period:    Period(p.now()),
		Geofence:  geo,
	}

	if verdict.Accepted() {
		if err := p.record(bestCode, kind, bestScore, lat, lng, geo.DistanceM); err != nil {
			return Verdict{}, fmt.Errorf("recording attendance: %w", err)
		}
	}
	return verdict, nil
}

// record appends one accepted attempt. Reason is always "ok" here: the
// pipeline only records attempts whose geofence evaluation returned ok.
func (p *Pipeline) record(code, kind string, score, lat, lng float64, distanceM *float64) error {
	return p.log.Append(audit.Record{
		TS:        p.now(),
		Code:      code,
		Kind:      kind,
		Period:    Period(p.now()),
		Score:     score,
		Lat:       &lat,
		Lng:       &lng,
		DistanceM: distanceM,
		Reason:    string(geofence.ReasonOK),
	})
}
