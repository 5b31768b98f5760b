package service

import (
	"fmt"
	"math"

	"github.com/shiva/wanderplan/internal/model"
	"github.com/shiva/wanderplan/pkg/geo"
)

// ─── Travel Heuristics ──────────────────────────────────────
//
// Mode/time decision table, applied in order:
//
//	d < 0.5 km                    walk     max(round(d/0.08), 5) min
//	d ≤ 2 km, walk < 20 min       walk     round(d/0.08) min
//	d ≤ 2 km, walk ≥ 20 min       transit  round(d/0.5) + 5 min
//	d ≤ 10 km                     transit  round(d/0.5) + 10 min
//	d > 10 km                     transit  round(d/0.6) + 15 min
//
// Missing coordinates fall back to a flat buffer in the destination's
// last-known arrival mode (car when unset).

const (
	walkKmPerMin        = 0.08
	cityTransitKmPerMin = 0.5
	longTransitKmPerMin = 0.6

	shortWalkKm = 0.5
	walkableKm  = 2.0
	cityKm      = 10.0
	minWalkMin  = 5
	maxWalkMin  = 20
	fallbackMin = 30
)

// Leg is the suggested travel between two consecutive stops. Estimated is
// false when coordinates were missing and the flat fallback buffer was used.
type Leg struct {
	FromInstanceID string              `json:"fromInstanceId"`
	ToInstanceID   string              `json:"toInstanceId"`
	Mode           model.TransportMode `json:"mode"`
	Minutes        int                 `json:"minutes"`
	DistanceKm     float64             `json:"distanceKm"`
	Estimated      bool                `json:"estimated"`
	Label          string              `json:"label"`
}

// DayRoute is the chain of legs through one day.
type DayRoute struct {
	Legs            []Leg   `json:"legs"`
	TotalMinutes    int     `json:"totalMinutes"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
}

// EstimateLeg suggests how to get from one stop to the next.
func EstimateLeg(from, to model.ScheduleItem) Leg {
	leg := Leg{FromInstanceID: from.InstanceID, ToInstanceID: to.InstanceID}

	km, ok := geo.DistanceKm(from.Coordinates, to.Coordinates)
	if !ok {
		leg.Mode = to.ArrivalTransport
		if !leg.Mode.Valid() {
			leg.Mode = model.TransportCar
		}
		leg.Minutes = fallbackMin
		leg.Label = legLabel(leg)
		return leg
	}

	leg.Mode, leg.Minutes = modeForDistance(km)
	leg.DistanceKm = math.Round(km*100) / 100
	leg.Estimated = true
	leg.Label = legLabel(leg)
	return leg
}

// modeForDistance applies the decision table.
func modeForDistance(km float64) (model.TransportMode, int) {
	walk := int(math.Round(km / walkKmPerMin))
	switch {
	case km < shortWalkKm:
		return model.TransportWalk, max(walk, minWalkMin)
	case km <= walkableKm && walk < maxWalkMin:
		return model.TransportWalk, walk
	case km <= walkableKm:
		return model.TransportPublic, int(math.Round(km/cityTransitKmPerMin)) + 5
	case km <= cityKm:
		return model.TransportPublic, int(math.Round(km/cityTransitKmPerMin)) + 10
	default:
		return model.TransportPublic, int(math.Round(km/longTransitKmPerMin)) + 15
	}
}

// RouteForDay chains legs through the timed slots in order (morning to
// night), ending at the day's accommodation.
func RouteForDay(ds model.DaySchedule) DayRoute {
	var stops []model.ScheduleItem
	for _, slot := range model.Slots {
		stops = append(stops, ds.Items(slot)...)
	}

	route := DayRoute{Legs: []Leg{}}
	var points []model.Coordinates
	for i := range stops {
		if stops[i].Coordinates != nil {
			points = append(points, *stops[i].Coordinates)
		}
		if i == 0 {
			continue
		}
		leg := EstimateLeg(stops[i-1], stops[i])
		route.Legs = append(route.Legs, leg)
		route.TotalMinutes += leg.Minutes
	}
	route.TotalDistanceKm = math.Round(geo.RouteDistanceKm(points)*100) / 100
	return route
}

func legLabel(leg Leg) string {
	name := "Drive"
	switch leg.Mode {
	case model.TransportWalk:
		name = "Walk"
	case model.TransportPublic:
		name = "Transit"
	}
	if !leg.Estimated {
		return fmt.Sprintf("%s · ~%d min", name, leg.Minutes)
	}
	return fmt.Sprintf("%s · %d min", name, leg.Minutes)
}
