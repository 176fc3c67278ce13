package domain

import (
	"math"
	"time"
)

// Pricing is a fare model for a service type.
type Pricing struct {
	ID          string
	ServiceType string
	BaseFare    float64
	PerKmRate   float64
	PerMinRate  float64
	IsActive    bool
	CreatedAt   time.Time
}

// FareEstimate is the fare computed from a pricing model.
type FareEstimate struct {
	PriceID         string
	BaseCharges     float64
	DistanceCharges float64
	TimeCharges     float64
	Total           float64
}

// Estimate computes the fare for a trip of distanceKm and durationMin.
// Amounts are rounded to cents.
func (p Pricing) Estimate(distanceKm, durationMin float64) FareEstimate {
	dist := round2(p.PerKmRate * distanceKm)
	tm := round2(p.PerMinRate * durationMin)
	return FareEstimate{
		PriceID:         p.ID,
		BaseCharges:     round2(p.BaseFare),
		DistanceCharges: dist,
		TimeCharges:     tm,
		Total:           round2(p.BaseFare + dist + tm),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
