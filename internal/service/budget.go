package service

import (
	"math"

	"github.com/shiva/wanderplan/internal/model"
)

// ─── Budget Buckets ─────────────────────────────────────────

// BudgetBucket is the fixed five-way taxonomy used for charting.
type BudgetBucket string

const (
	BucketAttraction BudgetBucket = "attraction"
	BucketFood       BudgetBucket = "food"
	BucketLodging    BudgetBucket = "lodging"
	BucketTransport  BudgetBucket = "transport"
	BucketOther      BudgetBucket = "other"
)

var bucketOrder = []BudgetBucket{BucketAttraction, BucketFood, BucketLodging, BucketTransport, BucketOther}

var bucketColors = map[BudgetBucket]string{
	BucketAttraction: "#3B82F6",
	BucketFood:       "#F97316",
	BucketLodging:    "#8B5CF6",
	BucketTransport:  "#10B981",
	BucketOther:      "#9CA3AF",
}

// BucketFor maps an item category to its budget bucket. Shopping, nature,
// custom and unknown categories fall into other.
func BucketFor(c model.Category) BudgetBucket {
	switch c {
	case model.CategoryAttraction:
		return BucketAttraction
	case model.CategoryFood:
		return BucketFood
	case model.CategoryLodging:
		return BucketLodging
	case model.CategoryTransport:
		return BucketTransport
	}
	return BucketOther
}

// ─── Summary ────────────────────────────────────────────────

// CategoryAmount is one non-zero bucket of the breakdown.
type CategoryAmount struct {
	Bucket BudgetBucket `json:"bucket"`
	Amount float64      `json:"amount"`
	Color  string       `json:"color"`
}

// DayAmount is the spend of one day.
type DayAmount struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

// BudgetSummary is the read-only roll-up of a plan's prices.
type BudgetSummary struct {
	Total     float64          `json:"total"`
	ItemCount int              `json:"itemCount"`
	Breakdown []CategoryAmount `json:"breakdown"`
	PerDay    []DayAmount      `json:"perDay"`

	// Converted is Total × ExchangeRate in the plan's target currency,
	// zero when no rate is set.
	Converted      float64 `json:"converted"`
	TargetCurrency string  `json:"targetCurrency,omitempty"`

	Limit     float64 `json:"limit,omitempty"`
	OverLimit bool    `json:"overLimit"`
}

// SummarizeBudget reduces every item of every day and slot. Missing or
// non-numeric prices count as 0. limit ≤ 0 means no limit. It has no side
// effects and is safe to call on every render.
func SummarizeBudget(plan model.Plan, limit float64) BudgetSummary {
	sums := make(map[BudgetBucket]float64, len(bucketOrder))
	sum := BudgetSummary{Breakdown: []CategoryAmount{}, PerDay: []DayAmount{}}

	for _, day := range sortedDayNumbers(plan) {
		ds, _ := plan.Day(day)
		dayTotal := 0.0
		for _, slot := range model.Slots {
			for _, item := range ds.Items(slot) {
				price := item.Price.Float()
				sums[BucketFor(item.Category)] += price
				dayTotal += price
				sum.ItemCount++
			}
		}
		sum.PerDay = append(sum.PerDay, DayAmount{Day: day, Amount: dayTotal})
	}

	for _, b := range bucketOrder {
		amount := sums[b]
		if amount == 0 {
			continue
		}
		sum.Total += amount
		sum.Breakdown = append(sum.Breakdown, CategoryAmount{
			Bucket: b,
			Amount: amount,
			Color:  bucketColors[b],
		})
	}

	if plan.ExchangeRate > 0 && !math.IsInf(plan.ExchangeRate, 0) {
		sum.Converted = math.Round(sum.Total*plan.ExchangeRate*100) / 100
		sum.TargetCurrency = plan.TargetCurrency
	}
	if limit > 0 {
		sum.Limit = limit
		sum.OverLimit = sum.Total > limit
	}
	return sum
}
