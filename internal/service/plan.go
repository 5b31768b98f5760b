package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shiva/wanderplan/internal/model"
)

const dateLayout = "2006-01-02"

// PlanOptions describes a new empty plan.
type PlanOptions struct {
	Name           string  `json:"name"`
	StartDate      string  `json:"startDate"`
	Days           int     `json:"days"`
	Region         string  `json:"region"`
	TargetCurrency string  `json:"targetCurrency"`
	ExchangeRate   float64 `json:"exchangeRate"`
}

// withDefaults fills zero fields of o from d.
func (o PlanOptions) withDefaults(d PlanOptions) PlanOptions {
	if o.Name == "" {
		o.Name = d.Name
	}
	if o.StartDate == "" {
		o.StartDate = d.StartDate
	}
	if o.Days == 0 {
		o.Days = d.Days
	}
	if o.Region == "" {
		o.Region = d.Region
	}
	if o.TargetCurrency == "" {
		o.TargetCurrency = d.TargetCurrency
	}
	if o.ExchangeRate == 0 {
		o.ExchangeRate = d.ExchangeRate
	}
	return o
}

// NewPlan builds a skeleton plan with opts.Days empty days.
func NewPlan(opts PlanOptions, now time.Time) (model.Plan, error) {
	if opts.Days < 1 {
		return model.Plan{}, fmt.Errorf("new plan: %w (got %d)", ErrInvalidDayCount, opts.Days)
	}
	start := opts.StartDate
	if start == "" {
		start = now.Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		return model.Plan{}, fmt.Errorf("new plan: start date %q: %w", start, err)
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "My Trip"
	}

	plan := model.Plan{
		ID:             uuid.NewString(),
		Name:           name,
		StartDate:      start,
		TotalDays:      opts.Days,
		Schedule:       make(map[string]model.DaySchedule, opts.Days),
		Checklist:      []model.ChecklistItem{},
		Region:         opts.Region,
		TargetCurrency: opts.TargetCurrency,
		ExchangeRate:   opts.ExchangeRate,
		CreatedAt:      now.UnixMilli(),
	}
	for n := 1; n <= opts.Days; n++ {
		plan.Schedule[model.DayKey(n)] = model.EmptyDay()
	}
	plan.EndDate = EndDateFor(plan.StartDate, plan.TotalDays)
	return plan, nil
}

// EndDateFor returns the last calendar day of a trip, or "" when startDate
// does not parse.
func EndDateFor(startDate string, totalDays int) string {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil || totalDays < 1 {
		return ""
	}
	return start.AddDate(0, 0, totalDays-1).Format(dateLayout)
}

// ApplyTemplate replaces the plan's schedule with a deep copy of tpl.
//
// Every copied item gets a new instance id; the template's own ids are never
// reused. totalDays follows the template.
func (e *ScheduleEngine) ApplyTemplate(plan model.Plan, tpl model.Template) (model.Plan, error) {
	if len(tpl.Days) == 0 {
		return plan, fmt.Errorf("apply template %q: %w", tpl.ID, ErrInvalidDayCount)
	}

	out := plan
	out.Schedule = make(map[string]model.DaySchedule, len(tpl.Days))
	for i, day := range tpl.Days {
		ds := day.Clone()
		for _, slot := range model.Slots {
			items := ds.Items(slot)
			for j := range items {
				items[j].InstanceID = e.NewID()
			}
			sortSlot(slot, items)
		}
		out.Schedule[model.DayKey(i+1)] = ds
	}
	out.TotalDays = len(tpl.Days)
	out.EndDate = EndDateFor(out.StartDate, out.TotalDays)
	if tpl.Region != "" {
		out.Region = tpl.Region
	}
	return out, nil
}

// AddDay appends an empty day to the end of the plan.
func AddDay(plan model.Plan) model.Plan {
	out := plan.ShallowCopy()
	out.TotalDays++
	out.Schedule[model.DayKey(out.TotalDays)] = model.EmptyDay()
	out.EndDate = EndDateFor(out.StartDate, out.TotalDays)
	return out
}

// DeleteDay removes day and renumbers every later day down by one, so the
// keys stay contiguous.
func DeleteDay(plan model.Plan, day int) (model.Plan, error) {
	if _, err := dayOf(plan, day); err != nil {
		return plan, fmt.Errorf("delete day: %w", err)
	}
	if plan.TotalDays <= 1 {
		return plan, fmt.Errorf("delete day: %w", ErrLastDay)
	}

	out := plan
	out.Schedule = make(map[string]model.DaySchedule, plan.TotalDays-1)
	next := 1
	for n := 1; n <= plan.TotalDays; n++ {
		if n == day {
			continue
		}
		out.Schedule[model.DayKey(next)] = plan.Schedule[model.DayKey(n)]
		next++
	}
	out.TotalDays = plan.TotalDays - 1
	out.EndDate = EndDateFor(out.StartDate, out.TotalDays)
	return out, nil
}
