package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlanStatus is the publication state of a plan. Plans have no runtime
// state machine beyond these flags; enrollment eligibility (ACTIVE and
// public) is enforced by the enrollment service, not by the plan itself.
type PlanStatus string

const (
	PlanDraft    PlanStatus = "DRAFT"
	PlanActive   PlanStatus = "ACTIVE"
	PlanInactive PlanStatus = "INACTIVE"
)

// Valid reports whether s is a known plan status.
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanDraft, PlanActive, PlanInactive:
		return true
	}
	return false
}

// PlanDifficulty grades the physical demand of a plan.
type PlanDifficulty string

const (
	DifficultyEasy     PlanDifficulty = "EASY"
	DifficultyModerate PlanDifficulty = "MODERATE"
	DifficultyHard     PlanDifficulty = "HARD"
)

// Valid reports whether d is a known difficulty.
func (d PlanDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	}
	return false
}

// Plan is a multi-day packaged tour product composed of ordered itinerary
// days. Capacity is the maximum participant count across enrollments with
// overlapping date ranges.
type Plan struct {
	ID            uuid.UUID      `json:"id"`
	CreatorID     uuid.UUID      `json:"creator_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	IncludedItems string         `json:"included_items,omitempty"`
	Requirements  string         `json:"requirements,omitempty"`
	PackingList   string         `json:"packing_list,omitempty"`
	Capacity      int            `json:"capacity"`
	DurationDays  int            `json:"duration_days"`
	TotalPrice    float64        `json:"total_price"`
	Difficulty    PlanDifficulty `json:"difficulty"`
	Public        bool           `json:"public"`
	Status        PlanStatus     `json:"status"`
	CoverImage    string         `json:"cover_image,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PlanDay is one ordered day of a plan's itinerary. DayNumber places the
// day within 1..DurationDays and is unique per plan; DisplayOrder is an
// independent UI sequencing hint with no uniqueness guarantee.
//
// Itinerary days may cross midnight (an overnight trek ending at 02:00);
// DurationMinutes is then the wrapped span, never negative.
type PlanDay struct {
	ID              uuid.UUID `json:"id"`
	PlanID          uuid.UUID `json:"plan_id"`
	DayNumber       int       `json:"day_number"`
	DisplayOrder    int       `json:"display_order"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartTime       TimeOfDay `json:"start_time"`
	EndTime         TimeOfDay `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
}

// SpanMinutes returns the day's scheduled length, wrapping past midnight
// when the end time is not after the start time.
func (d PlanDay) SpanMinutes() int {
	return SpanMinutes(d.StartTime, d.EndTime)
}

// ValidatePlan checks the plan's own fields, independent of its itinerary.
func ValidatePlan(p Plan) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.DurationDays < 1 {
		return fmt.Errorf("%w: duration must be at least one day", ErrValidation)
	}
	if p.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	if !p.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrValidation, p.Difficulty)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	return nil
}

// ValidateItinerary checks the day set against the plan.
//
// Day numbers must be unique and lie within [1, DurationDays] at all times.
// When forPublish is true the set must additionally be complete — exactly
// {1..DurationDays} with no gaps and at least one day. Draft plans may
// carry partial itineraries; published ones may not.
func ValidateItinerary(p Plan, days []PlanDay, forPublish bool) error {
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if d.DayNumber < 1 || d.DayNumber > p.DurationDays {
			return fmt.Errorf("%w: day number %d outside 1..%d", ErrIncompleteItinerary, d.DayNumber, p.DurationDays)
		}
		if seen[d.DayNumber] {
			return fmt.Errorf("%w: duplicate day number %d", ErrIncompleteItinerary, d.DayNumber)
		}
		seen[d.DayNumber] = true
		if strings.TrimSpace(d.Title) == "" {
			return fmt.Errorf("%w: day %d: title is required", ErrValidation, d.DayNumber)
		}
		if !d.StartTime.Valid() || !d.EndTime.Valid() {
			return fmt.Errorf("%w: day %d: time of day out of range", ErrValidation, d.DayNumber)
		}
		if d.EndTime == d.StartTime {
			return fmt.Errorf("%w: day %d: end time equals start time", ErrValidation, d.DayNumber)
		}
	}
	if forPublish {
		if len(days) == 0 {
			return fmt.Errorf("%w: plan has no itinerary days", ErrIncompleteItinerary)
		}
		for n := 1; n <= p.DurationDays; n++ {
			if !seen[n] {
				return fmt.Errorf("%w: missing day %d", ErrIncompleteItinerary, n)
			}
		}
	}
	return nil
}
