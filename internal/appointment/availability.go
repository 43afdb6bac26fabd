package appointment

import (
	"context"
	"fmt"
)

// Default windows every seeded doctor starts with.
var (
	MorningSlot   = TimeSlot{Start: "09:00", End: "12:00"}
	AfternoonSlot = TimeSlot{Start: "14:00", End: "17:00"}
	EveningSlot   = TimeSlot{Start: "18:00", End: "21:00"}
)

// DefaultAvailability returns a fresh map with the morning, afternoon and
// evening windows on each configured weekday.
func DefaultAvailability() Availability {
	availability := make(Availability, len(Weekdays))
	for _, day := range Weekdays {
		availability[day] = []TimeSlot{MorningSlot, AfternoonSlot, EveningSlot}
	}
	return availability
}

// Calendar reads and replaces a doctor's weekday windows. Writes go through
// a whole-doctor replace on the repository.
type Calendar struct {
	repo Repository
}

func NewCalendar(repo Repository) *Calendar {
	return &Calendar{repo: repo}
}

// GetSlots returns the configured windows; an unknown doctor or an unset day
// yields an empty slice.
func (c *Calendar) GetSlots(ctx context.Context, doctorID string, day Weekday) ([]TimeSlot, error) {
	return getSlots(ctx, c.repo, doctorID, day)
}

// SetSlots replaces the windows of one weekday. It reports false when the
// doctor does not exist, in which case nothing is written.
func (c *Calendar) SetSlots(ctx context.Context, doctorID string, day Weekday, slots []TimeSlot) (bool, error) {
	return setSlots(ctx, c.repo, doctorID, day, slots)
}

func getSlots(ctx context.Context, repo Repository, doctorID string, day Weekday) ([]TimeSlot, error) {
	doctor, ok, err := repo.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !ok {
		return []TimeSlot{}, nil
	}

	slots := doctor.Availability[day]
	if slots == nil {
		return []TimeSlot{}, nil
	}
	return slots, nil
}

func setSlots(ctx context.Context, repo Repository, doctorID string, day Weekday, slots []TimeSlot) (bool, error) {
	doctor, ok, err := repo.GetDoctor(ctx, doctorID)
	if err != nil {
		return false, fmt.Errorf("load doctor: %w", err)
	}
	if !ok {
		return false, nil
	}

	if doctor.Availability == nil {
		doctor.Availability = make(Availability)
	}
	doctor.Availability[day] = append([]TimeSlot{}, slots...)

	if err := repo.ReplaceDoctor(ctx, doctor); err != nil {
		return false, fmt.Errorf("replace doctor: %w", err)
	}
	return true, nil
}
