package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeSlotValidate(t *testing.T) {
	assert.NoError(t, TimeSlot{Start: "09:00", End: "12:00"}.Validate())

	for _, ts := range []TimeSlot{
		{Start: "12:00", End: "09:00"},
		{Start: "09:00", End: "09:00"},
		{Start: "9am", End: "12:00"},
		{Start: "09:00", End: "25:00"},
	} {
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTimeSlot, ts.String())
	}
}

func TestParseSpecialization(t *testing.T) {
	s, ok := ParseSpecialization("lung_cancer")
	assert.True(t, ok)
	assert.Equal(t, SpecializationLungCancer, s)

	s, ok = ParseSpecialization("diabetic retinopathy")
	assert.True(t, ok)
	assert.Equal(t, SpecializationDiabeticRetinopathy, s)

	_, ok = ParseSpecialization("cardiology")
	assert.False(t, ok)
}

func TestWeekdayOf(t *testing.T) {
	d, ok := WeekdayOf(baseNow)
	assert.True(t, ok)
	assert.Equal(t, Monday, d)

	d, ok = WeekdayOf(baseNow.Add(5 * 24 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, Saturday, d)

	_, ok = WeekdayOf(baseNow.Add(-24 * time.Hour))
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" Completed")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)
	assert.True(t, s.IsTerminal())
	assert.False(t, StatusScheduled.IsTerminal())

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}
