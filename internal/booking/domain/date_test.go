package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bookwell/internal/booking/domain"
)

func TestParseDate(t *testing.T) {
	d, err := domain.ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, domain.Date{Year: 2025, Month: time.June, Day: 10}, d)
	assert.Equal(t, "2025-06-10", d.String())
	assert.Equal(t, 1, d.Weekday())
	assert.Equal(t, "2025-07-01", d.AddDays(21).String())

	for _, bad := range []string{"", "2025-6-10", "10/06/2025", "2025-02-30"} {
		_, err := domain.ParseDate(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, bad)
	}
}

func TestDate_Weekday(t *testing.T) {
	monday := domain.MustParseDate("2025-06-09")
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, monday.AddDays(i).Weekday())
	}
}

func TestParseSlot(t *testing.T) {
	s, err := domain.ParseSlot("09:30")
	require.NoError(t, err)
	assert.Equal(t, domain.Slot{Hour: 9, Minute: 30}, s)
	assert.Equal(t, "09:30", s.String())

	_, err = domain.ParseSlot("25:00")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.True(t, domain.Slot{Hour: 9, Minute: 30}.Before(domain.Slot{Hour: 10}))
	assert.False(t, domain.Slot{Hour: 10}.Before(domain.Slot{Hour: 10}))
}

func TestSlot_Valid(t *testing.T) {
	assert.True(t, domain.Slot{}.Valid())
	assert.True(t, domain.Slot{Hour: 23, Minute: 59}.Valid())
	assert.False(t, domain.Slot{Hour: 24}.Valid())
	assert.False(t, domain.Slot{Hour: 38}.Valid())
	assert.False(t, domain.Slot{Hour: -1}.Valid())
	assert.False(t, domain.Slot{Hour: 13, Minute: 60}.Valid())
	assert.False(t, domain.Slot{Hour: 13, Minute: -1}.Valid())
}

func TestActor(t *testing.T) {
	assert.NoError(t, domain.Admin(uuid.New()).RequireAdmin())
	assert.ErrorIs(t, domain.Customer(uuid.New()).RequireAdmin(), domain.ErrForbidden)
}
