package slotgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

var daytime = &model.WorkWindow{
	Start: model.TimeOfDay{Hour: 9},
	End:   model.TimeOfDay{Hour: 17},
}

var overnight = &model.WorkWindow{
	Start:       model.TimeOfDay{Hour: 22},
	End:         model.TimeOfDay{Hour: 6},
	IsOvernight: true,
}

func TestSnapToWindow_NilWindowIsIdentity(t *testing.T) {
	ts := day(0, 3)
	assert.True(t, ts.Equal(snapToWindow(ts, nil)))
}

func TestSnapToWindow_InsideWindowIsIdentity(t *testing.T) {
	ts := day(0, 12)
	assert.True(t, ts.Equal(snapToWindow(ts, daytime)))
}

func TestSnapToWindow_BeforeOpeningSnapsToSameDay(t *testing.T) {
	assert.True(t, day(0, 9).Equal(snapToWindow(day(0, 6), daytime)))
}

func TestSnapToWindow_AfterClosingSnapsToNextDay(t *testing.T) {
	assert.True(t, day(1, 9).Equal(snapToWindow(day(0, 18), daytime)))
}

func TestSnapToWindow_OvernightGapSnapsToSameDayStart(t *testing.T) {
	// 10:00 sits in the daytime gap of a 22:00-06:00 window
	assert.True(t, day(0, 22).Equal(snapToWindow(day(0, 10), overnight)))
}

func TestSnapToWindow_OvernightEarlyHalfIsInside(t *testing.T) {
	ts := day(0, 3)
	assert.True(t, ts.Equal(snapToWindow(ts, overnight)))
}

func TestNextWindowStart_StrictlyAfter(t *testing.T) {
	// At exactly the window start the next one is tomorrow's
	assert.True(t, day(1, 9).Equal(nextWindowStart(day(0, 9), daytime)))
	assert.True(t, day(0, 9).Equal(nextWindowStart(day(0, 3), daytime)))
}

func TestNextWindowStart_NilWindowAdvancesOneDay(t *testing.T) {
	assert.True(t, day(1, 7).Equal(nextWindowStart(day(0, 7), nil)))
}

func TestWindowEndFor_Daytime(t *testing.T) {
	assert.True(t, day(0, 17).Equal(windowEndFor(day(0, 10), daytime)))
}

func TestWindowEndFor_OvernightLateHalfEndsTomorrow(t *testing.T) {
	assert.True(t, day(1, 6).Equal(windowEndFor(day(0, 23), overnight)))
}

func TestWindowEndFor_OvernightEarlyHalfEndsToday(t *testing.T) {
	assert.True(t, day(0, 6).Equal(windowEndFor(day(0, 2), overnight)))
}
