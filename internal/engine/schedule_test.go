package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Order(t *testing.T) {
	s := NewScheduler()
	assert.Equal(t, BeforeStart, s.Now())

	require.NoError(t, s.ScheduleOnceIn(2, Task{Kind: TaskGroupStep, ID: 1}))
	require.NoError(t, s.ScheduleOnceIn(1.5, Task{Kind: TaskAgentStep, ID: 1}))
	require.NoError(t, s.ScheduleOnceIn(1.5, Task{Kind: TaskAgentStep, ID: 2}))
	require.NoError(t, s.ScheduleOnceIn(1.1, Task{Kind: TaskYearStart}))
	assert.Equal(t, 4, s.Len())

	var got []Task
	var times []float64
	for {
		task, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, task)
		times = append(times, s.Now())
	}

	assert.Equal(t, []Task{
		{Kind: TaskYearStart},
		{Kind: TaskAgentStep, ID: 1},
		{Kind: TaskAgentStep, ID: 2}, // ties keep insertion order
		{Kind: TaskGroupStep, ID: 1},
	}, got)
	assert.InDelta(t, 0.1, times[0], 1e-9)
	assert.Equal(t, []float64{0.5, 0.5, 1}, times[1:])
}

func TestScheduler_RelativeToNow(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.ScheduleOnceIn(1.5, Task{}))
	_, _ = s.Next()
	require.NoError(t, s.ScheduleOnceIn(1, Task{ID: 9}))

	task, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, int64(9), task.ID)
	assert.Equal(t, 1.5, s.Now())
}

func TestScheduler_NegativeDelay(t *testing.T) {
	s := NewScheduler()
	assert.ErrorIs(t, s.ScheduleOnceIn(-0.5, Task{}), ErrNegativeDelay)
	assert.Equal(t, 0, s.Len())
	assert.NoError(t, s.ScheduleOnceIn(0, Task{}))
}

func TestScheduler_Seal(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.ScheduleOnceIn(1, Task{}))
	s.Seal()

	assert.True(t, s.Sealed())
	_, ok := s.Next()
	assert.False(t, ok)

	require.NoError(t, s.ScheduleOnceIn(1, Task{}))
	assert.Equal(t, 0, s.Len(), "scheduling after seal is ignored")
}

func TestCalendar(t *testing.T) {
	assert.True(t, NextMonthInAcademicYear(0.1))
	assert.True(t, NextMonthInAcademicYear(7.5))
	assert.False(t, NextMonthInAcademicYear(8.5))
	assert.False(t, NextMonthInAcademicYear(9.1))
	assert.False(t, NextMonthInAcademicYear(11))
	assert.True(t, NextMonthInAcademicYear(12.1))

	assert.Equal(t, 0, CurrentYear(11.9))
	assert.Equal(t, 1, CurrentYear(12))
	assert.Equal(t, 2, CurrentYear(24.1))

	assert.False(t, IsEndOfSim(9.1, 1))
	assert.False(t, IsEndOfSim(12, 1))
	assert.True(t, IsEndOfSim(12.1, 1))

	assert.True(t, IsLastYear(8.5, 1))
	assert.False(t, IsLastYear(8.5, 2))
	assert.True(t, IsLastYear(20.5, 2))

	assert.Equal(t, "Year 1 Month 1 (term)", SimTime(0.5))
	assert.Equal(t, "Year 2 Month 10 (summer)", SimTime(21.1))
	assert.Equal(t, "before start", SimTime(BeforeStart))
}
