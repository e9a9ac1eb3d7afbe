package models

import (
	"errors"
	"testing"
	"time"

	"riego/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func datePtr(year int, month time.Month, day int) *datatypes.Date {
	d := date(year, month, day)
	return &d
}

func newSchedule() *Schedule {
	return &Schedule{
		ZoneID:          1,
		Name:            "Riego Mañana Jardín",
		StartTime:       "07:00",
		DurationMinutes: 45,
		Frequency:       FrequencyDaily,
		StartDate:       date(2025, 1, 1),
		Status:          ScheduleStatusActive,
		FlowRate:        decimal.NewFromInt(10),
		Priority:        7,
		Active:          true,
	}
}

func TestSchedule_TotalConsumption(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		flow     string
		expected string
	}{
		{name: "integer flow", duration: 45, flow: "10", expected: "450"},
		{name: "fractional flow", duration: 30, flow: "12.50", expected: "375"},
		{name: "two decimals kept", duration: 7, flow: "0.33", expected: "2.31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := newSchedule()
			schedule.DurationMinutes = tt.duration
			schedule.FlowRate = decimal.RequireFromString(tt.flow)

			expected := decimal.RequireFromString(tt.expected)
			assert.True(
				t,
				expected.Equal(schedule.TotalConsumption()),
				"expected %s got %s", expected, schedule.TotalConsumption(),
			)
		})
	}
}

func TestSchedule_IsCurrent(t *testing.T) {
	schedule := newSchedule()
	schedule.EndDate = datePtr(2025, 3, 31)

	tests := []struct {
		name     string
		today    time.Time
		expected bool
	}{
		{"inside range", time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC), true},
		{"start day", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"end day late evening", time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC), true},
		{"day before start", time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), false},
		{"day after end", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schedule.IsCurrent(tt.today))
		})
	}

	t.Run("open ended", func(t *testing.T) {
		open := newSchedule()
		assert.True(t, open.IsCurrent(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("inactive flag is ignored", func(t *testing.T) {
		inactive := newSchedule()
		inactive.Active = false
		assert.True(t, inactive.IsCurrent(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)))
	})
}

func TestSchedule_HasEnded(t *testing.T) {
	schedule := newSchedule()
	assert.False(t, schedule.HasEnded(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	schedule.EndDate = datePtr(2025, 3, 31)
	assert.False(t, schedule.HasEnded(time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)))
	assert.True(t, schedule.HasEnded(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSchedule_Validate(t *testing.T) {
	zone := newZone(500, 25000)

	tests := []struct {
		name        string
		mutate      func(s *Schedule)
		zone        *Zone
		expectField string
		expectMsg   string
	}{
		{
			name:   "valid daily schedule",
			mutate: func(s *Schedule) {},
			zone:   zone,
		},
		{
			name: "valid weekly schedule",
			mutate: func(s *Schedule) {
				s.Frequency = FrequencyWeekly
				s.Weekdays = datatypes.JSONSlice[Weekday]{Monday, Wednesday, Friday}
			},
			zone: zone,
		},
		{
			name:        "weekly without weekdays",
			mutate:      func(s *Schedule) { s.Frequency = FrequencyWeekly },
			expectField: "diasSemana",
			expectMsg:   "Debe especificar al menos un día de la semana para frecuencia semanal.",
		},
		{
			name: "unknown weekday",
			mutate: func(s *Schedule) {
				s.Frequency = FrequencyWeekly
				s.Weekdays = datatypes.JSONSlice[Weekday]{"funday"}
			},
			expectField: "diasSemana",
		},
		{
			name:        "end date equal to start date",
			mutate:      func(s *Schedule) { s.EndDate = datePtr(2025, 1, 1) },
			expectField: "fechaFin",
			expectMsg:   "La fecha de fin debe ser posterior a la fecha de inicio.",
		},
		{
			name:        "end date before start date",
			mutate:      func(s *Schedule) { s.EndDate = datePtr(2024, 12, 1) },
			expectField: "fechaFin",
		},
		{
			name:   "end date after start date",
			mutate: func(s *Schedule) { s.EndDate = datePtr(2025, 1, 2) },
		},
		{
			name:        "zero duration",
			mutate:      func(s *Schedule) { s.DurationMinutes = 0 },
			expectField: "duracionMinutos",
			expectMsg:   "La duración debe ser mayor que cero.",
		},
		{
			name:        "duration above eight hours",
			mutate:      func(s *Schedule) { s.DurationMinutes = 481 },
			expectField: "duracionMinutos",
			expectMsg:   "La duración no puede ser mayor a 480 minutos (8 horas).",
		},
		{
			name:        "zero flow rate",
			mutate:      func(s *Schedule) { s.FlowRate = decimal.Zero },
			expectField: "caudalLitrosMinuto",
		},
		{
			name:        "flow rate above maximum",
			mutate:      func(s *Schedule) { s.FlowRate = decimal.NewFromInt(1001) },
			expectField: "caudalLitrosMinuto",
		},
		{
			name:        "priority out of range",
			mutate:      func(s *Schedule) { s.Priority = 11 },
			expectField: "prioridad",
		},
		{
			name:        "bad start time",
			mutate:      func(s *Schedule) { s.StartTime = "25:61" },
			expectField: "horaInicio",
		},
		{
			name:        "consumption above zone capacity",
			mutate:      func(s *Schedule) { s.DurationMinutes = 60; s.FlowRate = decimal.NewFromInt(10) },
			zone:        newZone(10, 500),
			expectField: "duracionMinutos",
			expectMsg:   "El consumo total (600.00L) supera la capacidad de la zona (500.00L).",
		},
		{
			name:   "consumption equal to zone capacity",
			mutate: func(s *Schedule) { s.DurationMinutes = 50; s.FlowRate = decimal.NewFromInt(10) },
			zone:   newZone(10, 500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := newSchedule()
			tt.mutate(schedule)

			err := schedule.Validate(tt.zone)
			if tt.expectField == "" {
				assert.NoError(t, err)
				return
			}

			fields := fieldErrors(t, err)
			require.Contains(t, fields, tt.expectField)
			if tt.expectMsg != "" {
				assert.Contains(t, fields[tt.expectField], tt.expectMsg)
			}
		})
	}
}

func TestCheckZoneActive(t *testing.T) {
	active := newZone(500, 25000)
	assert.NoError(t, CheckZoneActive(active))

	inactive := newZone(500, 25000)
	inactive.Active = false
	err := CheckZoneActive(inactive)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDomain))
	assert.Equal(t, ErrMsgInactiveZone, err.Error())

	assert.Error(t, CheckZoneActive(nil))
}

func TestSchedule_Normalize(t *testing.T) {
	schedule := &Schedule{Name: "  Riego  ", StartTime: "7:05"}
	schedule.Normalize()

	assert.Equal(t, "Riego", schedule.Name)
	assert.Equal(t, TimeOfDay("07:05:00"), schedule.StartTime)
	assert.Equal(t, FrequencyDaily, schedule.Frequency)
	assert.Equal(t, ScheduleStatusActive, schedule.Status)
	assert.Equal(t, SCHEDULE_DEFAULT_PRIORITY, schedule.Priority)
	assert.NotNil(t, schedule.Weekdays)
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		input    string
		expected TimeOfDay
		valid    bool
	}{
		{"07:00", "07:00:00", true},
		{"18:30:15", "18:30:15", true},
		{"7:00", "07:00:00", true},
		{"24:00", "", false},
		{"noon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, err := ParseTimeOfDay(tt.input)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, parsed)
		})
	}

	assert.Equal(t, TimeOfDay("00:15:00"), TimeOfDay("23:45").AddMinutes(30))
	assert.Equal(t, "18:30", TimeOfDay("18:30:00").Short())
}
