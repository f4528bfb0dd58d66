package domain

import (
	"testing"
	"time"
)

func TestWeeklyTrigger_NextRun(t *testing.T) {
	loc := time.UTC
	// Wednesday
	after := time.Date(2026, time.March, 4, 10, 0, 0, 0, loc)

	tests := []struct {
		name     string
		weekdays []Weekday
		hour     int
		minute   int
		want     time.Time
		wantOK   bool
	}{
		{
			name:     "later same day",
			weekdays: []Weekday{Wednesday},
			hour:     11, minute: 30,
			want:   time.Date(2026, time.March, 4, 11, 30, 0, 0, loc),
			wantOK: true,
		},
		{
			name:     "already passed rolls a week",
			weekdays: []Weekday{Wednesday},
			hour:     9, minute: 0,
			want:   time.Date(2026, time.March, 11, 9, 0, 0, 0, loc),
			wantOK: true,
		},
		{
			name:     "picks the nearest weekday in the set",
			weekdays: []Weekday{Monday, Friday},
			hour:     7, minute: 0,
			want:   time.Date(2026, time.March, 6, 7, 0, 0, 0, loc),
			wantOK: true,
		},
		{
			name:     "sunday uses domain numbering",
			weekdays: []Weekday{Sunday},
			hour:     8, minute: 0,
			want:   time.Date(2026, time.March, 8, 8, 0, 0, 0, loc),
			wantOK: true,
		},
		{
			name:     "empty set never fires",
			weekdays: nil,
			hour:     7, minute: 0,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := WeeklyTrigger{Weekdays: tt.weekdays, Hour: tt.hour, Minute: tt.minute, Location: loc}
			got, ok := trigger.NextRun(after)
			if ok != tt.wantOK {
				t.Fatalf("NextRun() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateTrigger_NextRun(t *testing.T) {
	loc := time.UTC
	after := time.Date(2026, time.March, 4, 10, 0, 0, 0, loc)

	t.Run("future date fires once", func(t *testing.T) {
		trigger := DateTrigger{Date: Date{2026, time.March, 5}, Hour: 6, Minute: 45, Location: loc}
		got, ok := trigger.NextRun(after)
		if !ok {
			t.Fatal("NextRun() ok = false, want true")
		}
		want := time.Date(2026, time.March, 5, 6, 45, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("NextRun() = %v, want %v", got, want)
		}
		if _, ok := trigger.NextRun(got); ok {
			t.Error("NextRun() after firing = ok, want expired")
		}
	})

	t.Run("past date is expired", func(t *testing.T) {
		trigger := DateTrigger{Date: Date{2026, time.March, 4}, Hour: 9, Minute: 0, Location: loc}
		if _, ok := trigger.NextRun(after); ok {
			t.Error("NextRun() ok = true for passed date")
		}
	})
}

func TestOneShotTrigger_NextRun(t *testing.T) {
	at := time.Date(2026, time.March, 4, 10, 5, 0, 0, time.UTC)
	trigger := OneShotTrigger{At: at}

	got, ok := trigger.NextRun(at.Add(-time.Minute))
	if !ok || !got.Equal(at) {
		t.Errorf("NextRun() = %v, %v, want %v, true", got, ok, at)
	}
	if _, ok := trigger.NextRun(at); ok {
		t.Error("NextRun() at the firing instant = ok, want expired")
	}
}

func TestIntervalTrigger_NextRun(t *testing.T) {
	after := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

	trigger := IntervalTrigger{Every: time.Minute}
	got, ok := trigger.NextRun(after)
	if !ok || !got.Equal(after.Add(time.Minute)) {
		t.Errorf("NextRun() = %v, %v, want %v, true", got, ok, after.Add(time.Minute))
	}

	if _, ok := (IntervalTrigger{}).NextRun(after); ok {
		t.Error("zero interval reported a next run")
	}
}

func TestAlarmDefinition_TriggerSpec(t *testing.T) {
	loc := time.UTC
	after := time.Date(2026, time.March, 4, 10, 0, 0, 0, loc)

	t.Run("recurring maps to weekly", func(t *testing.T) {
		a := &AlarmDefinition{Hour: 7, Minute: 15, Recurring: []Weekday{Thursday}}
		spec, err := a.TriggerSpec(loc)
		if err != nil {
			t.Fatalf("TriggerSpec() error = %v", err)
		}
		got, ok := spec.NextRun(after)
		want := time.Date(2026, time.March, 5, 7, 15, 0, 0, loc)
		if !ok || !got.Equal(want) {
			t.Errorf("NextRun() = %v, %v, want %v, true", got, ok, want)
		}
	})

	t.Run("one-time maps to date", func(t *testing.T) {
		a := &AlarmDefinition{Hour: 7, Minute: 15, OneTime: &Date{2026, time.March, 6}}
		spec, err := a.TriggerSpec(loc)
		if err != nil {
			t.Fatalf("TriggerSpec() error = %v", err)
		}
		got, ok := spec.NextRun(after)
		want := time.Date(2026, time.March, 6, 7, 15, 0, 0, loc)
		if !ok || !got.Equal(want) {
			t.Errorf("NextRun() = %v, %v, want %v, true", got, ok, want)
		}
	})

	t.Run("neither set is invalid", func(t *testing.T) {
		a := &AlarmDefinition{}
		if _, err := a.TriggerSpec(loc); err != ErrInvalidAlarmDefinition {
			t.Errorf("TriggerSpec() error = %v, want ErrInvalidAlarmDefinition", err)
		}
	})
}
