package domain

import (
	"sync"
	"testing"
	"time"
)

func TestConfig_AddAlarmDefinition(t *testing.T) {
	t.Run("assigns max plus one", func(t *testing.T) {
		cfg := NewConfig(DefaultSettings())
		cfg.AddAlarmDefinition(recurringAlarm(7, 6, 0, Monday))
		cfg.AddAlarmDefinition(recurringAlarm(2, 6, 0, Tuesday))

		fresh := &AlarmDefinition{Hour: 8, Recurring: []Weekday{Friday}}
		cfg.AddAlarmDefinition(fresh)
		if fresh.ID == nil || *fresh.ID != 8 {
			t.Errorf("assigned id = %v, want 8", fresh.ID)
		}
	})

	t.Run("first id is zero", func(t *testing.T) {
		cfg := NewConfig(DefaultSettings())
		fresh := &AlarmDefinition{Recurring: []Weekday{Monday}}
		cfg.AddAlarmDefinition(fresh)
		if *fresh.ID != 0 {
			t.Errorf("assigned id = %d, want 0", *fresh.ID)
		}
	})

	t.Run("list stays sorted by id", func(t *testing.T) {
		cfg := NewConfig(DefaultSettings())
		cfg.AddAlarmDefinition(recurringAlarm(5, 6, 0, Monday))
		cfg.AddAlarmDefinition(recurringAlarm(1, 7, 0, Tuesday))
		cfg.AddAlarmDefinition(recurringAlarm(3, 8, 0, Friday))

		ids := []int{}
		for _, a := range cfg.AlarmDefinitions() {
			ids = append(ids, *a.ID)
		}
		for i := 1; i < len(ids); i++ {
			if ids[i-1] >= ids[i] {
				t.Fatalf("ids not strictly ascending: %v", ids)
			}
		}
	})

	t.Run("invokes the change hook", func(t *testing.T) {
		cfg := NewConfig(DefaultSettings())
		calls := 0
		cfg.OnChange(func() { calls++ })
		cfg.AddAlarmDefinition(recurringAlarm(0, 6, 0, Monday))
		if calls != 1 {
			t.Errorf("change hook calls = %d, want 1", calls)
		}
	})
}

func TestConfig_UpdateAlarmDefinition(t *testing.T) {
	cfg := NewConfig(DefaultSettings())
	cfg.AddAlarmDefinition(recurringAlarm(3, 6, 0, Monday))

	replacement := recurringAlarm(3, 9, 30, Sunday)
	cfg.UpdateAlarmDefinition(replacement)

	alarms := cfg.AlarmDefinitions()
	if len(alarms) != 1 {
		t.Fatalf("alarm count = %d, want 1", len(alarms))
	}
	if *alarms[0].ID != 3 || alarms[0].Hour != 9 {
		t.Errorf("stored alarm = id %d hour %d, want id 3 hour 9", *alarms[0].ID, alarms[0].Hour)
	}
}

func TestConfig_RemoveAlarmDefinition(t *testing.T) {
	cfg := NewConfig(DefaultSettings())
	cfg.AddAlarmDefinition(recurringAlarm(0, 6, 0, Monday))

	calls := 0
	cfg.OnChange(func() { calls++ })

	if !cfg.RemoveAlarmDefinition(0) {
		t.Error("RemoveAlarmDefinition(0) = false, want true")
	}
	if cfg.RemoveAlarmDefinition(0) {
		t.Error("second RemoveAlarmDefinition(0) = true, want false")
	}
	if calls != 1 {
		t.Errorf("change hook calls = %d, want 1 (no notify on absent id)", calls)
	}
	if len(cfg.AlarmDefinitions()) != 0 {
		t.Error("alarm list not empty after removal")
	}
}

func TestConfig_AudioStreams(t *testing.T) {
	cfg := NewConfig(DefaultSettings())
	a := cfg.AddAudioStream(AudioStream{ID: -1, Name: "one", URL: "http://one"})
	b := cfg.AddAudioStream(AudioStream{ID: -1, Name: "two", URL: "http://two"})
	if a.ID != 0 || b.ID != 1 {
		t.Errorf("assigned ids = %d, %d, want 0, 1", a.ID, b.ID)
	}

	got, ok := cfg.GetAudioStream(1)
	if !ok || got.Name != "two" {
		t.Errorf("GetAudioStream(1) = %v, %v", got, ok)
	}

	if !cfg.RemoveAudioStream(0) {
		t.Error("RemoveAudioStream(0) = false, want true")
	}
	if len(cfg.AudioStreams()) != 1 {
		t.Errorf("stream count = %d, want 1", len(cfg.AudioStreams()))
	}
}

func TestConfig_AddPowernapAlarm(t *testing.T) {
	t.Run("without streams", func(t *testing.T) {
		cfg := NewConfig(DefaultSettings())
		if _, err := cfg.AddPowernapAlarm(time.Now()); err != ErrNoAudioStreams {
			t.Errorf("AddPowernapAlarm() error = %v, want ErrNoAudioStreams", err)
		}
	})

	t.Run("schedules one-time nap", func(t *testing.T) {
		cfg := NewConfig(DefaultSettings())
		cfg.AddAudioStream(AudioStream{ID: -1, Name: "radio", URL: "http://radio"})

		now := time.Date(2026, time.March, 4, 14, 0, 0, 0, time.Local)
		nap, err := cfg.AddPowernapAlarm(now)
		if err != nil {
			t.Fatalf("AddPowernapAlarm() error = %v", err)
		}
		if !nap.IsOneTime() {
			t.Fatal("powernap alarm is not one-time")
		}
		// 18 minutes nap plus one minute margin
		if nap.Hour != 14 || nap.Minute != 19 {
			t.Errorf("nap time = %02d:%02d, want 14:19", nap.Hour, nap.Minute)
		}
		if nap.AudioEffect == nil {
			t.Fatal("powernap alarm has no audio effect")
		}
		if nap.ID == nil {
			t.Error("powernap alarm was not added to the configuration")
		}
	})
}

func TestConfig_OfflineAlarmEffect(t *testing.T) {
	cfg := NewConfig(DefaultSettings())
	effect := cfg.OfflineAlarmEffect(0.7)
	if effect.Stream.URL != cfg.Settings.OfflineAlarmFile {
		t.Errorf("offline url = %q, want %q", effect.Stream.URL, cfg.Settings.OfflineAlarmFile)
	}
	if effect.Volume != 0.7 {
		t.Errorf("offline volume = %v, want 0.7", effect.Volume)
	}
}

func TestAlarmDefinition_SetFutureDate(t *testing.T) {
	now := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.Local)
	tests := []struct {
		name   string
		hour   int
		minute int
		want   Date
	}{
		{name: "later today stays today", hour: 11, minute: 0, want: Date{2026, time.March, 4}},
		{name: "exactly now stays today", hour: 10, minute: 30, want: Date{2026, time.March, 4}},
		{name: "earlier today rolls to tomorrow", hour: 9, minute: 0, want: Date{2026, time.March, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &AlarmDefinition{Recurring: []Weekday{Monday}}
			a.SetFutureDate(tt.hour, tt.minute, now)
			if !a.IsOneTime() {
				t.Fatal("alarm is not one-time after SetFutureDate")
			}
			if *a.OneTime != tt.want {
				t.Errorf("date = %v, want %v", *a.OneTime, tt.want)
			}
		})
	}
}

func TestAlarmDefinition_DayString(t *testing.T) {
	date := Date{2026, time.March, 7}
	tests := []struct {
		name    string
		alarm   *AlarmDefinition
		want    string
		wantErr bool
	}{
		{
			name:  "recurring abbreviations",
			alarm: &AlarmDefinition{Recurring: []Weekday{Monday, Wednesday, Friday}},
			want:  "Mo, We, Fr",
		},
		{
			name:  "one-time date",
			alarm: &AlarmDefinition{OneTime: &date},
			want:  "2026-03-07",
		},
		{
			name:    "neither is an error",
			alarm:   &AlarmDefinition{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.alarm.DayString()
			if (err != nil) != tt.wantErr {
				t.Fatalf("DayString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DayString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	cfg := NewConfig(DefaultSettings())
	keep := &AlarmDefinition{Name: "fixed", IsActive: true, Hour: 6}
	cfg.AddAlarmDefinition(keep)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			a := &AlarmDefinition{Name: "churn", Hour: 7}
			cfg.AddAlarmDefinition(a)
			cfg.RemoveAlarmDefinition(*a.ID)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if cfg.GetAlarmDefinition(*keep.ID) == nil {
				t.Error("GetAlarmDefinition() lost the fixed alarm")
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			cfg.AlarmDefinitions()
		}
	}()
	wg.Wait()

	defs := cfg.AlarmDefinitions()
	if len(defs) != 1 {
		t.Fatalf("AlarmDefinitions() len = %d, want 1", len(defs))
	}
	if defs[0].Name != "fixed" {
		t.Errorf("surviving alarm = %q, want %q", defs[0].Name, "fixed")
	}
}
