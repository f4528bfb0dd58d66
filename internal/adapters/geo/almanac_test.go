package geo

import (
	"testing"
	"time"
)

// Berlin
var testLocation = Location{Latitude: 52.52, Longitude: 13.405}

func TestAlmanac_NextSunrise(t *testing.T) {
	a := NewAlmanac(testLocation)
	after := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

	rise, err := a.NextSunrise(after)
	if err != nil {
		t.Fatalf("NextSunrise() error = %v", err)
	}
	if !rise.After(after) {
		t.Errorf("NextSunrise() = %v, not after %v", rise, after)
	}
	if rise.Sub(after) > 24*time.Hour {
		t.Errorf("NextSunrise() = %v, more than a day away", rise)
	}
}

func TestAlmanac_NextSunsetSameDay(t *testing.T) {
	a := NewAlmanac(testLocation)
	// noon UTC, sunset in Berlin is still ahead
	after := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	set, err := a.NextSunset(after)
	if err != nil {
		t.Fatalf("NextSunset() error = %v", err)
	}
	if !set.After(after) || set.Day() != after.Day() {
		t.Errorf("NextSunset() = %v, want later the same day", set)
	}
}

func TestAlmanac_Ordering(t *testing.T) {
	a := NewAlmanac(testLocation)
	after := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	rise, err := a.NextSunrise(after)
	if err != nil {
		t.Fatal(err)
	}
	set, err := a.NextSunset(after)
	if err != nil {
		t.Fatal(err)
	}
	if !rise.Before(set) {
		t.Errorf("sunrise %v not before sunset %v", rise, set)
	}
}
