package airports_test

import (
	"testing"

	"github.com/dharmasatrya/travelsearch/internal/airports"
)

func TestLookup(t *testing.T) {
	info := airports.Lookup("jfk")
	if info.City != "New York" {
		t.Errorf("expected New York, got %s", info.City)
	}

	unknown := airports.Lookup("ZZZ")
	if unknown.Name != "ZZZ" || unknown.City != "ZZZ" {
		t.Errorf("unknown code should fall back to the code itself, got %+v", unknown)
	}
}

func TestCurrency(t *testing.T) {
	cases := map[string]string{
		"LHR": "GBP",
		"cdg": "EUR",
		"NRT": "JPY",
		"JFK": "USD",
		"ZZZ": "USD",
	}
	for code, want := range cases {
		if got := airports.Currency(code); got != want {
			t.Errorf("Currency(%s) = %s, want %s", code, got, want)
		}
	}
}

func TestAirlineName(t *testing.T) {
	if got := airports.AirlineName("ba"); got != "British Airways" {
		t.Errorf("expected British Airways, got %s", got)
	}
	if got := airports.AirlineName("Z9"); got != "Z9" {
		t.Errorf("unknown airline should fall back to the code, got %s", got)
	}
}

func TestEstimateDurationMinutes(t *testing.T) {
	if got := airports.EstimateDurationMinutes("JFK", "LAX"); got != 360 {
		t.Errorf("expected 360 for a tabled route, got %d", got)
	}
	if got := airports.EstimateDurationMinutes("ABC", "XYZ"); got != 240 {
		t.Errorf("expected 240 default, got %d", got)
	}
}
