package util

import (
	"math"
	"testing"
)

func TestHaversineDistanceKnownPair(t *testing.T) {
	// Missoula to Bozeman, roughly 163 km.
	d := HaversineDistance(46.8721, -113.9940, 45.6770, -111.0429)
	if d < 150000 || d > 280000 {
		t.Fatalf("implausible distance: %f", d)
	}

	if HaversineDistance(45, -110, 45, -110) != 0 {
		t.Fatal("distance from a point to itself must be zero")
	}
}

func TestDestinationPointRoundTrip(t *testing.T) {
	lat, lng := 46.8721, -113.9940

	for bearing := 0.0; bearing < 360; bearing += 15 {
		for _, dist := range []float64{100, 250, 400, 1500} {
			dLat, dLng := DestinationPoint(lat, lng, bearing, dist)

			gotDist := HaversineDistance(lat, lng, dLat, dLng)
			if math.Abs(gotDist-dist) > 1.0 {
				t.Errorf("bearing %.0f dist %.0f: got distance %.2f", bearing, dist, gotDist)
			}

			gotBearing := InitialBearing(lat, lng, dLat, dLng)
			if AngularDiff(gotBearing, bearing) > 0.5 {
				t.Errorf("bearing %.0f dist %.0f: recovered bearing %.3f", bearing, dist, gotBearing)
			}
		}
	}
}

func TestMoveTowardClampsAtEnd(t *testing.T) {
	got := MoveToward(45.0, -110.0, 45.001, -110.0, 1e6)
	if got[0] != 45.001 || got[1] != -110.0 {
		t.Fatalf("expected end point, got %v", got)
	}
}

func TestNormalizeBearing(t *testing.T) {
	cases := map[float64]float64{
		-90:  270,
		0:    0,
		360:  0,
		725:  5,
		-360: 0,
	}
	for in, want := range cases {
		if got := NormalizeBearing(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("NormalizeBearing(%f) = %f, want %f", in, got, want)
		}
	}
}

func TestAngularDiff(t *testing.T) {
	if d := AngularDiff(350, 10); d != 20 {
		t.Errorf("expected 20, got %f", d)
	}
	if d := AngularDiff(180, 0); d != 180 {
		t.Errorf("expected 180, got %f", d)
	}
}

func TestWithinBand(t *testing.T) {
	if !WithinBand(180, 135, 225) {
		t.Error("south must be inside the south band")
	}
	if WithinBand(70, 135, 225) {
		t.Error("east must be outside the south band")
	}
	// Band wrapping north.
	if !WithinBand(350, 315, 45) {
		t.Error("350 must be inside the wrapped band")
	}
	if WithinBand(180, 315, 45) {
		t.Error("south must be outside the wrapped band")
	}
}
