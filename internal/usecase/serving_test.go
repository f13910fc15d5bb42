package usecase

import (
	"testing"
)

func TestNormalizeServingSize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantServing string
		wantMass    *float64
		wantVolume  *float64
		wantCount   *float64
	}{
		{name: "empty", input: "", wantServing: "1 serving"},
		{name: "whitespace", input: "   ", wantServing: "1 serving"},
		{name: "count of bars", input: "2 bars", wantServing: "2 bars", wantCount: f(2)},
		{name: "volume with can", input: "355 ml can", wantServing: "355 ml can", wantVolume: f(355)},
		{name: "can without volume", input: "1 can", wantServing: "1 can", wantVolume: f(355)},
		{name: "lata", input: "una lata", wantServing: "una lata", wantVolume: f(355)},
		{name: "33cl", input: "33cl bottle", wantServing: "33cl bottle", wantVolume: f(355)},
		{name: "explicit volume wins over can", input: "500 ml can", wantServing: "500 ml can", wantVolume: f(500)},
		{name: "mass", input: "150 g", wantServing: "150 g", wantMass: f(150)},
		{name: "decimal comma mass", input: "12,5g", wantServing: "12,5g", wantMass: f(12.5)},
		{name: "count plus mass", input: "2 slices (60 g)", wantServing: "2 slices (60 g)", wantMass: f(60), wantCount: f(2)},
		{name: "eggs", input: "3 eggs", wantServing: "3 eggs", wantCount: f(3)},
		{name: "multiplier", input: "4x", wantServing: "4x", wantCount: f(4)},
		{name: "unparseable", input: "a small bowl", wantServing: "a small bowl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeServingSize(tt.input)

			if got.Serving != tt.wantServing {
				t.Errorf("Serving = %q, want %q", got.Serving, tt.wantServing)
			}
			if !ptrEqual(got.Units.MassG, tt.wantMass) {
				t.Errorf("MassG = %v, want %v", deref(got.Units.MassG), deref(tt.wantMass))
			}
			if !ptrEqual(got.Units.VolumeML, tt.wantVolume) {
				t.Errorf("VolumeML = %v, want %v", deref(got.Units.VolumeML), deref(tt.wantVolume))
			}
			if !ptrEqual(got.Units.Count, tt.wantCount) {
				t.Errorf("Count = %v, want %v", deref(got.Units.Count), deref(tt.wantCount))
			}
		})
	}
}

func f(v float64) *float64 { return &v }

func ptrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
