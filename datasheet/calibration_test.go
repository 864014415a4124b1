package datasheet

import "testing"

func TestCalibrationApply(t *testing.T) {
	tests := []struct {
		name string
		cal  Calibration
		size int64
		want int64
	}{
		{"zero-value-identity", Calibration{}, 12, 12},
		{"explicit-identity", Calibration{Num: 1, Den: 1}, 12, 12},
		{"subtract-header", Calibration{Num: 1, Den: 1, Add: -2}, 12, 10},
		{"add-trailer", Calibration{Num: 1, Den: 1, Add: 4}, 12, 16},
		{"bytes-to-words", Calibration{Num: 1, Den: 2}, 12, 6},
		{"words-offset", Calibration{Num: 1, Den: 4, Add: -1}, 16, 3},
		{"scale-up", Calibration{Num: 8, Den: 1}, 3, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cal.Apply(tt.size); got != tt.want {
				t.Errorf("Apply(%d) = %d, want %d", tt.size, got, tt.want)
			}
			if back := tt.cal.Invert(tt.cal.Apply(tt.size)); back != tt.size {
				t.Errorf("Invert(Apply(%d)) = %d, want %d", tt.size, back, tt.size)
			}
		})
	}
}

func TestCalibrationIdentity(t *testing.T) {
	tests := []struct {
		name string
		cal  Calibration
		want bool
	}{
		{"zero-value", Calibration{}, true},
		{"explicit", Calibration{Num: 3, Den: 3}, true},
		{"offset", Calibration{Add: -2}, false},
		{"scaled", Calibration{Num: 1, Den: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cal.Identity(); got != tt.want {
				t.Errorf("Identity() = %v, want %v", got, tt.want)
			}
		})
	}
}
