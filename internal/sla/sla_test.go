package sla

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluate(t *testing.T) {
	contract := Contract{DownloadMbps: 100, UploadMbps: 20, ThresholdPct: 80}

	cases := []struct {
		name          string
		download      float64
		upload        float64
		wantDownPct   float64
		wantUpPct     float64
		wantCompliant bool
		wantDeviation float64
	}{
		{
			name:     "underperforming link",
			download: 45.32, upload: 9.87,
			wantDownPct: 45.32, wantUpPct: 49.35,
			wantCompliant: false, wantDeviation: -54.68,
		},
		{
			name:     "within threshold",
			download: 95, upload: 19,
			wantDownPct: 95, wantUpPct: 95,
			wantCompliant: true, wantDeviation: -5,
		},
		{
			name:     "exceeding contract on both axes",
			download: 110, upload: 22,
			wantDownPct: 110, wantUpPct: 110,
			wantCompliant: true, wantDeviation: 10,
		},
		{
			name:     "one axis failing dominates",
			download: 100, upload: 10,
			wantDownPct: 100, wantUpPct: 50,
			wantCompliant: false, wantDeviation: -50,
		},
		{
			name:     "zero throughput",
			download: 0, upload: 0,
			wantDownPct: 0, wantUpPct: 0,
			wantCompliant: false, wantDeviation: -100,
		},
		{
			name:     "exactly at threshold",
			download: 80, upload: 16,
			wantDownPct: 80, wantUpPct: 80,
			wantCompliant: true, wantDeviation: -20,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.download, tc.upload, contract)
			if !approx(res.DownloadPct, tc.wantDownPct) {
				t.Fatalf("download pct = %v, want %v", res.DownloadPct, tc.wantDownPct)
			}
			if !approx(res.UploadPct, tc.wantUpPct) {
				t.Fatalf("upload pct = %v, want %v", res.UploadPct, tc.wantUpPct)
			}
			if res.Compliant != tc.wantCompliant {
				t.Fatalf("compliant = %v, want %v", res.Compliant, tc.wantCompliant)
			}
			if !approx(res.DeviationPct, tc.wantDeviation) {
				t.Fatalf("deviation = %v, want %v", res.DeviationPct, tc.wantDeviation)
			}
		})
	}
}

func TestEvaluateZeroContract(t *testing.T) {
	res := Evaluate(50, 10, Contract{DownloadMbps: 0, UploadMbps: 0})
	if res.DownloadPct != 0 || res.UploadPct != 0 {
		t.Fatalf("expected 0 percentages with zero contract, got %+v", res)
	}
	if res.Compliant {
		t.Fatal("zero contract must not be compliant")
	}
	if res.DeviationPct != -100 {
		t.Fatalf("expected -100 deviation, got %v", res.DeviationPct)
	}
}

func TestEvaluateDefaultThreshold(t *testing.T) {
	contract := Contract{DownloadMbps: 100, UploadMbps: 20}
	if res := Evaluate(80, 16, contract); !res.Compliant {
		t.Fatal("expected default 80% threshold to apply")
	}
	if res := Evaluate(79.9, 16, contract); res.Compliant {
		t.Fatal("expected 79.9% download to fail default threshold")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	contract := Contract{DownloadMbps: 100, UploadMbps: 20, ThresholdPct: 80}
	first := Evaluate(45.32, 9.87, contract)
	second := Evaluate(45.32, 9.87, contract)
	if first != second {
		t.Fatalf("evaluation not idempotent: %+v vs %+v", first, second)
	}
}
