package services

import (
	"testing"

	"github.com/gapindang/rapor-api/model"
)

func fp(v float64) *float64 { return &v }

func TestComputeFinalScore(t *testing.T) {
	tests := []struct {
		name string
		uts  *float64
		uas  *float64
		want *float64
	}{
		{"both components", fp(80), fp(90), fp(85)},
		{"uts only", fp(70), nil, fp(70)},
		{"uas only", nil, fp(65), fp(65)},
		{"neither", nil, nil, nil},
		{"uneven average rounds", fp(80), fp(75), fp(77.5)},
		{"odd sum halves", fp(71), fp(74), fp(72.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFinalScore(tt.uts, tt.uas)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ComputeFinalScore(%v, %v) = %v, want %v", tt.uts, tt.uas, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ComputeFinalScore(%v, %v) = %v, want %v", *tt.uts, *tt.uas, *got, *tt.want)
			}
		})
	}
}

func TestMeanFinalScore(t *testing.T) {
	grades := []model.Grade{
		{Final: fp(80)},
		{Final: fp(90)},
		{Final: fp(70)},
	}
	avg, ok := MeanFinalScore(grades)
	if !ok {
		t.Fatal("expected an average for graded subjects")
	}
	if avg != 80 {
		t.Errorf("average = %v, want 80", avg)
	}
}

func TestMeanFinalScoreSkipsUnrecorded(t *testing.T) {
	// A subject without any recorded component must not drag the
	// average down as a zero.
	grades := []model.Grade{
		{Final: fp(80)},
		{Final: fp(75)},
		{Final: nil},
	}
	avg, ok := MeanFinalScore(grades)
	if !ok {
		t.Fatal("expected an average")
	}
	if avg != 77.5 {
		t.Errorf("average = %v, want 77.5", avg)
	}
}

func TestMeanFinalScoreNoGrades(t *testing.T) {
	if _, ok := MeanFinalScore(nil); ok {
		t.Error("expected no average for an empty grade list")
	}
	if _, ok := MeanFinalScore([]model.Grade{{Final: nil}}); ok {
		t.Error("expected no average when every final is unrecorded")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{77.499, 77.5},
		{77.494, 77.49},
		{80, 80},
		{33.336, 33.34},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
