package llm

import "testing"

func TestStats_RecordAccumulatesCounts(t *testing.T) {
	var s Stats
	s.record(10, true, false)
	s.record(20, true, true)
	s.record(30, false, false)

	snap := s.Snapshot()
	if snap.Calls != 3 || snap.Successes != 2 || snap.Fallbacks != 1 {
		t.Fatalf("got %+v", snap)
	}
	if snap.MeanLatencyMs != 20 {
		t.Errorf("mean = %v, want 20", snap.MeanLatencyMs)
	}
}

func TestStats_WelfordMeanMatchesArithmeticMean(t *testing.T) {
	var s Stats
	samples := []float64{5, 15, 25, 35, 45}
	for _, v := range samples {
		s.record(v, true, false)
	}
	if got := s.Snapshot().MeanLatencyMs; got != 25 {
		t.Errorf("mean = %v, want 25", got)
	}
}
