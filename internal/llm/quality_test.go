package llm

import (
	"math"
	"testing"
)

func TestEstimateQuality_PenalizesShortResponse(t *testing.T) {
	if q := EstimateQuality("ok"); math.Abs(q-0.7) > 1e-9 {
		t.Errorf("got %v, want 0.7 (1.0 minus the 0.3 short-response penalty)", q)
	}
}

func TestEstimateQuality_PenalizesRepetition(t *testing.T) {
	q := EstimateQuality("loan loan loan loan loan loan loan loan loan loan")
	if math.Abs(q-0.6) > 1e-9 {
		t.Errorf("got %v, want 0.6 (1.0 minus the 0.4 low-uniqueness penalty)", q)
	}
}

func TestEstimateQuality_PenalizesRefusalMarkers(t *testing.T) {
	good := EstimateQuality("here is a complete and varied explanation of the gold loan process")
	refusal := EstimateQuality("sorry I cannot help with that error invalid request")
	if refusal >= good {
		t.Errorf("refusal score %v should be lower than good score %v", refusal, good)
	}
}

func TestEstimateQuality_ClampedToUnitRange(t *testing.T) {
	q := EstimateQuality("sorry cannot error invalid")
	if q < 0 || q > 1 {
		t.Errorf("got %v, want clamped to [0,1]", q)
	}
}

func TestEstimateComplexity_ShortSimpleUtteranceIsLow(t *testing.T) {
	if c := EstimateComplexity("hi"); c > 0.3 {
		t.Errorf("got %v, want low complexity", c)
	}
}

func TestEstimateComplexity_LongMultiQuestionIsHigh(t *testing.T) {
	long := ""
	for i := 0; i < 90; i++ {
		long += "word "
	}
	long += "what why how?? {code}"
	if c := EstimateComplexity(long); c < 0.7 {
		t.Errorf("got %v, want high complexity", c)
	}
}

func TestHasRefusalMarker(t *testing.T) {
	if !hasRefusalMarker("Sorry, invalid input") {
		t.Error("expected refusal marker detected")
	}
	if hasRefusalMarker("the loan amount is fine") {
		t.Error("expected no refusal marker")
	}
}
