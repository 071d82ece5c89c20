package dialog

import "testing"

func TestMachine_InitialStage(t *testing.T) {
	m := NewMachine()
	if m.Stage() != StageGreeting {
		t.Fatalf("initial stage = %v, want %v", m.Stage(), StageGreeting)
	}
}

func TestMachine_GreetingToDiscovery(t *testing.T) {
	m := NewMachine()
	m.Update(SignalSubstantive, false, 0)
	if m.Stage() != StageDiscovery {
		t.Fatalf("stage = %v, want %v", m.Stage(), StageDiscovery)
	}
}

func TestMachine_DiscoveryToQualification_DensityGated(t *testing.T) {
	m := NewMachine()
	m.TransitionStage(StageDiscovery)

	m.Update(SignalNone, false, 0.2)
	if m.Stage() != StageDiscovery {
		t.Fatalf("stage advanced below density threshold: %v", m.Stage())
	}

	m.Update(SignalNone, false, 0.5)
	if m.Stage() != StageQualification {
		t.Fatalf("stage = %v, want %v", m.Stage(), StageQualification)
	}
}

func TestMachine_QualificationToPresentation_CompletionGated(t *testing.T) {
	m := NewMachine()
	m.TransitionStage(StageQualification)

	m.Update(SignalNone, false, 1.0)
	if m.Stage() != StageQualification {
		t.Fatalf("stage advanced without goal completion: %v", m.Stage())
	}

	m.Update(SignalNone, true, 1.0)
	if m.Stage() != StagePresentation {
		t.Fatalf("stage = %v, want %v", m.Stage(), StagePresentation)
	}
}

func TestMachine_ObjectionRoundTrip(t *testing.T) {
	m := NewMachine()
	m.TransitionStage(StagePresentation)

	m.Update(SignalObjection, false, 0)
	if m.Stage() != StageObjectionHandling {
		t.Fatalf("stage = %v, want %v", m.Stage(), StageObjectionHandling)
	}

	m.Update(SignalAcknowledgment, false, 0)
	if m.Stage() != StagePresentation {
		t.Fatalf("stage = %v, want %v", m.Stage(), StagePresentation)
	}
}

func TestMachine_RegressionOnlyFromClosingOrFarewell(t *testing.T) {
	cases := []Stage{StageClosing, StageFarewell}
	for _, from := range cases {
		m := NewMachine()
		m.TransitionStage(from)
		m.Update(SignalObjection, false, 0)
		if m.Stage() != StagePresentation {
			t.Errorf("from %v: stage = %v, want %v", from, m.Stage(), StagePresentation)
		}
	}
}

func TestMachine_NoRegressionFromOtherStages(t *testing.T) {
	m := NewMachine()
	m.TransitionStage(StageDiscovery)
	m.Update(SignalObjection, false, 0)
	if m.Stage() != StageDiscovery {
		t.Errorf("unexpected transition on unmatched signal: %v", m.Stage())
	}
}

func TestMachine_ClosingToFarewell(t *testing.T) {
	m := NewMachine()
	m.TransitionStage(StageClosing)
	m.Update(SignalAssent, false, 0)
	if m.Stage() != StageFarewell {
		t.Fatalf("stage = %v, want %v", m.Stage(), StageFarewell)
	}
}

func TestIsKnownStage(t *testing.T) {
	if !IsKnownStage(StageGreeting) {
		t.Error("expected StageGreeting to be known")
	}
	if IsKnownStage(Stage("bogus")) {
		t.Error("expected bogus stage to be unknown")
	}
}
