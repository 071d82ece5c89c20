package dialog

import "testing"

func testGoalConfig() GoalConfig {
	newLoan := Goal{
		ID:             "new_loan",
		RequiredSlots:  []string{"loan_amount", "gold_weight", "phone_number"},
		OptionalSlots:  []string{"loan_purpose"},
		CompletionTool: "submit_loan_application",
	}
	return GoalConfig{
		Goals:         map[string]Goal{"new_loan": newLoan},
		IntentToGoal:  map[string]string{"new_loan_inquiry": "new_loan"},
		DefaultGoalID: "new_loan",
	}
}

func TestResolveGoal_Mapped(t *testing.T) {
	cfg := testGoalConfig()
	g, ok := cfg.ResolveGoal("new_loan_inquiry")
	if !ok || g.ID != "new_loan" {
		t.Fatalf("got %+v, %v", g, ok)
	}
}

func TestResolveGoal_FallsBackToDefault(t *testing.T) {
	cfg := testGoalConfig()
	g, ok := cfg.ResolveGoal("unknown_intent")
	if !ok || g.ID != "new_loan" {
		t.Fatalf("got %+v, %v", g, ok)
	}
}

func TestGoal_CompleteAndDensity(t *testing.T) {
	g := testGoalConfig().Goals["new_loan"]

	filled := map[string]Slot{
		"loan_amount": {Name: "loan_amount", Value: "500000"},
	}
	if g.Complete(filled) {
		t.Error("expected incomplete goal")
	}
	if d := g.Density(filled); d != 1.0/3.0 {
		t.Errorf("density = %v, want 1/3", d)
	}

	filled["gold_weight"] = Slot{Name: "gold_weight", Value: "50"}
	filled["phone_number"] = Slot{Name: "phone_number", Value: "9876543210"}
	if !g.Complete(filled) {
		t.Error("expected complete goal")
	}
	if d := g.Density(filled); d != 1.0 {
		t.Errorf("density = %v, want 1.0", d)
	}
}

func TestGoal_FirstMissingRequired(t *testing.T) {
	g := testGoalConfig().Goals["new_loan"]
	filled := map[string]Slot{"loan_amount": {Name: "loan_amount", Value: "500000"}}

	missing, ok := g.FirstMissingRequired(filled)
	if !ok || missing != "gold_weight" {
		t.Fatalf("got %q, %v", missing, ok)
	}
}

func TestGoal_DensityNoRequiredSlots(t *testing.T) {
	g := Goal{ID: "chitchat"}
	if d := g.Density(map[string]Slot{}); d != 1 {
		t.Errorf("density = %v, want 1", d)
	}
}
