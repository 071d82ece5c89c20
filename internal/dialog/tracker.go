package dialog

import "sync"

// Tracker is the per-session dialog-state tracker: it owns
// the active goal, the merged slot map, and the stage machine. One Tracker
// per session, guarded by its own mutex since the engine may read stage
// for logging while a turn is being processed.
type Tracker struct {
	mu sync.RWMutex

	classifier *IntentClassifier
	extractor  *SlotExtractor
	goals      GoalConfig
	machine    *Machine

	activeGoal  *Goal
	filledSlots map[string]Slot
	calledTools map[string]bool // goal ID -> completion tool already invoked
}

// NewTracker builds a tracker over the given classifier, extractor, and
// goal config, starting in the Greeting stage with no active goal.
func NewTracker(classifier *IntentClassifier, extractor *SlotExtractor, goals GoalConfig) *Tracker {
	return &Tracker{
		classifier:  classifier,
		extractor:   extractor,
		goals:       goals,
		machine:     NewMachine(),
		filledSlots: map[string]Slot{},
		calledTools: map[string]bool{},
	}
}

// Stage returns the current conversation stage.
func (t *Tracker) Stage() Stage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.machine.Stage()
}

// TransitionStage bypasses the transition table; reserved for tests.
func (t *Tracker) TransitionStage(to Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.machine.TransitionStage(to)
}

// Slots returns a snapshot copy of the currently filled slot map.
func (t *Tracker) Slots() map[string]Slot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Slot, len(t.filledSlots))
	for k, v := range t.filledSlots {
		out[k] = v
	}
	return out
}

// ActiveGoal returns the current active goal, or nil if none is selected.
func (t *Tracker) ActiveGoal() *Goal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.activeGoal == nil {
		return nil
	}
	g := *t.activeGoal
	return &g
}

// Process classifies utterance, merges any extracted slots into the
// session's slot map, selects/continues a goal, advances the stage
// machine, and returns the detected intent plus the next Action.
//
// signal is the caller-classified turn signal (objection/commitment/etc)
// used for stage-machine gating; the dialog package does not itself infer
// signals from text — that is the session engine's job, since it may
// combine LLM-assisted objection detection with keyword rules.
func (t *Tracker) Process(utterance string, signal Signal) (Intent, Action) {
	intent := t.classifier.Classify(utterance)
	extracted := t.extractor.Extract(utterance)
	intent.Slots = extracted

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeGoal == nil {
		if g, ok := t.goals.ResolveGoal(intent.Name); ok {
			t.activeGoal = &g
		}
	}

	for name, slot := range extracted {
		if slot.Value != "" {
			t.filledSlots[name] = slot
		}
	}

	var action Action
	goalComplete := false
	density := 0.0

	if t.activeGoal != nil {
		goalComplete = t.activeGoal.Complete(t.filledSlots)
		density = t.activeGoal.Density(t.filledSlots)

		if goalComplete {
			if !t.calledTools[t.activeGoal.ID] && t.activeGoal.CompletionTool != "" {
				t.calledTools[t.activeGoal.ID] = true
				args := make(map[string]string, len(t.activeGoal.RequiredSlots))
				for _, name := range t.activeGoal.RequiredSlots {
					if s, ok := t.filledSlots[name]; ok {
						args[name] = s.Value
					}
				}
				action.CallTool = t.activeGoal.CompletionTool
				action.ToolArgs = args
			}
		} else if missing, ok := t.activeGoal.FirstMissingRequired(t.filledSlots); ok {
			action.AskSlot = missing
		}
	}

	t.machine.Update(signal, goalComplete, density)

	return intent, action
}
