package dialog

// stageOrder is the ordered enum of known stages; used only to validate
// that a stage name is known, not for numeric comparisons (transitions are
// an explicit table, not "next in order").
var stageOrder = []Stage{
	StageGreeting, StageDiscovery, StageQualification, StagePresentation,
	StageObjectionHandling, StageClosing, StageFarewell,
}

// transition is a (from, signal) -> to edge in the stage machine.
type transition struct {
	from   Stage
	signal Signal
	to     Stage
}

// transitionTable encodes the stage machine's explicit transition list,
// preferring an explicit edge table over an inheritance-based state
// hierarchy.
var transitionTable = []transition{
	{StageGreeting, SignalSubstantive, StageDiscovery},
	{StageDiscovery, SignalNone, StageQualification}, // guarded by density check, see Machine.Update
	{StageQualification, SignalNone, StagePresentation},
	{StagePresentation, SignalObjection, StageObjectionHandling},
	{StageObjectionHandling, SignalAcknowledgment, StagePresentation},
	{StagePresentation, SignalCommitment, StageClosing},
	{StageObjectionHandling, SignalCommitment, StageClosing},
	{StageClosing, SignalAssent, StageFarewell},
	{StageClosing, SignalTimeout, StageFarewell},
	// Regression is permitted only from {Closing, Farewell} back to
	// Presentation, and only under an objection signal.
	{StageClosing, SignalObjection, StagePresentation},
	{StageFarewell, SignalObjection, StagePresentation},
}

// Machine is the per-session conversation stage machine. Not safe for
// concurrent use without external synchronization; callers hold the
// session's turn lock while calling Update.
type Machine struct {
	stage Stage
}

// NewMachine starts a machine in Greeting.
func NewMachine() *Machine {
	return &Machine{stage: StageGreeting}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage { return m.stage }

// TransitionStage explicitly sets the stage, bypassing the transition
// table. Reserved for tests.
func (m *Machine) TransitionStage(to Stage) {
	m.stage = to
}

// Update advances the machine given the turn's signal, whether the active
// goal is complete, and the active goal's required-slot density (see
// Goal.Density). Idempotent: calling Update with a signal
// that does not match any edge from the current stage leaves it unchanged.
func (m *Machine) Update(signal Signal, goalComplete bool, density float64) {
	switch m.stage {
	case StageDiscovery:
		// Discovery -> Qualification is density-gated, not signal-gated.
		if density >= 0.5 {
			m.stage = StageQualification
			return
		}
	case StageQualification:
		if goalComplete {
			m.stage = StagePresentation
			return
		}
	}

	for _, t := range transitionTable {
		if t.from == m.stage && t.signal == signal && t.signal != SignalNone {
			m.stage = t.to
			return
		}
	}
}

// IsKnownStage reports whether s is one of the seven defined stages.
func IsKnownStage(s Stage) bool {
	for _, known := range stageOrder {
		if known == s {
			return true
		}
	}
	return false
}
