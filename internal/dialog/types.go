// Package dialog implements intent/slot extraction and the goal-driven
// stage machine that tracks a conversation's dialog state, structured
// around an explicit-table-over-inheritance idiom for stage transitions.
package dialog

import "github.com/samber/lo"

// SlotType enumerates the typed slot values a goal can require.
type SlotType string

const (
	SlotCurrency SlotType = "currency"
	SlotNumber   SlotType = "number"
	SlotPhone    SlotType = "phone"
	SlotEnum     SlotType = "enum"
	SlotText     SlotType = "text"
	SlotLocation SlotType = "location"
	SlotTime     SlotType = "time"
)

// Slot is a typed, named value extracted from user text.
type Slot struct {
	Name       string
	Type       SlotType
	Value      string
	Confidence float64
	Source     string // the pattern/rule that produced this slot, for debugging
}

// Intent is the result of classifying one user utterance.
type Intent struct {
	Name         string
	Confidence   float64
	Slots        map[string]Slot
	Alternatives []RankedIntent
}

// RankedIntent is an alternative candidate intent with its score.
type RankedIntent struct {
	Name       string
	Confidence float64
}

// Goal describes a task with required/optional slots and a completion
// tool. Goals are sourced from external config; this struct
// is the in-memory projection the tracker consumes.
type Goal struct {
	ID             string
	RequiredSlots  []string
	OptionalSlots  []string
	CompletionTool string
	Priority       int
}

// Complete reports whether every required slot of g has a value in filled.
func (g Goal) Complete(filled map[string]Slot) bool {
	return lo.EveryBy(g.RequiredSlots, func(name string) bool {
		_, ok := filled[name]
		return ok
	})
}

// Density returns filled-required-slots / total-required-slots, used by
// the Discovery->Qualification stage transition. Returns 1 for a goal
// with no required slots.
func (g Goal) Density(filled map[string]Slot) float64 {
	if len(g.RequiredSlots) == 0 {
		return 1
	}
	n := lo.CountBy(g.RequiredSlots, func(name string) bool {
		_, ok := filled[name]
		return ok
	})
	return float64(n) / float64(len(g.RequiredSlots))
}

// FirstMissingRequired returns the first required slot of g not present in
// filled, and true if one exists.
func (g Goal) FirstMissingRequired(filled map[string]Slot) (string, bool) {
	name, ok := lo.Find(g.RequiredSlots, func(name string) bool {
		_, present := filled[name]
		return !present
	})
	return name, ok
}

// Stage is an element of the ordered conversation-stage enum.
type Stage string

const (
	StageGreeting          Stage = "greeting"
	StageDiscovery         Stage = "discovery"
	StageQualification     Stage = "qualification"
	StagePresentation      Stage = "presentation"
	StageObjectionHandling Stage = "objection_handling"
	StageClosing           Stage = "closing"
	StageFarewell          Stage = "farewell"
)

// Signal enumerates the user-turn signals the stage machine reacts to.
type Signal string

const (
	SignalNone           Signal = ""
	SignalSubstantive    Signal = "substantive"
	SignalObjection      Signal = "objection"
	SignalAcknowledgment Signal = "acknowledgment"
	SignalCommitment     Signal = "commitment"
	SignalAssent         Signal = "assent"
	SignalTimeout        Signal = "timeout"
)
