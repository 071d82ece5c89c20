package dialog

// GoalConfig is the config-driven intent->goal and default-goal mapping
// used for goal selection. Sourced from the external domain config view;
// this is its in-memory projection.
type GoalConfig struct {
	Goals         map[string]Goal
	IntentToGoal  map[string]string
	DefaultGoalID string
}

// ResolveGoal looks up the goal mapped to intentName, falling back to the
// configured default goal.
func (c GoalConfig) ResolveGoal(intentName string) (Goal, bool) {
	goalID, ok := c.IntentToGoal[intentName]
	if !ok {
		goalID = c.DefaultGoalID
	}
	g, ok := c.Goals[goalID]
	return g, ok
}

// Action is the outcome of a Tracker.Process call: what, if anything, the
// engine should do next (ask for a slot, call a tool, or nothing).
type Action struct {
	// AskSlot, if non-empty, is the name of the first missing required
	// slot the caller should prompt for.
	AskSlot string

	// CallTool, if non-empty, is the completion tool name to invoke
	// because every required slot of the active goal is now filled.
	CallTool string

	// ToolArgs carries the filled slot values as string arguments for
	// CallTool.
	ToolArgs map[string]string
}
