package main

import (
	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/tool/builtin"
)

// defaultIntents is the gold-loan domain's static intent table, matched
// against the three built-in tools this process registers by default.
// A real deployment overrides this from its own config/persona loader;
// these are the bootstrap defaults that make a fresh checkout usable
// without external configuration.
func defaultIntents() []dialog.IntentExample {
	return []dialog.IntentExample{
		{
			Name:          "new_loan_inquiry",
			Examples:      []string{"I want a gold loan", "how do I get a loan against my gold", "I need money against my jewellery"},
			RequiredSlots: []string{"loan_amount", "gold_weight", "phone_number"},
			OptionalSlots: []string{"loan_purpose"},
		},
		{
			Name:          "interest_rate_query",
			Examples:      []string{"what is the interest rate", "how much interest will I pay", "rate of interest for gold loan"},
			OptionalSlots: []string{"current_lender", "gold_purity"},
		},
		{
			Name:          "branch_lookup",
			Examples:      []string{"where is the nearest branch", "find a branch near me", "branch address"},
			OptionalSlots: []string{"location"},
		},
		{
			Name:     "foreclosure_query",
			Examples: []string{"I want to close my loan early", "foreclosure charges", "how do I repay the full amount"},
		},
	}
}

// defaultGoals maps the intents above to completion goals, mirroring the
// RequiredSlots/CompletionTool each built-in tool expects.
func defaultGoals() dialog.GoalConfig {
	return dialog.GoalConfig{
		Goals: map[string]dialog.Goal{
			"new_loan_inquiry": {
				ID:             "new_loan_inquiry",
				RequiredSlots:  []string{"loan_amount", "gold_weight", "phone_number"},
				OptionalSlots:  []string{"loan_purpose"},
				CompletionTool: "submit_loan_application",
				Priority:       10,
			},
			"interest_rate_query": {
				ID:             "interest_rate_query",
				OptionalSlots:  []string{"current_lender", "gold_purity"},
				CompletionTool: "quote_interest_rate",
				Priority:       5,
			},
			"branch_lookup": {
				ID:             "branch_lookup",
				OptionalSlots:  []string{"location"},
				CompletionTool: "lookup_branch",
				Priority:       5,
			},
		},
		IntentToGoal:  map[string]string{"new_loan_inquiry": "new_loan_inquiry", "interest_rate_query": "interest_rate_query", "branch_lookup": "branch_lookup"},
		DefaultGoalID: "new_loan_inquiry",
	}
}

// registerBuiltinTools wires the gold-loan completion tools into
// registry with process-default configuration. A production deployment
// would supply a real submit callback (CRM/queue write) and a live rate
// table instead of these stand-ins.
func registerBuiltinTools(registry *tool.Registry) {
	registry.Register(
		builtin.SubmitLoanApplication(nil),
		builtin.QuoteInterestRate(map[string]float64{
			"Muthoot Finance": 11.5,
			"Manappuram":      12.0,
		}, 12.5),
		builtin.LookupBranch(map[string]string{
			"Mumbai":    "Muthoot Finance, Andheri West, Mumbai",
			"Bengaluru": "Manappuram Gold Loan, Indiranagar, Bengaluru",
			"Chennai":   "Muthoot Finance, T. Nagar, Chennai",
		}, "Mumbai"),
	)
}

// defaultPersona is the system instruction prefix every session's prompt
// assembly leads with.
const defaultPersona = "You are a helpful, concise gold loan advisory assistant. " +
	"Answer in the customer's language. Never invent loan terms, rates, or " +
	"branch details not present in the provided context."

// defaultStageGuidance supplies a short steering note per conversation
// stage, threaded into prompt assembly alongside the persona block.
func defaultStageGuidance() map[dialog.Stage]string {
	return map[dialog.Stage]string{
		dialog.StageGreeting:          "Greet the customer warmly and ask what brings them in today.",
		dialog.StageDiscovery:         "Understand the customer's gold loan need: amount, gold weight, purpose.",
		dialog.StageQualification:     "Confirm the customer qualifies and collect any remaining required details.",
		dialog.StagePresentation:      "Present the applicable rate and terms clearly.",
		dialog.StageObjectionHandling: "Address the customer's concern directly and empathetically.",
		dialog.StageClosing:           "Confirm the customer wants to proceed and summarize next steps.",
		dialog.StageFarewell:          "Thank the customer and close the conversation politely.",
	}
}
