// Package builtin provides the gold-loan domain's built-in tools,
// registered by default into a tool.Registry, using the
// args-map-in/Output-out shape of internal/tool.
package builtin

import (
	"context"
	"fmt"

	"github.com/vaak-ai/voxengine/internal/tool"
)

// SubmitLoanApplication is the completion tool for the new-loan-inquiry
// goal: it records the filled slots as a submitted application. submit is
// the caller-supplied persistence function (e.g. writing to a CRM or
// queue); a nil submit always succeeds with a stub confirmation, useful
// for tests and local runs.
func SubmitLoanApplication(submit func(ctx context.Context, args map[string]string) error) tool.Tool {
	return tool.Func{
		Def: tool.Definition{
			Name:        "submit_loan_application",
			Description: "Submits a gold loan application once all required details are collected.",
			Category:    "loan",
			Input: tool.InputDescriptor{
				Type: "object",
				Properties: map[string]tool.PropertySchema{
					"loan_amount":  {Type: "string", Description: "Requested loan amount in rupees"},
					"gold_weight":  {Type: "string", Description: "Gold weight in grams"},
					"phone_number": {Type: "string", Description: "Customer's 10-digit mobile number"},
					"loan_purpose": {Type: "string", Description: "Stated purpose of the loan"},
				},
				Required: []string{"loan_amount", "gold_weight", "phone_number"},
			},
		},
		Handler: func(ctx context.Context, args map[string]string) (tool.Output, error) {
			if submit != nil {
				if err := submit(ctx, args); err != nil {
					return tool.Output{
						Content: []tool.Content{{Kind: tool.ContentText, Text: err.Error()}},
						IsError: true,
					}, nil
				}
			}
			text := fmt.Sprintf(
				"Application submitted: amount=%s gold_weight=%sg phone=%s",
				args["loan_amount"], args["gold_weight"], args["phone_number"],
			)
			return tool.Output{Content: []tool.Content{{Kind: tool.ContentText, Text: text}}}, nil
		},
	}
}

// QuoteInterestRate quotes the rateTable rate for the requested
// current_lender, or defaultRate when that lender is not in the table,
// used when a customer asks "what rate will I get" mid-conversation. The
// gold_purity argument is accepted but does not affect the quote.
func QuoteInterestRate(rateTable map[string]float64, defaultRate float64) tool.Tool {
	return tool.Func{
		Def: tool.Definition{
			Name:        "quote_interest_rate",
			Description: "Quotes an indicative interest rate for a lender and gold purity.",
			Category:    "loan",
			Input: tool.InputDescriptor{
				Type: "object",
				Properties: map[string]tool.PropertySchema{
					"current_lender": {Type: "string", Description: "Lender to quote against"},
					"gold_purity":    {Type: "string", Description: "Gold purity, e.g. 22K"},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]string) (tool.Output, error) {
			rate, ok := rateTable[args["current_lender"]]
			if !ok {
				rate = defaultRate
			}
			text := fmt.Sprintf("Indicative interest rate: %.2f%% per annum", rate)
			return tool.Output{Content: []tool.Content{{Kind: tool.ContentText, Text: text}}}, nil
		},
	}
}

// LookupBranch resolves the nearest branch for a customer's location,
// falling back to the configured default city when location is unknown.
func LookupBranch(branchesByCity map[string]string, defaultCity string) tool.Tool {
	return tool.Func{
		Def: tool.Definition{
			Name:        "lookup_branch",
			Description: "Finds the nearest branch address for a customer's city.",
			Category:    "service",
			Input: tool.InputDescriptor{
				Type: "object",
				Properties: map[string]tool.PropertySchema{
					"location": {Type: "string", Description: "Customer's city"},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]string) (tool.Output, error) {
			city := args["location"]
			if city == "" {
				city = defaultCity
			}
			addr, ok := branchesByCity[city]
			if !ok {
				return tool.Output{
					Content: []tool.Content{{Kind: tool.ContentText, Text: fmt.Sprintf("no branch found for %q", city)}},
					IsError: true,
				}, nil
			}
			return tool.Output{Content: []tool.Content{{Kind: tool.ContentText, Text: addr}}}, nil
		},
	}
}
