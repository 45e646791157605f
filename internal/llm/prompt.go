package llm

import "strings"

// ParsingPrompt is the universal system prompt shared by every provider so
// outputs stay consistent across backends. Adapters append their own
// supplementary guidance where the backend benefits from it.
func ParsingPrompt() string {
	return strings.TrimSpace(`
You are a bank statement parsing expert. Extract and standardize the following bank statement data into the specified JSON format.

Required fields:
- account_holder: Full name of the account holder
- bank_name: Name of the bank
- account_number: Account number (keep last 4 digits visible, mask others with *)
- statement_period: Object with start_date and end_date (YYYY-MM-DD format)
- opening_balance: Starting balance as a number
- closing_balance: Ending balance as a number
- transactions: Array of transaction objects
- currency: Currency code (default USD)

For each transaction, include:
- date: Transaction date (YYYY-MM-DD format)
- description: Transaction description
- amount: Transaction amount (positive number)
- type: "credit" or "debit"
- category: Transaction category (optional)
- balance: Running balance after transaction (optional)

Return ONLY valid JSON (no markdown code fences, no comments, no explanations), do not use "\n" in the JSON.
Do not include trailing commas. Use numbers, not strings, for amounts/balances.
If there is a page that is sent and does not look like a statement, example(detail pages, contact information pages, etc.) from the bank, do not send false data, just send transactions as [].
Pay attention to the type of the transaction, there are banks (not all of them) that end their number in CR or DB it means credit or debit respectively. example: 10000CR means 10000 credit.
Schema:
{
    "account_holder": string,
    "bank_name": string,
    "account_number": string,  // last 4 visible, others masked with *
    "statement_period": { "start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD" },
    "opening_balance": number,
    "closing_balance": number,
    "transactions": [
        { "date": "YYYY-MM-DD", "description": string, "amount": number, "type": "credit"|"debit", "category": string? }
    ],
    "currency": "USD",
    "has_more": boolean,
    "next_page_hint": string?
}
Output the JSON object only.
After extraction ensure that for all transactions balance matches the previous transaction + deposited or withdrawn amount in that transaction, also validate your extraction by checking opening and closing balance.
`)
}

// TextInstruction builds the user-turn lead-in for a text extraction call,
// weaving in the continuation hint when resuming a multi-page document.
func TextInstruction(continuationHint string) string {
	if continuationHint == "" {
		return "Parse this bank statement:"
	}
	return "Continue parsing this bank statement starting from: " + continuationHint
}

// ImageInstruction builds the user-turn lead-in for a vision extraction call.
func ImageInstruction(continuationHint string) string {
	if continuationHint == "" {
		return "Parse this bank statement from the provided images:"
	}
	return "Continue parsing this bank statement starting from: " + continuationHint
}
