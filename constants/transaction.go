package constants

import "strings"

// TransactionType is the direction of a statement entry. Amounts are stored
// positive; direction is carried here, never by sign.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// ParseTransactionType maps a model- or user-supplied label to a TransactionType.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "cr":
		return Credit, true
	case "debit", "db", "dr":
		return Debit, true
	}
	return "", false
}
