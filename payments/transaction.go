package payments

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	separatorRegex     = regexp.MustCompile(`[\s\-_./]+`)
	transactionIDRegex = regexp.MustCompile(`^[A-Z0-9]{6,40}$`)
)

var ErrInvalidTransactionID = errors.New("transaction id must be 6-40 letters or digits")

// NormalizeTransactionID upper-cases a bank or UPI reference and strips the
// separators people paste along with it, so the same transfer always compares
// equal.
func NormalizeTransactionID(raw string) (string, error) {
	cleaned := strings.ToUpper(separatorRegex.ReplaceAllString(strings.TrimSpace(raw), ""))
	if !transactionIDRegex.MatchString(cleaned) {
		return "", ErrInvalidTransactionID
	}
	return cleaned, nil
}

// FormatAmount renders a price the way it appears on receipts and emails.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
