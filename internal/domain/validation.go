package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidHolderName    = errors.New("invalid holder name")
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidBankCode      = errors.New("invalid bank code")
	ErrInvalidOwner         = errors.New("invalid owner")
	ErrInvalidMemo          = errors.New("invalid memo")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall       = errors.New("amount below minimum allowed")
)

// Validation constants
const (
	MaxHolderNameLength   = 64
	MaxTransferMemoLength = 20 // printed on the bank statement
	MaxEntryMemoLength    = 255
	MaxTransferAmount     = "1000000000000" // 1 trillion
	MinTransferAmount     = "1"
)

var (
	accountNumberRegex = regexp.MustCompile(`^[0-9]{6,20}$`)
	bankCodeRegex      = regexp.MustCompile(`^[0-9]{3}$`)
)

// ValidateHolderName validates an account holder's display name
func ValidateHolderName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidHolderName)
	}

	if utf8.RuneCountInString(name) > MaxHolderNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidHolderName, MaxHolderNameLength)
	}

	// The bank echoes names into its own statements verbatim.
	dangerous := []string{"--", "/*", "*/", ";"}
	for _, pattern := range dangerous {
		if strings.Contains(name, pattern) {
			return fmt.Errorf("%w: contains forbidden characters", ErrInvalidHolderName)
		}
	}

	return nil
}

// ValidateAccountNumber validates a bank account number (digits only)
func ValidateAccountNumber(number string) error {
	if !accountNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountNumber, number)
	}
	return nil
}

// ValidateBankCode validates a three digit bank code
func ValidateBankCode(code string) error {
	if !bankCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidBankCode, code)
	}
	return nil
}

// ValidateAmount validates transfer amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinTransferAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinTransferAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxTransferAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}

// ValidateTransferMemo validates a memo sent with a debit or credit
func ValidateTransferMemo(memo string) error {
	if utf8.RuneCountInString(memo) > MaxTransferMemoLength {
		return fmt.Errorf("%w: transfer memo exceeds %d characters", ErrInvalidMemo, MaxTransferMemoLength)
	}
	return nil
}

// ValidateEntryMemo validates a memo set during review
func ValidateEntryMemo(memo string) error {
	if utf8.RuneCountInString(memo) > MaxEntryMemoLength {
		return fmt.Errorf("%w: memo exceeds %d characters", ErrInvalidMemo, MaxEntryMemoLength)
	}
	return nil
}

// ValidatePagination normalizes a 1-based page and page size.
func ValidatePagination(page, size int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if size <= 0 {
		size = DefaultPageSize
	}

	if size > MaxPageSize {
		size = MaxPageSize
	}

	if page < 1 {
		page = 1
	}

	return page, size
}
