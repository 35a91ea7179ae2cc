package errors

var (
	// ErrAmountInvalid is returned when an amount that must be positive is
	// zero or negative, or when a negative discount or fee is assembled.
	ErrAmountInvalid = &DomainError{
		Code:    "AMOUNT_INVALID",
		Message: "amount must be positive",
	}
	// ErrBalanceIsEmpty is returned by the checked withdrawal path when the
	// available balance is exactly zero.
	ErrBalanceIsEmpty = &DomainError{
		Code:    "BALANCE_EMPTY",
		Message: "wallet balance is empty",
	}
	// ErrInsufficientFunds is returned by the checked withdrawal path when
	// the available balance is positive but below the required amount.
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient wallet balance",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrTransactionNotFound = &DomainError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
)
