package registry

import "errors"

// All registry errors are caller-facing and final; nothing is retried
// internally. A failed call leaves no partial effect behind.
var (
	// validation
	ErrEmptyInvoiceNumber = errors.New("registry: empty invoice number")
	ErrInvalidAmount      = errors.New("registry: amount must be positive")
	ErrInvalidDueDate     = errors.New("registry: due date must be in the future")
	ErrInvalidTerms       = errors.New("registry: invalid term bounds")
	ErrInvalidRate        = errors.New("registry: interest rate must be positive")
	ErrNoInvoices         = errors.New("registry: invoice list is empty")
	ErrMixedParties       = errors.New("registry: invoices span multiple party pairs")
	ErrNullCaller         = errors.New("registry: null caller identity")
	ErrNativeSettlement   = errors.New("registry: batch settles in native currency")
	ErrAssetSettlement    = errors.New("registry: batch settles in a named asset")
	ErrAmbiguousSelector  = errors.New("registry: selector names both payee and payer")

	// authorization
	ErrNotAdmin = errors.New("registry: caller is not the administrator")
	ErrNotPayer = errors.New("registry: caller is not the batch payer")

	// not found
	ErrInvoiceNotFound = errors.New("registry: invoice not found")
	ErrBatchNotFound   = errors.New("registry: batch not found")

	// state conflict
	ErrInvoiceExists = errors.New("registry: invoice number already registered")
	ErrBatchExists   = errors.New("registry: batch id already packaged")
	ErrAlreadyIssued = errors.New("registry: batch already issued")
	ErrNotIssued     = errors.New("registry: batch not issued by payer")

	// capacity
	ErrFundingCapExceeded  = errors.New("registry: funding would exceed batch total")
	ErrInsufficientBalance = errors.New("registry: investor balance does not cover amount")

	// guards
	ErrPaused        = errors.New("registry: paused")
	ErrReentrantCall = errors.New("registry: reentrant call")
)
