package billing

import "errors"

var (
	ErrUnknownSlot      = errors.New("unknown slot")
	ErrDuplicateSlot    = errors.New("slot selected twice")
	ErrEmptySelection   = errors.New("no slots selected")
	ErrInvalidDiscount  = errors.New("discount must be between 0 and the subtotal")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrInvalidSpace     = errors.New("invalid space")
	ErrInvalidPayment   = errors.New("invalid payment")
	ErrSplitMismatch    = errors.New("split breakdown does not match the payable amount")
	ErrBookingCancelled = errors.New("booking is cancelled")
	ErrAlreadySettled   = errors.New("booking is already settled")
)
