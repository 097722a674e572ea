package domain

import "errors"

var (
	ErrInvalidGame               = errors.New("Invalid game")
	ErrGameNotOpen               = errors.New("Game is not open")
	ErrAlreadyClosed             = errors.New("Game is already closed")
	ErrGameNotClosed             = errors.New("Game is not closed")
	ErrGameNotAwaitingSettlement = errors.New("Game is not awaiting settlement")
	ErrBetNotFound               = errors.New("Bet not found")
	ErrBetNotPending             = errors.New("Bet is not pending")
	ErrBetAlreadyResolved        = errors.New("Bet is already resolved")
	ErrInsufficientShares        = errors.New("Insufficient shares")
	ErrNotForSale                = errors.New("Bet is not for sale")
	ErrInsufficientPayment       = errors.New("Insufficient payment")
	ErrNoMatchingBet             = errors.New("No matching bet")
	ErrNoWinners                 = errors.New("Winning set must not be empty")
	ErrInvalidAmount             = errors.New("Amount must be a positive number")
	ErrUnauthorized              = errors.New("Caller is not permitted to perform this action")
	ErrTransferFailed            = errors.New("Transfer failed")
	ErrInconsistentState         = errors.New("Inconsistent ledger state")
)

// IsFault reports whether err signals a bookkeeping bug rather than a
// rejected request.
func IsFault(err error) bool {
	return errors.Is(err, ErrInconsistentState)
}

var rejections = []error{
	ErrInvalidGame, ErrGameNotOpen, ErrAlreadyClosed, ErrGameNotClosed,
	ErrGameNotAwaitingSettlement, ErrBetNotFound, ErrBetNotPending,
	ErrBetAlreadyResolved, ErrInsufficientShares, ErrNotForSale,
	ErrInsufficientPayment, ErrNoMatchingBet, ErrNoWinners, ErrInvalidAmount,
	ErrUnauthorized, ErrTransferFailed,
}

// IsRejection reports whether err is an expected refusal of a request.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
