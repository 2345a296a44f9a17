package nftexchange

import "errors"

// Order validation errors.
var (
	ErrWrongSides       = errors.New("Order: wrong sides")
	ErrTakerNotSender   = errors.New("Order: taker must be the sender")
	ErrInvalidMaker     = errors.New("Order: invalid maker")
	ErrZeroAmount       = errors.New("Order: amount cannot be 0")
	ErrOrderExpired     = errors.New("Order: matching order expired")
	ErrCurrencyNotWETH  = errors.New("Order: currency must be WETH")
	ErrInsufficientWETH = errors.New("Order: price too High and insufficient WETH")
	ErrExecutionInvalid = errors.New("Strategy: execution invalid")
	ErrFeesTooHigh      = errors.New("Fees: higher than expected")
	ErrMakerInterceptor = errors.New("Interceptor: maker interceptor not whitelisted")
	ErrTakerInterceptor = errors.New("Interceptor: taker interceptor not whitelisted")
)
