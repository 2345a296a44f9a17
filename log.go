// Package nftexchange is a peer-to-peer NFT exchange settlement engine:
// off-chain signed maker orders are matched against taker orders and settled
// with pluggable execution strategies, royalty and fee
// distribution, delegate-proxied asset transfers, and interceptor hooks for
// collateralized assets.
package nftexchange

import "github.com/decred/slog"

// log is the package logger, disabled until UseLogger is called.
var log = slog.Disabled

// UseLogger sets the package logger.
func UseLogger(logger slog.Logger) {
	log = logger
}
