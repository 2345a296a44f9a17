// Package nonces tracks maker order nonces: which have been executed or
// cancelled, and each maker's minimum valid nonce. State is durable across
// restarts, backed by a badger key-value store.
package nonces

import (
	"encoding/binary"
	"errors"

	"github.com/decred/slog"
	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
)

// MaxBulkCancel bounds how far a single cancel-all call may advance a
// maker's minimum nonce.
const MaxBulkCancel = 500000

// Cancel errors.
var (
	ErrEmptyCancel    = errors.New("Cancel: cannot be empty")
	ErrNonceTooLow    = errors.New("Cancel: order nonce lower than current")
	ErrTooManyCancels = errors.New("Cancel: can not cancel more orders")
)

// Key layout. A maker's minimum nonce lives under one key; every executed
// or cancelled nonce at or above the minimum gets its own flag key.
var (
	prefixMin   = []byte("min/")
	prefixOrder = []byte("ord/")
)

func minKey(maker common.Address) []byte {
	return append(append([]byte(nil), prefixMin...), maker.Bytes()...)
}

func orderKey(maker common.Address, nonce uint64) []byte {
	k := append(append([]byte(nil), prefixOrder...), maker.Bytes()...)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return append(k, n[:]...)
}

// Ledger is the durable nonce store. All methods are safe for concurrent
// use; badger transactions provide the isolation.
type Ledger struct {
	db *badger.DB
}

// Open opens (or creates) a ledger at the given directory.
func Open(path string) (*Ledger, error) {
	opts := badger.DefaultOptions(path).WithLogger(&badgerLoggerWrapper{log})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// OpenInMemory opens a ledger with no backing files. Used in tests.
func OpenInMemory() (*Ledger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(&badgerLoggerWrapper{log})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func getUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v uint64
	err = item.Value(func(b []byte) error {
		if len(b) != 8 {
			return errors.New("corrupt nonce entry")
		}
		v = binary.BigEndian.Uint64(b)
		return nil
	})
	return v, err
}

func hasKey(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MinNonce returns the maker's minimum valid order nonce.
func (l *Ledger) MinNonce(maker common.Address) (uint64, error) {
	var min uint64
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		min, err = getUint64(txn, minKey(maker))
		return err
	})
	return min, err
}

// IsExecutedOrCancelled reports whether a maker nonce has been consumed,
// either individually or by a minimum-nonce advance.
func (l *Ledger) IsExecutedOrCancelled(maker common.Address, nonce uint64) (bool, error) {
	var used bool
	err := l.db.View(func(txn *badger.Txn) error {
		min, err := getUint64(txn, minKey(maker))
		if err != nil {
			return err
		}
		if nonce < min {
			used = true
			return nil
		}
		used, err = hasKey(txn, orderKey(maker, nonce))
		return err
	})
	return used, err
}

// MarkExecuted flags a maker nonce as consumed by a fill. Marking the same
// nonce again is a no-op; the caller checks execution state first.
func (l *Ledger) MarkExecuted(maker common.Address, nonce uint64) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(orderKey(maker, nonce), []byte{1})
	})
}

// Cancel voids a list of maker nonces. Every nonce must be at or above the
// maker's current minimum; cancelling an already-cancelled nonce is
// idempotent.
func (l *Ledger) Cancel(maker common.Address, orderNonces []uint64) error {
	if len(orderNonces) == 0 {
		return ErrEmptyCancel
	}
	err := l.db.Update(func(txn *badger.Txn) error {
		min, err := getUint64(txn, minKey(maker))
		if err != nil {
			return err
		}
		for _, nonce := range orderNonces {
			if nonce < min {
				return ErrNonceTooLow
			}
		}
		for _, nonce := range orderNonces {
			if err := txn.Set(orderKey(maker, nonce), []byte{1}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("Cancelled %d order nonce(s) for %s", len(orderNonces), maker)
	return nil
}

// CancelAllBelow advances the maker's minimum nonce, voiding every order
// nonce under it. The new minimum must exceed the current one and may not
// jump by more than MaxBulkCancel.
func (l *Ledger) CancelAllBelow(maker common.Address, minNonce uint64) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		min, err := getUint64(txn, minKey(maker))
		if err != nil {
			return err
		}
		if minNonce <= min {
			return ErrNonceTooLow
		}
		if minNonce >= min+MaxBulkCancel {
			return ErrTooManyCancels
		}
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], minNonce)
		return txn.Set(minKey(maker), v[:])
	})
	if err != nil {
		return err
	}
	log.Debugf("Advanced minimum order nonce for %s to %d", maker, minNonce)
	return nil
}

// badgerLoggerWrapper translates Warningf to slog's Warnf to satisfy
// badger.Logger.
type badgerLoggerWrapper struct {
	slog.Logger
}

var _ badger.Logger = (*badgerLoggerWrapper)(nil)

func (w *badgerLoggerWrapper) Warningf(s string, a ...interface{}) {
	w.Warnf(s, a...)
}
