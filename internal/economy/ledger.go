package economy

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInsufficientSupply is returned by TryDebit when a good cannot cover the
// requested amount.
var ErrInsufficientSupply = errors.New("insufficient supply")

// Ledger maps good names to quantities. Quantities never go below zero.
type Ledger struct {
	quantities map[string]uint64
	starter    []string
}

// NewLedger creates a ledger listing the given starter goods at zero.
// With no goods given it uses StarterGoods.
func NewLedger(starter ...string) *Ledger {
	if len(starter) == 0 {
		starter = StarterGoods
	}
	l := &Ledger{starter: append([]string(nil), starter...)}
	l.Restart()
	return l
}

// Restart drops every entry and lists the starter goods at zero.
func (l *Ledger) Restart() {
	l.quantities = make(map[string]uint64, len(l.starter))
	for _, good := range l.starter {
		l.quantities[good] = 0
	}
}

// Get returns the quantity of a good, zero if it is not listed.
func (l *Ledger) Get(good string) uint64 {
	return l.quantities[good]
}

// Has reports whether the good has an entry.
func (l *Ledger) Has(good string) bool {
	_, ok := l.quantities[good]
	return ok
}

// Len returns the number of listed goods.
func (l *Ledger) Len() int {
	return len(l.quantities)
}

// Credit adds amount to a good, listing it first if absent.
// The quantity saturates at math.MaxUint64.
func (l *Ledger) Credit(good string, amount uint64) {
	qty := l.quantities[good]
	if amount > math.MaxUint64-qty {
		qty = math.MaxUint64
	} else {
		qty += amount
	}
	l.quantities[good] = qty
}

// Debit subtracts amount from a good, flooring at zero.
// It returns how much was actually taken and the unmet shortfall.
func (l *Ledger) Debit(good string, amount uint64) (taken, shortfall uint64) {
	qty := l.quantities[good]
	if amount > qty {
		taken, shortfall = qty, amount-qty
	} else {
		taken = amount
	}
	l.quantities[good] = qty - taken
	return taken, shortfall
}

// TryDebit subtracts amount only if the good can cover all of it.
// Otherwise the ledger is left unchanged and ErrInsufficientSupply is returned.
func (l *Ledger) TryDebit(good string, amount uint64) error {
	qty := l.quantities[good]
	if amount > qty {
		return fmt.Errorf("debit %d %s (have %d): %w", amount, good, qty, ErrInsufficientSupply)
	}
	l.quantities[good] = qty - amount
	return nil
}

// Entries returns a copy of all entries ordered by good name.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.quantities))
	for good, qty := range l.quantities {
		out = append(out, Entry{Good: good, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Good < out[j].Good })
	return out
}
