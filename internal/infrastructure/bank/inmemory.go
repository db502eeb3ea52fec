package inmemorybank

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/ports"
)

// Bank keeps the native balances of a domain in memory.
type Bank struct {
	lock     *sync.RWMutex
	balances map[string]uint64
}

func NewBank() *Bank {
	return &Bank{
		lock:     &sync.RWMutex{},
		balances: make(map[string]uint64),
	}
}

var _ ports.Bank = (*Bank)(nil)

// Credit mints amount to the account.
func (b *Bank) Credit(_ context.Context, account string, amount uint64) error {
	if account == "" {
		return fmt.Errorf("missing account")
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	balance := b.balances[account]
	if balance+amount < balance {
		return fmt.Errorf("balance overflow")
	}
	b.balances[account] = balance + amount
	return nil
}

func (b *Bank) Balance(_ context.Context, account string) (uint64, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.balances[account], nil
}

func (b *Bank) Transfer(_ context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" {
		return fmt.Errorf("missing account")
	}
	if amount == 0 || from == to {
		return nil
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	balance := b.balances[from]
	if balance < amount {
		return fmt.Errorf("insufficient balance: got %d, need %d", balance, amount)
	}
	b.balances[from] = balance - amount
	b.balances[to] += amount
	return nil
}
