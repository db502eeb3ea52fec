package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/ports"
)

type contractLedger struct {
	owners map[uint64]string
}

// Ledger is an ERC721-like ledger of a single domain. Tokens locked by the spoke are held by
// custodian; only wrapped contracts can be minted and burnt by the spoke.
type Ledger struct {
	lock      *sync.RWMutex
	custodian string
	wrapped   map[string]struct{}
	contracts map[string]*contractLedger
}

func NewLedger(custodian string, wrapped ...string) *Ledger {
	wrappedSet := make(map[string]struct{}, len(wrapped))
	for _, contract := range wrapped {
		wrappedSet[contract] = struct{}{}
	}
	return &Ledger{
		lock:      &sync.RWMutex{},
		custodian: custodian,
		wrapped:   wrappedSet,
		contracts: make(map[string]*contractLedger),
	}
}

var _ ports.AssetLedger = (*Ledger)(nil)

func (l *Ledger) Custodian() string {
	return l.custodian
}

// Issue creates a token of an original, not wrapped, contract.
func (l *Ledger) Issue(_ context.Context, contract, to string, tokenID uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.wrapped[contract]; ok {
		return fmt.Errorf("contract %s is wrapped, tokens can only be minted by the bridge", contract)
	}
	return l.mint(contract, to, tokenID)
}

// Transfer moves a token between two accounts as its owner.
func (l *Ledger) Transfer(_ context.Context, contract, from, to string, tokenID uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if to == "" {
		return fmt.Errorf("transfer to the zero address")
	}
	return l.move(contract, from, to, tokenID)
}

func (l *Ledger) OwnerOf(_ context.Context, contract string, tokenID uint64) (string, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	owner, ok := l.ownerOf(contract, tokenID)
	if !ok {
		return "", fmt.Errorf("invalid token ID")
	}
	return owner, nil
}

func (l *Ledger) Lock(_ context.Context, contract, owner string, tokenID uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.move(contract, owner, l.custodian, tokenID)
}

func (l *Ledger) Release(_ context.Context, contract, to string, tokenID uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.move(contract, l.custodian, to, tokenID)
}

func (l *Ledger) Mint(_ context.Context, contract, to string, tokenID uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.wrapped[contract]; !ok {
		return fmt.Errorf("caller is not the owner")
	}
	return l.mint(contract, to, tokenID)
}

func (l *Ledger) Burn(_ context.Context, contract string, tokenID uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.wrapped[contract]; !ok {
		return fmt.Errorf("caller is not the owner")
	}
	if _, ok := l.ownerOf(contract, tokenID); !ok {
		return fmt.Errorf("invalid token ID")
	}
	delete(l.contracts[contract].owners, tokenID)
	return nil
}

func (l *Ledger) ownerOf(contract string, tokenID uint64) (string, bool) {
	c, ok := l.contracts[contract]
	if !ok {
		return "", false
	}
	owner, ok := c.owners[tokenID]
	return owner, ok
}

func (l *Ledger) mint(contract, to string, tokenID uint64) error {
	if to == "" {
		return fmt.Errorf("mint to the zero address")
	}
	if _, ok := l.ownerOf(contract, tokenID); ok {
		return fmt.Errorf("token already minted")
	}
	c, ok := l.contracts[contract]
	if !ok {
		c = &contractLedger{owners: make(map[uint64]string)}
		l.contracts[contract] = c
	}
	c.owners[tokenID] = to
	return nil
}

func (l *Ledger) move(contract, from, to string, tokenID uint64) error {
	owner, ok := l.ownerOf(contract, tokenID)
	if !ok {
		return fmt.Errorf("invalid token ID")
	}
	if owner != from {
		return fmt.Errorf("transfer from incorrect owner")
	}
	l.contracts[contract].owners[tokenID] = to
	return nil
}
