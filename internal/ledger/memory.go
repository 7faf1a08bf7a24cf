// internal/ledger/memory.go
package ledger

import (
	"context"

	"github.com/jason-s-yu/park/internal/chain"
)

// MemoryBackend keeps mints and token accounts in maps. It is not safe for concurrent
// use; the owning store serializes access.
//
// A backend created with Stage records writes locally and reads through to its parent
// until Commit copies the writes up. Discarding a stage is simply dropping it.
type MemoryBackend struct {
	parent   *MemoryBackend
	mints    map[chain.Address]Mint
	accounts map[chain.Address]TokenAccount
}

// NewMemoryBackend returns an empty root backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		mints:    make(map[chain.Address]Mint),
		accounts: make(map[chain.Address]TokenAccount),
	}
}

// Stage returns a child backend whose writes stay invisible to m until Commit.
func (m *MemoryBackend) Stage() *MemoryBackend {
	child := NewMemoryBackend()
	child.parent = m
	return child
}

// Commit applies the staged writes to the parent backend.
func (m *MemoryBackend) Commit() {
	if m.parent == nil {
		return
	}
	for addr, mint := range m.mints {
		m.parent.mints[addr] = mint
	}
	for addr, acct := range m.accounts {
		m.parent.accounts[addr] = acct
	}
	m.mints = make(map[chain.Address]Mint)
	m.accounts = make(map[chain.Address]TokenAccount)
}

func (m *MemoryBackend) lookupMint(addr chain.Address) (Mint, bool) {
	for b := m; b != nil; b = b.parent {
		if mint, ok := b.mints[addr]; ok {
			return mint, true
		}
	}
	return Mint{}, false
}

func (m *MemoryBackend) lookupAccount(addr chain.Address) (TokenAccount, bool) {
	for b := m; b != nil; b = b.parent {
		if acct, ok := b.accounts[addr]; ok {
			return acct, true
		}
	}
	return TokenAccount{}, false
}

func (m *MemoryBackend) LoadMint(_ context.Context, addr chain.Address) (Mint, error) {
	mint, ok := m.lookupMint(addr)
	if !ok {
		return Mint{}, ErrMintNotFound
	}
	return copyMint(mint), nil
}

func (m *MemoryBackend) InsertMint(_ context.Context, mint Mint) error {
	if _, ok := m.lookupMint(mint.Address); ok {
		return ErrMintExists
	}
	m.mints[mint.Address] = copyMint(mint)
	return nil
}

func (m *MemoryBackend) SaveMint(_ context.Context, mint Mint) error {
	if _, ok := m.lookupMint(mint.Address); !ok {
		return ErrMintNotFound
	}
	m.mints[mint.Address] = copyMint(mint)
	return nil
}

func (m *MemoryBackend) LoadAccount(_ context.Context, addr chain.Address) (TokenAccount, error) {
	acct, ok := m.lookupAccount(addr)
	if !ok {
		return TokenAccount{}, ErrAccountNotFound
	}
	return acct, nil
}

func (m *MemoryBackend) SaveAccount(_ context.Context, acct TokenAccount) error {
	m.accounts[acct.Address] = acct
	return nil
}
