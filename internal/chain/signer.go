// internal/chain/signer.go
package chain

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrNotWallet is returned when attesting an address that cannot belong to a key holder.
var ErrNotWallet = errors.New("address is not a wallet key")

// Signer is proof that the caller controls Address for the duration of one operation.
//
// The interface is sealed: the only implementations are Keypair (holds a private key),
// attested wallets (identity verified by the transport layer) and ProgramAuthority
// (derived from seeds, never backed by a key).
type Signer interface {
	Address() Address
	sealed()
}

// Keypair is an ed25519 wallet key.
type Keypair struct {
	private ed25519.PrivateKey
	address Address
}

// NewKeypair generates a random wallet key.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return newKeypair(pub, priv), nil
}

func newKeypair(pub ed25519.PublicKey, priv ed25519.PrivateKey) *Keypair {
	var a Address
	copy(a[:], pub)
	return &Keypair{private: priv, address: a}
}

func (k *Keypair) Address() Address { return k.address }

// Sign signs msg with the wallet's private key.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.private, msg)
}

func (k *Keypair) sealed() {}

// Verify reports whether sig is a valid signature of msg by the wallet at addr.
func Verify(addr Address, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(addr[:]), msg, sig)
}

type attestedWallet struct {
	address Address
}

func (w attestedWallet) Address() Address { return w.address }
func (w attestedWallet) sealed()          {}

// Attest returns a Signer for a wallet whose ownership was already established by the
// caller, e.g. through a verified login signature. Derived addresses are refused so an
// attestation can never stand in for a program authority.
func Attest(addr Address) (Signer, error) {
	if !addr.IsOnCurve() {
		return nil, fmt.Errorf("%w: %s", ErrNotWallet, addr)
	}
	return attestedWallet{address: addr}, nil
}

// ProgramAuthority signs for an address derived from a program id, a seed and a bump.
type ProgramAuthority struct {
	address Address
}

// AuthorityIssuer builds ProgramAuthority signers for (programID, seed, bump).
type AuthorityIssuer func(programID Address, seed []byte, bump uint8) (ProgramAuthority, error)

// ErrIssuerClaimed is returned by every ClaimAuthorityIssuer call after the first.
var ErrIssuerClaimed = errors.New("program authority issuer already claimed")

var issuerClaimed atomic.Bool

// ClaimAuthorityIssuer hands out the only way to build a ProgramAuthority. It succeeds
// once per process; the registry package claims it while initializing.
func ClaimAuthorityIssuer() (AuthorityIssuer, error) {
	if !issuerClaimed.CompareAndSwap(false, true) {
		return nil, ErrIssuerClaimed
	}
	return newProgramAuthority, nil
}

func newProgramAuthority(programID Address, seed []byte, bump uint8) (ProgramAuthority, error) {
	addr, err := CreateProgramAddress(programID, seed, []byte{bump})
	if err != nil {
		return ProgramAuthority{}, fmt.Errorf("derive program authority: %w", err)
	}
	return ProgramAuthority{address: addr}, nil
}

func (p ProgramAuthority) Address() Address { return p.address }
func (p ProgramAuthority) sealed()          {}

// IsProgramAuthority reports whether s signs for a derived address.
func IsProgramAuthority(s Signer) bool {
	_, ok := s.(ProgramAuthority)
	return ok
}
