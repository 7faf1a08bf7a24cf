// internal/chain/derive.go
package chain

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// MaxSeeds is the largest number of seeds (bump included) accepted by CreateProgramAddress.
	MaxSeeds = 16
	// MaxSeedLength is the largest accepted length of a single seed.
	MaxSeedLength = 32
)

var (
	ErrMaxSeedsExceeded = errors.New("too many derivation seeds")
	ErrSeedTooLong      = errors.New("derivation seed too long")
	// ErrOnCurve means the seeds produced a point that a private key could sign for.
	ErrOnCurve = errors.New("derived address lies on the ed25519 curve")
	// ErrNoViableBump means no bump in [0, 255] produced an off-curve address.
	ErrNoViableBump = errors.New("unable to find a viable program address bump")
)

// derivationMarker separates derived addresses from any other blake2b digest.
var derivationMarker = []byte("ProgramDerivedAddress")

// Well-known program identities used when deriving token addresses.
var (
	TokenProgramID           = MustParseAddress("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = MustParseAddress("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// CreateProgramAddress hashes seeds and programID into an address that has no private key.
// It fails with ErrOnCurve when the digest happens to be a valid curve point.
func CreateProgramAddress(programID Address, seeds ...[]byte) (Address, error) {
	if len(seeds) > MaxSeeds {
		return ZeroAddress, ErrMaxSeedsExceeded
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return ZeroAddress, fmt.Errorf("blake2b: %w", err)
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return ZeroAddress, fmt.Errorf("%w: %d bytes", ErrSeedTooLong, len(seed))
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write(derivationMarker)

	var a Address
	copy(a[:], h.Sum(nil))
	if a.IsOnCurve() {
		return ZeroAddress, ErrOnCurve
	}
	return a, nil
}

// FindProgramAddress searches bumps from 255 down and returns the first off-curve address
// together with the bump that produced it. The result is deterministic for fixed inputs.
func FindProgramAddress(programID Address, seeds ...[]byte) (Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(programID, withBump...)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return ZeroAddress, 0, err
		}
		return addr, uint8(bump), nil
	}
	return ZeroAddress, 0, ErrNoViableBump
}

// AssociatedTokenAddress is the canonical token account of owner for mint.
func AssociatedTokenAddress(owner, mint Address) Address {
	addr, _, err := FindProgramAddress(AssociatedTokenProgramID, owner[:], TokenProgramID[:], mint[:])
	if err != nil {
		// three 32-byte seeds are always within limits; exhausting every bump is not reachable in practice
		panic(fmt.Sprintf("associated token address for %s/%s: %v", owner, mint, err))
	}
	return addr
}
