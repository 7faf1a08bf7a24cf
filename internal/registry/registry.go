// internal/registry/registry.go
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/models"
)

var (
	// AuthoritySeed is the only seed the minting authority is ever derived from.
	AuthoritySeed = []byte("game")
	// RewardMintSeed derives the reward mint's address.
	RewardMintSeed = []byte("park_mint")
)

// RewardDecimals is fixed for the reward token.
const RewardDecimals uint8 = 6

// issueAuthority is the process-wide ProgramAuthority constructor. Claiming it here makes
// Authority the only source of the minting signer.
var issueAuthority = mustClaimIssuer()

func mustClaimIssuer() chain.AuthorityIssuer {
	issue, err := chain.ClaimAuthorityIssuer()
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return issue
}

// ErrAuthorityDrift means a stored registry no longer re-derives to its recorded authority.
var ErrAuthorityDrift = errors.New("registry authority does not match its seed")

// New builds the registry record for a deployment of programID. It derives the minting
// authority from AuthoritySeed and keeps the bump so later signing never searches again.
func New(programID, admin, serverWallet chain.Address, now time.Time) (*models.GameRegistry, error) {
	authority, bump, err := chain.FindProgramAddress(programID, AuthoritySeed)
	if err != nil {
		return nil, fmt.Errorf("derive registry authority: %w", err)
	}
	return &models.GameRegistry{
		ProgramID:     programID,
		Admin:         admin,
		ServerWallet:  serverWallet,
		AuthoritySeed: append([]byte(nil), AuthoritySeed...),
		AuthorityBump: bump,
		Authority:     authority,
		CreatedAt:     now.Unix(),
	}, nil
}

// AuthorityHandle signs for the registry's derived authority. It can only be obtained
// from a registry record through Authority, and carries no key material.
type AuthorityHandle struct {
	signer chain.ProgramAuthority
}

// Authority re-derives the registry's minting authority and checks it against the stored
// record. The canonical seed is enforced: a record carrying any other seed is rejected.
func Authority(reg *models.GameRegistry) (AuthorityHandle, error) {
	if !bytes.Equal(reg.AuthoritySeed, AuthoritySeed) {
		return AuthorityHandle{}, fmt.Errorf("%w: unexpected seed %q", ErrAuthorityDrift, reg.AuthoritySeed)
	}
	pa, err := issueAuthority(reg.ProgramID, reg.AuthoritySeed, reg.AuthorityBump)
	if err != nil {
		return AuthorityHandle{}, fmt.Errorf("%w: %v", ErrAuthorityDrift, err)
	}
	if pa.Address() != reg.Authority {
		return AuthorityHandle{}, fmt.Errorf("%w: derived %s, stored %s", ErrAuthorityDrift, pa.Address(), reg.Authority)
	}
	return AuthorityHandle{signer: pa}, nil
}

func (h AuthorityHandle) Address() chain.Address { return h.signer.Address() }

// Signer is what ledger mint calls are signed with.
func (h AuthorityHandle) Signer() chain.Signer { return h.signer }

// RewardMintAddress is the deterministic address of the reward mint for programID.
func RewardMintAddress(programID chain.Address) (chain.Address, error) {
	addr, _, err := chain.FindProgramAddress(programID, RewardMintSeed)
	if err != nil {
		return chain.ZeroAddress, fmt.Errorf("derive reward mint: %w", err)
	}
	return addr, nil
}
