// internal/registry/mint.go
package registry

import (
	"context"
	"fmt"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/models"
)

// CreateRewardMint creates the reward token with admin as provisional authority and then
// hands mint authority to the registry's derived address. Both steps go through l, so
// they commit or fail together when l is transactional. reg.RewardMint is set on success.
func CreateRewardMint(ctx context.Context, l ledger.Ledger, reg *models.GameRegistry, admin chain.Signer, meta ledger.Metadata) (ledger.Mint, error) {
	if admin == nil || admin.Address() != reg.Admin {
		return ledger.Mint{}, game.ErrUnauthorized
	}
	if !reg.RewardMint.IsZero() {
		return ledger.Mint{}, fmt.Errorf("%w: reward mint %s", game.ErrAlreadyInitialized, reg.RewardMint)
	}

	handle, err := Authority(reg)
	if err != nil {
		return ledger.Mint{}, err
	}
	mintAddr, err := RewardMintAddress(reg.ProgramID)
	if err != nil {
		return ledger.Mint{}, err
	}

	provisional := admin.Address()
	if err := l.CreateMint(ctx, ledger.Mint{
		Address:   mintAddr,
		Decimals:  RewardDecimals,
		Authority: &provisional,
		Metadata:  meta,
	}); err != nil {
		return ledger.Mint{}, game.WrapLedger("create mint", err)
	}

	derived := handle.Address()
	if err := l.SetMintAuthority(ctx, mintAddr, admin, &derived); err != nil {
		return ledger.Mint{}, game.WrapLedger("set mint authority", err)
	}

	reg.RewardMint = mintAddr
	mint, err := l.GetMint(ctx, mintAddr)
	if err != nil {
		return ledger.Mint{}, game.WrapLedger("get mint", err)
	}
	return mint, nil
}

// MintReward mints tokens whole reward tokens to player's associated account, signed by
// the registry authority. It returns the raw amount minted.
func MintReward(ctx context.Context, l ledger.Ledger, reg *models.GameRegistry, player chain.Address, tokens uint64) (uint64, error) {
	if reg.RewardMint.IsZero() {
		return 0, fmt.Errorf("%w: reward mint not created", game.ErrNotInitialized)
	}
	handle, err := Authority(reg)
	if err != nil {
		return 0, err
	}

	mint, err := l.GetMint(ctx, reg.RewardMint)
	if err != nil {
		return 0, game.WrapLedger("get mint", err)
	}
	amount, err := ledger.ScaleTokens(tokens, mint.Decimals)
	if err != nil {
		return 0, game.WrapLedger("scale reward", err)
	}
	acct, err := l.OpenAccount(ctx, player, reg.RewardMint)
	if err != nil {
		return 0, game.WrapLedger("open account", err)
	}
	if err := l.MintTo(ctx, reg.RewardMint, acct.Address, amount, handle.Signer()); err != nil {
		return 0, game.WrapLedger("mint", err)
	}
	return amount, nil
}
