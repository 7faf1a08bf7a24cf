package ledger

import (
	"context"
	"testing"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookFixture struct {
	backend   *MemoryBackend
	book      *Book
	authority *chain.Keypair
	mint      chain.Address
}

func newBookFixture(t *testing.T) *bookFixture {
	t.Helper()
	authority, err := chain.NewKeypair()
	require.NoError(t, err)
	mintKey, err := chain.NewKeypair()
	require.NoError(t, err)

	backend := NewMemoryBackend()
	book := NewBook(backend)
	authAddr := authority.Address()
	require.NoError(t, book.CreateMint(context.Background(), Mint{
		Address:   mintKey.Address(),
		Decimals:  6,
		Authority: &authAddr,
	}))
	return &bookFixture{backend: backend, book: book, authority: authority, mint: mintKey.Address()}
}

// issueAuthority is claimed once for this test binary; nothing else here claims it.
var issueAuthority = func() chain.AuthorityIssuer {
	issue, err := chain.ClaimAuthorityIssuer()
	if err != nil {
		panic(err)
	}
	return issue
}()

func newWallet(t *testing.T) *chain.Keypair {
	t.Helper()
	kp, err := chain.NewKeypair()
	require.NoError(t, err)
	return kp
}

func TestCreateMintRejectsDuplicates(t *testing.T) {
	f := newBookFixture(t)
	err := f.book.CreateMint(context.Background(), Mint{Address: f.mint, Decimals: 6})
	assert.ErrorIs(t, err, ErrMintExists)
}

func TestOpenAccountIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	owner := newWallet(t)

	a1, err := f.book.OpenAccount(ctx, owner.Address(), f.mint)
	require.NoError(t, err)
	require.NoError(t, f.book.MintTo(ctx, f.mint, a1.Address, 5, f.authority))

	a2, err := f.book.OpenAccount(ctx, owner.Address(), f.mint)
	require.NoError(t, err)
	assert.Equal(t, a1.Address, a2.Address)
	assert.Equal(t, uint64(5), a2.Amount)
	assert.Equal(t, chain.AssociatedTokenAddress(owner.Address(), f.mint), a2.Address)

	_, err = f.book.OpenAccount(ctx, owner.Address(), owner.Address())
	assert.ErrorIs(t, err, ErrMintNotFound)
}

func TestTransferChecked(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	alice, bob := newWallet(t), newWallet(t)

	from, err := f.book.OpenAccount(ctx, alice.Address(), f.mint)
	require.NoError(t, err)
	to, err := f.book.OpenAccount(ctx, bob.Address(), f.mint)
	require.NoError(t, err)
	require.NoError(t, f.book.MintTo(ctx, f.mint, from.Address, 1_500_000, f.authority))

	t.Run("wrong signer", func(t *testing.T) {
		err := f.book.TransferChecked(ctx, from.Address, to.Address, f.mint, 1_000_000, 6, bob)
		assert.ErrorIs(t, err, ErrOwnerMismatch)
	})
	t.Run("wrong decimals", func(t *testing.T) {
		err := f.book.TransferChecked(ctx, from.Address, to.Address, f.mint, 1_000_000, 9, alice)
		assert.ErrorIs(t, err, ErrDecimalsMismatch)
	})
	t.Run("zero amount", func(t *testing.T) {
		err := f.book.TransferChecked(ctx, from.Address, to.Address, f.mint, 0, 6, alice)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("success", func(t *testing.T) {
		require.NoError(t, f.book.TransferChecked(ctx, from.Address, to.Address, f.mint, 1_000_000, 6, alice))
		src, _ := f.book.GetAccount(ctx, from.Address)
		dst, _ := f.book.GetAccount(ctx, to.Address)
		assert.Equal(t, uint64(500_000), src.Amount)
		assert.Equal(t, uint64(1_000_000), dst.Amount)
	})
	t.Run("insufficient funds leaves balances unchanged", func(t *testing.T) {
		err := f.book.TransferChecked(ctx, from.Address, to.Address, f.mint, 1_000_000, 6, alice)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		src, _ := f.book.GetAccount(ctx, from.Address)
		assert.Equal(t, uint64(500_000), src.Amount)
	})
	t.Run("self transfer", func(t *testing.T) {
		err := f.book.TransferChecked(ctx, from.Address, from.Address, f.mint, 1, 6, alice)
		assert.ErrorIs(t, err, ErrSelfTransfer)
	})
}

func TestTransferRejectsForeignMintAccount(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	other := newBookFixture(t)
	alice := newWallet(t)

	// account for a mint that lives only in the other book
	foreign := TokenAccount{Address: newWallet(t).Address(), Mint: other.mint, Owner: alice.Address(), Amount: 10}
	require.NoError(t, f.backend.SaveAccount(ctx, foreign))
	to, err := f.book.OpenAccount(ctx, newWallet(t).Address(), f.mint)
	require.NoError(t, err)

	err = f.book.TransferChecked(ctx, foreign.Address, to.Address, f.mint, 1, 6, alice)
	assert.ErrorIs(t, err, ErrMintMismatch)
}

func TestMintToRequiresAuthority(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	player := newWallet(t)
	acct, err := f.book.OpenAccount(ctx, player.Address(), f.mint)
	require.NoError(t, err)

	assert.ErrorIs(t, f.book.MintTo(ctx, f.mint, acct.Address, 1, player), ErrAuthorityMismatch)
	require.NoError(t, f.book.MintTo(ctx, f.mint, acct.Address, 7, f.authority))

	mint, err := f.book.GetMint(ctx, f.mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), mint.Supply)
}

func TestDerivedAuthorityOnlySignableByProgramAuthority(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	program := newWallet(t)
	player := newWallet(t)

	derived, bump, err := chain.FindProgramAddress(program.Address(), []byte("game"))
	require.NoError(t, err)
	require.NoError(t, f.book.SetMintAuthority(ctx, f.mint, f.authority, &derived))

	acct, err := f.book.OpenAccount(ctx, player.Address(), f.mint)
	require.NoError(t, err)

	// the previous key holder lost minting rights
	assert.ErrorIs(t, f.book.MintTo(ctx, f.mint, acct.Address, 1, f.authority), ErrAuthorityMismatch)
	// a ProgramAuthority from another seed derives a different address
	wrong, err := issueAuthority(program.Address(), []byte("park_mint"), bump)
	if err == nil {
		assert.ErrorIs(t, f.book.MintTo(ctx, f.mint, acct.Address, 1, wrong), ErrAuthorityMismatch)
	}

	pa, err := issueAuthority(program.Address(), []byte("game"), bump)
	require.NoError(t, err)
	require.NoError(t, f.book.MintTo(ctx, f.mint, acct.Address, 3, pa))

	got, _ := f.book.GetAccount(ctx, acct.Address)
	assert.Equal(t, uint64(3), got.Amount)
}

func TestSetMintAuthorityToNilFixesSupply(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	acct, err := f.book.OpenAccount(ctx, newWallet(t).Address(), f.mint)
	require.NoError(t, err)

	require.NoError(t, f.book.SetMintAuthority(ctx, f.mint, f.authority, nil))
	assert.ErrorIs(t, f.book.MintTo(ctx, f.mint, acct.Address, 1, f.authority), ErrFixedSupply)
}

func TestMintToOverflow(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	acct, err := f.book.OpenAccount(ctx, newWallet(t).Address(), f.mint)
	require.NoError(t, err)

	require.NoError(t, f.book.MintTo(ctx, f.mint, acct.Address, ^uint64(0), f.authority))
	assert.ErrorIs(t, f.book.MintTo(ctx, f.mint, acct.Address, 1, f.authority), ErrOverflow)
}

func TestStagedBackendCommitAndDiscard(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	owner := newWallet(t)
	acct, err := f.book.OpenAccount(ctx, owner.Address(), f.mint)
	require.NoError(t, err)

	discarded := f.backend.Stage()
	require.NoError(t, NewBook(discarded).MintTo(ctx, f.mint, acct.Address, 9, f.authority))
	got, _ := f.book.GetAccount(ctx, acct.Address)
	assert.Equal(t, uint64(0), got.Amount, "staged write must stay invisible")

	committed := f.backend.Stage()
	require.NoError(t, NewBook(committed).MintTo(ctx, f.mint, acct.Address, 4, f.authority))
	committed.Commit()
	got, _ = f.book.GetAccount(ctx, acct.Address)
	assert.Equal(t, uint64(4), got.Amount)

	mint, _ := f.book.GetMint(ctx, f.mint)
	assert.Equal(t, mint.Supply, got.Amount)
}

func TestAmountConversions(t *testing.T) {
	units, err := UnitsPerToken(6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), units)

	scaled, err := ScaleTokens(10, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), scaled)

	_, err = ScaleTokens(^uint64(0), 6)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = UnitsPerToken(20)
	assert.ErrorIs(t, err, ErrOverflow)

	assert.Equal(t, "1.5", ToUIAmount(1_500_000, 6).String())

	raw, err := FromUIAmount(decimal.RequireFromString("2.25"), 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_250_000), raw)

	_, err = FromUIAmount(decimal.RequireFromString("0.0000001"), 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = FromUIAmount(decimal.RequireFromString("-1"), 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
