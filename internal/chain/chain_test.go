package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressTextRoundTrip(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	text, err := kp.Address().MarshalText()
	require.NoError(t, err)

	var parsed Address
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, kp.Address(), parsed)

	_, err = ParseAddress("not-base58-0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = AddressFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFindProgramAddressIsDeterministicAndOffCurve(t *testing.T) {
	program, err := NewKeypair()
	require.NoError(t, err)

	a1, bump1, err := FindProgramAddress(program.Address(), []byte("game"))
	require.NoError(t, err)
	a2, bump2, err := FindProgramAddress(program.Address(), []byte("game"))
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, bump1, bump2)
	assert.False(t, a1.IsOnCurve())

	other, _, err := FindProgramAddress(program.Address(), []byte("park_mint"))
	require.NoError(t, err)
	assert.NotEqual(t, a1, other)

	auth, err := newProgramAuthority(program.Address(), []byte("game"), bump1)
	require.NoError(t, err)
	assert.Equal(t, a1, auth.Address())
	assert.True(t, IsProgramAuthority(auth))
}

func TestAuthorityIssuerClaimedOnce(t *testing.T) {
	issue, err := ClaimAuthorityIssuer()
	require.NoError(t, err)
	require.NotNil(t, issue)

	again, err := ClaimAuthorityIssuer()
	assert.ErrorIs(t, err, ErrIssuerClaimed)
	assert.Nil(t, again)

	program, err := NewKeypair()
	require.NoError(t, err)
	derived, bump, err := FindProgramAddress(program.Address(), []byte("game"))
	require.NoError(t, err)
	auth, err := issue(program.Address(), []byte("game"), bump)
	require.NoError(t, err)
	assert.Equal(t, derived, auth.Address())
}

func TestCreateProgramAddressLimits(t *testing.T) {
	_, err := CreateProgramAddress(ZeroAddress, make([]byte, MaxSeedLength+1))
	assert.ErrorIs(t, err, ErrSeedTooLong)

	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateProgramAddress(ZeroAddress, seeds...)
	assert.ErrorIs(t, err, ErrMaxSeedsExceeded)
}

func TestAttestRefusesDerivedAddresses(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	s, err := Attest(kp.Address())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), s.Address())
	assert.False(t, IsProgramAuthority(s))

	derived, _, err := FindProgramAddress(kp.Address(), []byte("game"))
	require.NoError(t, err)
	_, err = Attest(derived)
	assert.ErrorIs(t, err, ErrNotWallet)
}

func TestKeypairSignVerify(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)
	assert.True(t, kp.Address().IsOnCurve())

	msg := []byte("hello")
	sig := kp.Sign(msg)
	assert.True(t, Verify(kp.Address(), msg, sig))
	assert.False(t, Verify(kp.Address(), []byte("tampered"), sig))
	assert.False(t, Verify(kp.Address(), msg, sig[:10]))
}

func TestAssociatedTokenAddressDiffersPerOwnerAndMint(t *testing.T) {
	owner1, _ := NewKeypair()
	owner2, _ := NewKeypair()
	mint, _ := NewKeypair()

	a := AssociatedTokenAddress(owner1.Address(), mint.Address())
	assert.Equal(t, a, AssociatedTokenAddress(owner1.Address(), mint.Address()))
	assert.NotEqual(t, a, AssociatedTokenAddress(owner2.Address(), mint.Address()))
	assert.False(t, a.IsOnCurve())
}
