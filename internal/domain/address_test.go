package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-contracts/internal/domain"
)

func TestNormalizeAddress(t *testing.T) {
	checksum := "0x4a986a6dCA6dbf99bC3d17F8D71aFb0d60e740f8"

	t.Run("case insensitive identity", func(t *testing.T) {
		fromChecksum, err := domain.NormalizeAddress(checksum)
		require.NoError(t, err)
		fromLower, err := domain.NormalizeAddress(strings.ToLower(checksum))
		require.NoError(t, err)
		fromUpper, err := domain.NormalizeAddress("0x" + strings.ToUpper(checksum[2:]))
		require.NoError(t, err)

		assert.Equal(t, fromChecksum, fromLower)
		assert.Equal(t, fromChecksum, fromUpper)
		assert.Equal(t, domain.AddressKey(fromChecksum), domain.AddressKey(fromLower))
		assert.Equal(t, checksum, domain.ChecksumAddress(fromLower))
	})

	t.Run("without prefix", func(t *testing.T) {
		addr, err := domain.NormalizeAddress(checksum[2:])
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(checksum), addr)
	})

	invalid := map[string]string{
		"hash sized": "0x1402b10CA274cD76C441e16C844223F79D3566De12bb12b0aebFE41aDFAe302",
		"ens name":   "test.eth",
		"empty":      "",
		"not hex":    "0xzz986a6dCA6dbf99bC3d17F8D71aFb0d60e740f8",
		"too short":  "0x1234",
	}
	for name, value := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := domain.NormalizeAddress(value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidAddress))

			var addrErr *domain.InvalidAddressError
			require.ErrorAs(t, err, &addrErr)
			assert.Equal(t, value, addrErr.Value)
		})
	}

	t.Run("unknown value message", func(t *testing.T) {
		value := "0x1402b10CA274cD76C441e16C844223F79D3566De12bb12b0aebFE41aDFAe302"
		_, err := domain.NormalizeAddress(value)
		assert.EqualError(t, err, "Unknown address value '"+value+"'.")
	})
}

func TestNormalizeAddressBytes(t *testing.T) {
	want := common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")

	got, err := domain.NormalizeAddressBytes(want.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = domain.NormalizeAddressBytes([]byte(strings.ToLower(want.Hex())))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = domain.NormalizeAddressBytes(make([]byte, 32))
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, domain.IsRateLimited(&domain.ExplorerError{RateLimited: true}))
	assert.True(t, domain.IsRateLimited(errors.New("you have been rate limited")))
	assert.True(t, domain.IsRateLimited(domain.ErrRateLimited))
	assert.False(t, domain.IsRateLimited(errors.New("nope")))
	assert.False(t, domain.IsRateLimited(nil))
}

func TestContractNotFoundError(t *testing.T) {
	addr := common.HexToAddress("0x4a986a6dca6dbF99Bc3D17F8d71aFB0D60E740F9")
	err := error(&domain.ContractNotFoundError{Address: addr, Cause: domain.ErrNotAContract})

	assert.ErrorIs(t, err, domain.ErrContractNotFound)
	assert.ErrorIs(t, err, domain.ErrNotAContract)
	assert.Equal(t, "Failed to get contract type for address '"+addr.Hex()+"'.", err.Error())
}
