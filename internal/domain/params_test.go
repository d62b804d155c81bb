package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() ContractParams {
	return ContractParams{
		OracleID:  "ORACLE",
		FeedName:  "EUR_USD",
		Operator:  OpGreater,
		Threshold: ParseValue("1.2"),
		Expiry:    time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestContractParams_Validate(t *testing.T) {
	require.NoError(t, validParams().Validate())

	p := validParams()
	p.Threshold = ParseValue("DUMBO")
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams, "orden contra texto se rechaza al desplegar")

	p.Operator = OpEqual
	assert.NoError(t, p.Validate())

	p = validParams()
	p.OracleID = ""
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = validParams()
	p.Expiry = time.Time{}
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = validParams()
	p.Operator = "~"
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
}

func TestContractParams_Expired(t *testing.T) {
	p := validParams()
	assert.False(t, p.Expired(p.Expiry.Add(-time.Nanosecond)))
	assert.True(t, p.Expired(p.Expiry), "el instante de expiración ya cuenta como expirado")
	assert.True(t, p.Expired(p.Expiry.Add(time.Hour)))
}

func TestContractParams_Reserve(t *testing.T) {
	p := validParams()
	assert.Equal(t, NativeAsset, p.Reserve())
	assert.True(t, p.ReserveIsNative())

	p.ReserveAsset = "USDC"
	assert.Equal(t, AssetID("USDC"), p.Reserve())
	assert.False(t, p.ReserveIsNative())
}

func TestParseExpiry(t *testing.T) {
	got, err := ParseExpiry("2024-01-11")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseExpiry("2024-01-11T12:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 11, 10, 30, 0, 0, time.UTC), got)

	_, err = ParseExpiry("next tuesday")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestDeriveIDs_Deterministic(t *testing.T) {
	p := validParams()
	a1 := DeriveInstanceAddress(p)
	a2 := DeriveInstanceAddress(p)
	assert.Equal(t, a1, a2)
	assert.Len(t, a1, 66) // 0x + 32 bytes hex

	p.Threshold = ParseValue("1.3")
	assert.NotEqual(t, a1, DeriveInstanceAddress(p))

	yes := DeriveAssetID(a1, OutcomeYes)
	no := DeriveAssetID(a1, OutcomeNo)
	assert.NotEqual(t, yes, no)
	assert.Equal(t, yes, DeriveAssetID(a1, OutcomeYes))
	assert.NotEqual(t, yes, DeriveAssetID(DeriveInstanceAddress(p), OutcomeYes))
}

func TestWithAddress_KeepsExplicit(t *testing.T) {
	p := validParams()
	p.Address = "MY_AA"
	assert.Equal(t, "MY_AA", p.WithAddress().Address)

	p.Address = ""
	assert.Equal(t, DeriveInstanceAddress(p), p.WithAddress().Address)
}
