package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/condtoken/internal/application/settlement"
	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
contract:
  oracle_address: ORACLE
  feed_name: EUR_USD
  comparison: ">="
  feed_value: "1.2"
  expiry_date: 2024-01-11
  reserve_asset: USDC
settlement:
  deadline_fallback: none
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "store", cfg.Oracle.Source)
	assert.Equal(t, 10*time.Second, cfg.OracleTimeout())
	assert.Equal(t, "settler.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "reject", cfg.Settlement.LosingRedemption)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SETTLER_DB_DSN", ":memory:")
	t.Setenv("SETTLER_ORACLE_URL", "http://oracle.local")
	t.Setenv("SETTLER_NATIVE_FEE", "0")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "http", cfg.Oracle.Source)
	assert.Equal(t, "http://oracle.local", cfg.Oracle.BaseURL)

	pol, err := cfg.Settlement.Policy()
	require.NoError(t, err)
	assert.Zero(t, pol.NativeFee)
}

func TestContractConfig_Params(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	p, err := cfg.Contract.Params()
	require.NoError(t, err)
	assert.Equal(t, domain.OpGreaterEqual, p.Operator)
	assert.True(t, p.Threshold.Numeric)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), p.Expiry)
	assert.Equal(t, domain.AssetID("USDC"), p.Reserve())
	assert.Equal(t, domain.DeriveInstanceAddress(p), p.Address)
}

func TestContractConfig_Params_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  ContractConfig
	}{
		{"sin operador", ContractConfig{OracleAddress: "O", FeedName: "F", FeedValue: "1", ExpiryDate: "2024-01-11"}},
		{"fecha mala", ContractConfig{OracleAddress: "O", FeedName: "F", Comparison: ">", FeedValue: "1", ExpiryDate: "11/01/2024"}},
		{"orden sobre texto", ContractConfig{OracleAddress: "O", FeedName: "F", Comparison: ">", FeedValue: "abc", ExpiryDate: "2024-01-11"}},
		{"sin oráculo", ContractConfig{FeedName: "F", Comparison: "=", FeedValue: "abc", ExpiryDate: "2024-01-11"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Params()
			assert.Error(t, err)
		})
	}
}

func TestSettlementConfig_Policy(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	pol, err := cfg.Settlement.Policy()
	require.NoError(t, err)
	assert.Equal(t, int64(settlement.DefaultNativeFee), pol.NativeFee)
	assert.Equal(t, settlement.FallbackNone, pol.Fallback)
	assert.Equal(t, settlement.LosingReject, pol.Losing)

	_, err = SettlementConfig{LosingRedemption: "keep"}.Policy()
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "EUR_USD", cfg.Contract.FeedName)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
