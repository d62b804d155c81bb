package settlement

import "github.com/alejandrodnm/condtoken/internal/domain"

// MintReceipt describes one accepted deposit.
type MintReceipt struct {
	YesAsset domain.AssetID
	NoAsset  domain.AssetID
	Amount   int64 // minted on each side
	Fee      int64
	Defined  bool // true if this deposit created the pair
}

// Minter defines the YES/NO pair once and mints matched amounts per deposit.
type Minter struct {
	params    domain.ContractParams
	nativeFee int64
}

// NewMinter creates a minter. params.Address must already be resolved.
func NewMinter(params domain.ContractParams, nativeFee int64) *Minter {
	return &Minter{params: params, nativeFee: nativeFee}
}

// Deposit validates the asset, defines the pair on the first deposit and mints
// the net amount on both sides. It mutates st only on success.
func (m *Minter) Deposit(st *domain.ContractState, asset domain.AssetID, amount int64) (MintReceipt, error) {
	if asset == "" {
		asset = domain.NativeAsset
	}
	if asset != m.params.Reserve() {
		return MintReceipt{}, domain.ErrForeignAsset
	}

	var fee int64
	if m.params.ReserveIsNative() {
		fee = m.nativeFee
	}
	net := amount - fee
	if amount <= 0 || net <= 0 {
		return MintReceipt{}, domain.ErrInvalidAmount
	}

	receipt := MintReceipt{Amount: net, Fee: fee}
	if !st.HasPair() {
		st.YesAsset = domain.DeriveAssetID(m.params.Address, domain.OutcomeYes)
		st.NoAsset = domain.DeriveAssetID(m.params.Address, domain.OutcomeNo)
		receipt.Defined = true
	}
	receipt.YesAsset = st.YesAsset
	receipt.NoAsset = st.NoAsset

	st.YesSupply += net
	st.NoSupply += net
	st.TotalBacking += net
	return receipt, nil
}
