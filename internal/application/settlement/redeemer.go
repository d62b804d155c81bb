package settlement

import (
	"context"
	"time"

	"github.com/alejandrodnm/condtoken/internal/domain"
)

// Payout describes one accepted redemption.
type Payout struct {
	Side   domain.Outcome
	Asset  domain.AssetID // token burned
	Burned int64
	Paid   int64 // reserve paid out; 0 when burning the losing side
}

// Redeemer validates redemptions against the resolved winner.
type Redeemer struct {
	resolver *Resolver
	losing   LosingPolicy
}

// NewRedeemer creates a redeemer on top of resolver.
func NewRedeemer(resolver *Resolver, losing LosingPolicy) *Redeemer {
	return &Redeemer{resolver: resolver, losing: losing}
}

// Redeem burns amount of asset and pays the same amount of reserve when asset
// is the winning token. Sending a token is an implicit suggestion of its side.
// It mutates st only on success.
func (r *Redeemer) Redeem(ctx context.Context, st *domain.ContractState, asset domain.AssetID, amount int64, now time.Time) (Payout, error) {
	side, ok := st.SideOf(asset)
	if !ok {
		return Payout{}, domain.ErrForeignAsset
	}
	if amount <= 0 || amount > st.SupplyOf(side) {
		return Payout{}, domain.ErrInvalidAmount
	}

	// The losing token can only be burned against an already stored winner:
	// a loser's burn never commits the resolution.
	if r.losing == LosingBurn && st.Resolved() && side != st.Winner {
		burn(st, side, amount)
		return Payout{Side: side, Asset: asset, Burned: amount}, nil
	}

	winner, err := r.resolver.ResolveOrValidate(ctx, st, side, now)
	if err != nil {
		return Payout{}, err
	}
	if winner != side || amount > st.TotalBacking {
		// Unreachable with a consistent state: ResolveOrValidate only succeeds
		// for side == winner, and supply(winner) == backing.
		return Payout{}, domain.ErrInvalidAmount
	}

	burn(st, side, amount)
	st.TotalBacking -= amount
	return Payout{Side: side, Asset: asset, Burned: amount, Paid: amount}, nil
}

func burn(st *domain.ContractState, side domain.Outcome, amount int64) {
	switch side {
	case domain.OutcomeYes:
		st.YesSupply -= amount
	case domain.OutcomeNo:
		st.NoSupply -= amount
	}
}
