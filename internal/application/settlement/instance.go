package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/alejandrodnm/condtoken/internal/ports"
)

// Instance is one deployed contract. It owns its ContractState and processes
// messages strictly one at a time: each message runs against a private copy
// of the state, and the copy replaces the stored state only if the message is
// accepted and persisted.
type Instance struct {
	params domain.ContractParams
	cfg    Config
	store  ports.StateStore

	resolver *Resolver
	minter   *Minter
	redeemer *Redeemer

	mu    sync.Mutex
	state domain.ContractState
}

// New validates params and cfg, resolves the instance address and loads the
// persisted state.
func New(ctx context.Context, params domain.ContractParams, cfg Config, feed ports.FeedReader, store ports.StateStore) (*Instance, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("settlement.New: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("settlement.New: %w", err)
	}
	params = params.WithAddress()

	st, err := store.LoadState(ctx, params.Address)
	if err != nil {
		return nil, fmt.Errorf("settlement.New: load state %s: %w", params.Address, err)
	}
	if err := st.CheckConservation(); err != nil {
		return nil, fmt.Errorf("settlement.New: stored state for %s: %w", params.Address, err)
	}

	resolver := NewResolver(params, feed, cfg.Fallback)
	return &Instance{
		params:   params,
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		minter:   NewMinter(params, cfg.NativeFee),
		redeemer: NewRedeemer(resolver, cfg.Losing),
		state:    st,
	}, nil
}

// Params returns the immutable params, with the resolved address.
func (in *Instance) Params() domain.ContractParams {
	return in.params
}

// Address returns the instance identity.
func (in *Instance) Address() string {
	return in.params.Address
}

// State returns a snapshot of the current state.
func (in *Instance) State() domain.ContractState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Classify tells which handler a message is routed to.
func (in *Instance) Classify(msg domain.Message) domain.MessageKind {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.classify(in.state, msg)
}

// Handle processes one message to completion. A rejection is a normal
// Response with Accepted=false and no state change. A non-nil error means
// infrastructure failure (feed or storage); the state is unchanged as well.
func (in *Instance) Handle(ctx context.Context, msg domain.Message) (domain.Response, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if msg.ID == "" {
		msg.ID = domain.NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	work := in.state
	kind := in.classify(work, msg)

	effects, err := in.dispatch(ctx, &work, kind, msg)
	if rej, ok := domain.AsRejection(err); ok {
		resp := in.response(msg, kind, in.state)
		resp.Code = rej.Code
		resp.Reason = rej.Message
		if err := in.store.RecordRejection(ctx, in.params.Address, resp); err != nil {
			slog.Warn("settlement: journal write failed", "msg_id", msg.ID, "err", err)
		}
		slog.Info("settlement: message rejected",
			"instance", in.params.Address, "msg_id", msg.ID, "kind", kind, "reason", rej.Message)
		return resp, nil
	}
	if err != nil {
		return domain.Response{}, fmt.Errorf("settlement.Handle %s: %w", msg.ID, err)
	}

	if err := work.CheckConservation(); err != nil {
		return domain.Response{}, fmt.Errorf("settlement.Handle %s: %w", msg.ID, err)
	}

	resp := in.response(msg, kind, work)
	resp.Accepted = true
	resp.Effects = effects
	if err := in.store.Commit(ctx, in.params.Address, work, resp); err != nil {
		return domain.Response{}, fmt.Errorf("settlement.Handle %s: commit: %w", msg.ID, err)
	}
	in.state = work

	slog.Info("settlement: message accepted",
		"instance", in.params.Address, "msg_id", msg.ID, "kind", kind,
		"winner", work.Winner.String(), "backing", work.TotalBacking)
	return resp, nil
}

func (in *Instance) classify(st domain.ContractState, msg domain.Message) domain.MessageKind {
	assets := msg.NonNativeAssets()
	switch len(assets) {
	case 0:
		if _, ok := msg.SuggestedWinner(); ok {
			return domain.KindFlag
		}
		if in.params.ReserveIsNative() && msg.AmountOf(domain.NativeAsset) > 0 {
			return domain.KindDeposit
		}
	case 1:
		if assets[0] == in.params.Reserve() {
			return domain.KindDeposit
		}
		if _, ok := st.SideOf(assets[0]); ok {
			return domain.KindRedeem
		}
	}
	return domain.KindForeign
}

func (in *Instance) dispatch(ctx context.Context, st *domain.ContractState, kind domain.MessageKind, msg domain.Message) ([]domain.Effect, error) {
	switch kind {
	case domain.KindDeposit:
		reserve := in.params.Reserve()
		receipt, err := in.minter.Deposit(st, reserve, msg.AmountOf(reserve))
		if err != nil {
			return nil, err
		}
		var effects []domain.Effect
		if receipt.Defined {
			effects = append(effects,
				domain.Effect{Type: domain.EffectDefine, Asset: receipt.YesAsset},
				domain.Effect{Type: domain.EffectDefine, Asset: receipt.NoAsset},
			)
		}
		return append(effects,
			domain.Effect{Type: domain.EffectMint, Asset: receipt.YesAsset, Amount: receipt.Amount, Address: msg.Sender},
			domain.Effect{Type: domain.EffectMint, Asset: receipt.NoAsset, Amount: receipt.Amount, Address: msg.Sender},
		), nil

	case domain.KindRedeem:
		asset := msg.NonNativeAssets()[0]
		payout, err := in.redeemer.Redeem(ctx, st, asset, msg.AmountOf(asset), msg.Timestamp)
		if err != nil {
			return nil, err
		}
		effects := []domain.Effect{{Type: domain.EffectBurn, Asset: payout.Asset, Amount: payout.Burned}}
		if payout.Paid > 0 {
			effects = append(effects, domain.Effect{
				Type: domain.EffectPayout, Asset: in.params.Reserve(), Amount: payout.Paid, Address: msg.Sender,
			})
		}
		return effects, nil

	case domain.KindFlag:
		raw, _ := msg.SuggestedWinner()
		suggested, err := domain.ParseOutcome(raw)
		if err != nil {
			return nil, err
		}
		if _, err := in.resolver.ResolveOrValidate(ctx, st, suggested, msg.Timestamp); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, domain.ErrForeignAsset
}

func (in *Instance) response(msg domain.Message, kind domain.MessageKind, st domain.ContractState) domain.Response {
	return domain.Response{
		MessageID:   msg.ID,
		Instance:    in.params.Address,
		Sender:      msg.Sender,
		Kind:        kind,
		Winner:      st.Winner,
		ProcessedAt: msg.Timestamp,
	}
}
