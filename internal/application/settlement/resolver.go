package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/alejandrodnm/condtoken/internal/ports"
)

// Resolver is the resolution state machine: Unresolved -> Resolved(Yes|No).
// Both the flag path and the redeem path go through ResolveOrValidate, so the
// write-once rule lives here and nowhere else.
type Resolver struct {
	params   domain.ContractParams
	feed     ports.FeedReader
	fallback FallbackPolicy
}

// NewResolver creates a resolver for the given immutable params.
func NewResolver(params domain.ContractParams, feed ports.FeedReader, fallback FallbackPolicy) *Resolver {
	return &Resolver{params: params, feed: feed, fallback: fallback}
}

// Decide computes the outcome the evidence supports at now, without looking at
// any suggestion or stored winner. A feed value satisfying the condition
// decides Yes at any time; anything else decides No only from expiry on.
// decided=false means nothing can be concluded yet (the deadline has not
// passed, or the fallback policy declines to decide on a missing feed).
func (r *Resolver) Decide(ctx context.Context, now time.Time) (outcome domain.Outcome, decided bool, err error) {
	raw, ok, err := r.feed.ReadFeed(ctx, r.params.OracleID, r.params.FeedName, now)
	if err != nil {
		return "", false, fmt.Errorf("settlement.Decide: read feed %q: %w", r.params.FeedName, err)
	}

	expired := r.params.Expired(now)
	if ok {
		holds, err := domain.Compare(domain.ParseValue(raw), r.params.Operator, r.params.Threshold)
		switch {
		case err == nil && holds:
			return domain.OutcomeYes, true, nil
		case err == nil:
			// A value failing the condition only decides No once expired.
			if !expired {
				return "", false, nil
			}
			return domain.OutcomeNo, true, nil
		case errors.Is(err, domain.ErrNotComparable):
			// A non-numeric post under an ordering operator proves nothing.
			slog.Debug("settlement: ignoring non-comparable feed value",
				"feed", r.params.FeedName, "value", raw, "op", r.params.Operator)
		default:
			return "", false, fmt.Errorf("settlement.Decide: compare: %w", err)
		}
	}

	if !expired {
		return "", false, nil
	}
	if r.fallback == FallbackNone && !r.params.Operator.IsOrdering() {
		return "", false, nil
	}
	return domain.OutcomeNo, true, nil
}

// ResolveOrValidate confirms suggested against the stored winner or, when the
// state is unresolved, against the evidence. On success it returns the winner
// and, if the state was unresolved, commits it into st. On rejection st is
// left untouched.
func (r *Resolver) ResolveOrValidate(ctx context.Context, st *domain.ContractState, suggested domain.Outcome, now time.Time) (domain.Outcome, error) {
	if !suggested.Valid() {
		return "", domain.ErrMalformedOutcome
	}

	if st.Resolved() {
		if suggested != st.Winner {
			return "", domain.ErrOutcomeMismatch
		}
		return st.Winner, nil
	}

	decided, ok, err := r.Decide(ctx, now)
	if err != nil {
		return "", err
	}
	if !ok || decided != suggested {
		return "", domain.ErrOutcomeMismatch
	}

	st.Winner = decided
	return decided, nil
}
