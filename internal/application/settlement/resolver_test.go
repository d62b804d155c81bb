package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Decide(t *testing.T) {
	tests := []struct {
		name     string
		op       domain.Operator
		value    string
		feed     string // "" = sin publicación
		now      time.Time
		fallback FallbackPolicy
		want     domain.Outcome
		decided  bool
	}{
		{"feed satisface >", domain.OpGreater, "1.2", "1.3", start.Add(time.Hour), FallbackNo, domain.OutcomeYes, true},
		{"feed no satisface > antes de expirar", domain.OpGreater, "1.2", "1.2", start.Add(time.Hour), FallbackNo, "", false},
		{"feed no satisface > al expirar", domain.OpGreater, "1.2", "1.2", expiry, FallbackNo, domain.OutcomeNo, true},
		{"feed contrario con fallback none", domain.OpEqual, "aa", "bb", expiry, FallbackNone, domain.OutcomeNo, true},
		{"feed cuenta aun expirado", domain.OpGreaterEqual, "1.2", "1.2", expiry.Add(time.Hour), FallbackNo, domain.OutcomeYes, true},
		{"sin feed antes de expirar", domain.OpGreater, "1.2", "", start, FallbackNo, "", false},
		{"sin feed justo al expirar", domain.OpGreater, "1.2", "", expiry, FallbackNo, domain.OutcomeNo, true},
		{"fallback no con =", domain.OpEqual, "aa", "", expiry, FallbackNo, domain.OutcomeNo, true},
		{"fallback none con =", domain.OpEqual, "aa", "", expiry, FallbackNone, "", false},
		{"fallback none con !=", domain.OpNotEqual, "aa", "", expiry, FallbackNone, "", false},
		{"fallback none con orden", domain.OpLess, "1.2", "", expiry, FallbackNone, domain.OutcomeNo, true},
		{"texto bajo orden se ignora", domain.OpGreater, "1.2", "abc", start.Add(time.Hour), FallbackNo, "", false},
		{"texto bajo orden al expirar", domain.OpGreater, "1.2", "abc", expiry, FallbackNo, domain.OutcomeNo, true},
		{"igualdad de texto", domain.OpEqual, "aa", "aa", start.Add(time.Hour), FallbackNo, domain.OutcomeYes, true},
		{"desigualdad de texto", domain.OpNotEqual, "aa", "bb", start.Add(time.Hour), FallbackNo, domain.OutcomeYes, true},
		{"igualdad de texto contraria", domain.OpEqual, "aa", "bb", start.Add(time.Hour), FallbackNo, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &mockFeed{}
			if tt.feed != "" {
				feed.post(tt.feed, start)
			}
			r := NewResolver(testParams(tt.op, tt.value, ""), feed, tt.fallback)

			got, decided, err := r.Decide(context.Background(), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.decided, decided)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Decide_FeedError(t *testing.T) {
	feed := &mockFeed{err: errDiskFull}
	r := NewResolver(testParams(domain.OpGreater, "1.2", ""), feed, FallbackNo)

	_, _, err := r.Decide(context.Background(), expiry.Add(time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 1, feed.calls, "una sola lectura, sin reintentos")
}

func TestResolver_ResolveOrValidate_WriteOnce(t *testing.T) {
	feed := &mockFeed{}
	feed.post("1.3", start)
	r := NewResolver(testParams(domain.OpGreater, "1.2", ""), feed, FallbackNo)
	ctx := context.Background()
	st := domain.ContractState{}

	// Sugerencia equivocada: no resuelve
	_, err := r.ResolveOrValidate(ctx, &st, domain.OutcomeNo, start.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrOutcomeMismatch)
	assert.False(t, st.Resolved())

	got, err := r.ResolveOrValidate(ctx, &st, domain.OutcomeYes, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeYes, got)
	assert.Equal(t, domain.OutcomeYes, st.Winner)

	// El feed cambia pero el ganador guardado manda
	feed.post("1.0", start.Add(2*time.Hour))
	got, err = r.ResolveOrValidate(ctx, &st, domain.OutcomeYes, start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeYes, got)

	_, err = r.ResolveOrValidate(ctx, &st, domain.OutcomeNo, start.Add(3*time.Hour))
	assert.ErrorIs(t, err, domain.ErrOutcomeMismatch)
	assert.Equal(t, domain.OutcomeYes, st.Winner)
}

func TestResolver_ResolveOrValidate_Premature(t *testing.T) {
	r := NewResolver(testParams(domain.OpGreater, "1.2", ""), &mockFeed{}, FallbackNo)
	st := domain.ContractState{}

	for _, side := range []domain.Outcome{domain.OutcomeYes, domain.OutcomeNo} {
		_, err := r.ResolveOrValidate(context.Background(), &st, side, start)
		assert.ErrorIs(t, err, domain.ErrOutcomeMismatch)
	}
	assert.False(t, st.Resolved())
}

func TestResolver_ResolveOrValidate_Malformed(t *testing.T) {
	feed := &mockFeed{}
	r := NewResolver(testParams(domain.OpGreater, "1.2", ""), feed, FallbackNo)
	st := domain.ContractState{Winner: domain.OutcomeYes}

	_, err := r.ResolveOrValidate(context.Background(), &st, domain.Outcome("maybe"), start)
	assert.ErrorIs(t, err, domain.ErrMalformedOutcome)
	assert.Zero(t, feed.calls)
}
