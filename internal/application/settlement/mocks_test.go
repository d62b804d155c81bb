package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/alejandrodnm/condtoken/internal/domain"
)

var (
	start  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry = time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
)

// --- mockFeed ---

type feedPost struct {
	value string
	at    time.Time
}

type mockFeed struct {
	posts []feedPost
	err   error
	calls int
}

func (m *mockFeed) post(value string, at time.Time) {
	m.posts = append(m.posts, feedPost{value: value, at: at})
}

func (m *mockFeed) ReadFeed(_ context.Context, _, _ string, asOf time.Time) (string, bool, error) {
	m.calls++
	if m.err != nil {
		return "", false, m.err
	}
	var (
		best  string
		found bool
	)
	for _, p := range m.posts {
		if p.at.Before(asOf) {
			best, found = p.value, true
		}
	}
	return best, found, nil
}

// --- mockStore ---

var errDiskFull = errors.New("disk full")

type mockStore struct {
	state     domain.ContractState
	committed []domain.Response
	rejected  []domain.Response
	commitErr error
	rejectErr error
	loadErr   error
}

func (m *mockStore) LoadState(_ context.Context, _ string) (domain.ContractState, error) {
	return m.state, m.loadErr
}

func (m *mockStore) Commit(_ context.Context, _ string, st domain.ContractState, resp domain.Response) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.state = st
	m.committed = append(m.committed, resp)
	return nil
}

func (m *mockStore) RecordRejection(_ context.Context, _ string, resp domain.Response) error {
	m.rejected = append(m.rejected, resp)
	return m.rejectErr
}

func (m *mockStore) Journal(_ context.Context, _ string, _ int) ([]domain.Response, error) {
	all := append(append([]domain.Response{}, m.committed...), m.rejected...)
	return all, nil
}

func (m *mockStore) Close() error { return nil }

// --- helpers ---

func testParams(op domain.Operator, threshold string, reserve domain.AssetID) domain.ContractParams {
	return domain.ContractParams{
		OracleID:     "ORACLE",
		FeedName:     "EUR_USD",
		Operator:     op,
		Threshold:    domain.ParseValue(threshold),
		Expiry:       expiry,
		ReserveAsset: reserve,
	}.WithAddress()
}

func native(amount int64) []domain.Transfer {
	return []domain.Transfer{{Asset: domain.NativeAsset, Amount: amount}}
}

func token(asset domain.AssetID, amount int64) []domain.Transfer {
	return []domain.Transfer{{Asset: asset, Amount: amount}, {Asset: domain.NativeAsset, Amount: 10000}}
}
