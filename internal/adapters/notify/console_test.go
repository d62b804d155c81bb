package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/condtoken/internal/adapters/notify"
	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/alejandrodnm/condtoken/internal/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func makeResponse(accepted bool) domain.Response {
	r := domain.Response{
		MessageID:   "m1",
		Sender:      "alice",
		Kind:        domain.KindRedeem,
		Accepted:    accepted,
		Winner:      domain.OutcomeYes,
		ProcessedAt: at,
	}
	if accepted {
		r.Effects = []domain.Effect{
			{Type: domain.EffectBurn, Asset: "0xyes", Amount: 191333},
			{Type: domain.EffectPayout, Asset: domain.NativeAsset, Amount: 191333, Address: "alice"},
		}
	} else {
		r.Code = domain.CodeOutcomeMismatch
		r.Reason = "suggested outcome not confirmed"
	}
	return r
}

func TestConsole_Notify_Accepted(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.Notify(context.Background(), makeResponse(true)))

	out := buf.String()
	assert.Contains(t, out, "ACCEPT")
	assert.Contains(t, out, "payout=191333")
	assert.Contains(t, out, "winner=yes")
	assert.Contains(t, out, "burn", "la tabla de efectos va en modo table")
}

func TestConsole_Notify_Rejected(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeResponse(false)))

	out := buf.String()
	assert.Contains(t, out, "REJECT")
	assert.Contains(t, out, `reason="suggested outcome not confirmed"`)
	assert.NotContains(t, out, "payout=")
}

func TestConsole_PrintState(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	p := domain.ContractParams{
		Address: "0xinstance", OracleID: "ORACLE", FeedName: "EUR_USD",
		Operator: domain.OpGreater, Threshold: domain.ParseValue("1.2"), Expiry: at,
	}
	n.PrintState(p, domain.ContractState{})

	out := buf.String()
	assert.Contains(t, out, "0xinstance")
	assert.Contains(t, out, "EUR_USD[ORACLE] > 1.2")
	assert.Contains(t, out, "unset")
}

func TestConsole_PrintJournal(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintJournal(nil)
	assert.Contains(t, buf.String(), "Journal vacío")

	buf.Reset()
	n.PrintJournal([]domain.Response{makeResponse(true), makeResponse(false)})
	out := buf.String()
	assert.Contains(t, out, "JOURNAL (2)")
	assert.Contains(t, out, "bounced: suggested outcome not confirmed")
}

func TestConsole_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	ok := makeResponse(true)
	report := simulate.Report{
		Name:     "demo",
		Instance: "0xinstance",
		YesAsset: "0xyes",
		Steps: []simulate.StepResult{
			{Index: 1, Action: "redeem", From: "alice", At: at, Response: &ok},
			{Index: 2, Action: "advance", At: at},
			{Index: 3, Action: "flag", From: "bob", At: at, Failures: []string{"winner: want no, got yes"}},
		},
		Balances: map[string]map[domain.AssetID]int64{"alice": {"0xyes": 10, domain.NativeAsset: 5}},
	}
	n.PrintReport(report)

	out := buf.String()
	assert.Contains(t, out, "SCENARIO demo")
	assert.Contains(t, out, "winner: want no, got yes")
	assert.Contains(t, out, "1/3 steps failed")
	assert.Contains(t, out, "YES")
}
