package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/condtoken/internal/application/settlement"
	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/alejandrodnm/condtoken/internal/ports"
)

// sendRequest agrupa los flags que construyen un mensaje.
type sendRequest struct {
	From    string
	Deposit int64
	Redeem  string
	Flag    string
	Asset   string
	Amount  int64
}

func (r sendRequest) any() bool {
	return r.Deposit != 0 || r.Redeem != "" || r.Flag != "" || r.Asset != ""
}

// message construye el mensaje pedido. Solo se admite un modo por invocación.
func (r sendRequest) message(params domain.ContractParams, st domain.ContractState) (domain.Message, error) {
	modes := 0
	for _, set := range []bool{r.Deposit != 0, r.Redeem != "", r.Flag != "", r.Asset != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return domain.Message{}, errors.New("use only one of -deposit, -redeem, -flag, -asset")
	}

	msg := domain.Message{Sender: r.From}
	switch {
	case r.Deposit != 0:
		msg.Transfers = []domain.Transfer{{Asset: params.Reserve(), Amount: r.Deposit}}
	case r.Redeem != "":
		side, err := domain.ParseOutcome(r.Redeem)
		if err != nil {
			return domain.Message{}, fmt.Errorf("-redeem: %w", err)
		}
		asset := st.AssetOf(side)
		if asset == "" {
			return domain.Message{}, errors.New("-redeem: token pair not defined yet, deposit first")
		}
		msg.Transfers = []domain.Transfer{{Asset: asset, Amount: r.Amount}}
	case r.Flag != "":
		msg.Data = map[string]string{domain.WinnerKey: r.Flag}
		if r.Amount > 0 {
			msg.Transfers = []domain.Transfer{{Asset: domain.NativeAsset, Amount: r.Amount}}
		}
	case r.Asset != "":
		msg.Transfers = []domain.Transfer{{Asset: domain.AssetID(r.Asset), Amount: r.Amount}}
	}
	return msg, nil
}

// send entrega el mensaje directamente a la instancia y notifica la respuesta.
func send(ctx context.Context, inst *settlement.Instance, notifier ports.Notifier, req sendRequest) error {
	msg, err := req.message(inst.Params(), inst.State())
	if err != nil {
		return err
	}
	msg.Timestamp = time.Now().UTC()

	resp, err := inst.Handle(ctx, msg)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := notifier.Notify(ctx, resp); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	return nil
}

// recordPost interpreta NAME=VALUE y lo publica como oráculo oracleID.
func recordPost(ctx context.Context, rec ports.FeedRecorder, oracleID, arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || name == "" || value == "" {
		return fmt.Errorf("recordPost: want NAME=VALUE, got %q", arg)
	}
	at := time.Now().UTC()
	if err := rec.PostFeed(ctx, oracleID, name, value, at); err != nil {
		return fmt.Errorf("recordPost: %w", err)
	}
	slog.Info("feed posted", "oracle", oracleID, "feed", name, "value", value, "at", at)
	return nil
}
