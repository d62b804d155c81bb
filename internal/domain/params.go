package domain

import (
	"fmt"
	"strings"
	"time"
)

// AssetID identifica un asset del ledger. NativeAsset es la moneda nativa.
type AssetID string

// NativeAsset es el sentinel de la moneda nativa del ledger.
const NativeAsset AssetID = "base"

// ContractParams son los parámetros inmutables de una instancia.
type ContractParams struct {
	Address      string // identidad de la instancia; si está vacía se deriva de los params
	OracleID     string
	FeedName     string
	Operator     Operator
	Threshold    Value
	Expiry       time.Time
	ReserveAsset AssetID // "" o NativeAsset = moneda nativa
}

// Validate comprueba los params antes de instanciar. Garantiza que un operador
// de orden nunca se evalúe contra un threshold no numérico.
func (p ContractParams) Validate() error {
	if strings.TrimSpace(p.OracleID) == "" {
		return fmt.Errorf("%w: oracle address is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.FeedName) == "" {
		return fmt.Errorf("%w: feed name is required", ErrInvalidParams)
	}
	if _, err := ParseOperator(string(p.Operator)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.Threshold.Raw == "" {
		return fmt.Errorf("%w: feed value is required", ErrInvalidParams)
	}
	if p.Operator.IsOrdering() && !p.Threshold.Numeric {
		return fmt.Errorf("%w: comparison %s needs a numeric feed value, got %q",
			ErrInvalidParams, p.Operator, p.Threshold.Raw)
	}
	if p.Expiry.IsZero() {
		return fmt.Errorf("%w: expiry date is required", ErrInvalidParams)
	}
	return nil
}

// Reserve devuelve el asset de reserva normalizado (NativeAsset si no hay ninguno).
func (p ContractParams) Reserve() AssetID {
	if p.ReserveAsset == "" {
		return NativeAsset
	}
	return p.ReserveAsset
}

// ReserveIsNative devuelve true si la reserva es la moneda nativa.
func (p ContractParams) ReserveIsNative() bool {
	return p.Reserve() == NativeAsset
}

// Expired devuelve true a partir del instante de expiración (now >= expiry).
func (p ContractParams) Expired(now time.Time) bool {
	return !now.Before(p.Expiry)
}

// Canonical es la representación estable de los params de la que se deriva
// la dirección de la instancia.
func (p ContractParams) Canonical() string {
	return strings.Join([]string{
		"oracle=" + p.OracleID,
		"feed=" + p.FeedName,
		"op=" + string(p.Operator),
		"value=" + p.Threshold.Raw,
		"expiry=" + p.Expiry.UTC().Format(time.RFC3339),
		"reserve=" + string(p.Reserve()),
	}, "\n")
}

// WithAddress devuelve los params con Address resuelta (la derivada si está vacía).
func (p ContractParams) WithAddress() ContractParams {
	if p.Address == "" {
		p.Address = DeriveInstanceAddress(p)
	}
	return p
}

// ParseExpiry acepta "YYYY-MM-DD" (medianoche UTC) o RFC3339.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expiry date %q: want YYYY-MM-DD or RFC3339", ErrInvalidParams, s)
	}
	return t.UTC(), nil
}
