package settlement

import "fmt"

// DefaultNativeFee es el fee fijo de red que se descuenta de un depósito en
// moneda nativa.
const DefaultNativeFee = 5000

// FallbackPolicy decide qué pasa al expirar sin ningún valor del oráculo.
type FallbackPolicy string

const (
	// FallbackNo resuelve No para cualquier operador: la condición nunca se demostró.
	FallbackNo FallbackPolicy = "no"
	// FallbackNone no aplica fallback a = y !=; el mercado espera al oráculo.
	// Los operadores de orden siguen cayendo a No.
	FallbackNone FallbackPolicy = "none"
)

// LosingPolicy decide qué pasa cuando se envía el token perdedor tras resolver.
type LosingPolicy string

const (
	// LosingReject rechaza con OutcomeMismatch y el ledger reembolsa.
	LosingReject LosingPolicy = "reject"
	// LosingBurn quema los tokens sin pago si el ganador ya está almacenado.
	LosingBurn LosingPolicy = "burn"
)

// Config controla las políticas de la instancia. Inmutable tras crearla.
type Config struct {
	NativeFee int64
	Fallback  FallbackPolicy
	Losing    LosingPolicy
}

// DefaultConfig devuelve fee de 5000, fallback No y rechazo del token perdedor.
func DefaultConfig() Config {
	return Config{
		NativeFee: DefaultNativeFee,
		Fallback:  FallbackNo,
		Losing:    LosingReject,
	}
}

// Validate comprueba que las políticas sean conocidas.
func (c Config) Validate() error {
	if c.NativeFee < 0 {
		return fmt.Errorf("settlement: native fee must be >= 0, got %d", c.NativeFee)
	}
	switch c.Fallback {
	case FallbackNo, FallbackNone:
	default:
		return fmt.Errorf("settlement: unknown deadline fallback %q", c.Fallback)
	}
	switch c.Losing {
	case LosingReject, LosingBurn:
	default:
		return fmt.Errorf("settlement: unknown losing redemption policy %q", c.Losing)
	}
	return nil
}
