package domain

import "fmt"

// ContractState es el estado persistente de una instancia. Solo la instancia
// que procesa el mensaje actual lo muta. No contiene punteros: una copia por
// valor es un snapshot independiente.
type ContractState struct {
	YesAsset     AssetID
	NoAsset      AssetID
	TotalBacking int64 // suma neta de reserva depositada menos lo pagado
	YesSupply    int64
	NoSupply     int64
	Winner       Outcome // write-once
}

// HasPair devuelve true si el par YES/NO ya está definido.
func (s ContractState) HasPair() bool {
	return s.YesAsset != "" && s.NoAsset != ""
}

// Resolved devuelve true si el ganador ya está fijado.
func (s ContractState) Resolved() bool {
	return s.Winner.Valid()
}

// SideOf devuelve el lado del token dado, si es uno de los dos del par.
func (s ContractState) SideOf(asset AssetID) (Outcome, bool) {
	if !s.HasPair() {
		return "", false
	}
	switch asset {
	case s.YesAsset:
		return OutcomeYes, true
	case s.NoAsset:
		return OutcomeNo, true
	}
	return "", false
}

// AssetOf devuelve el token del lado dado.
func (s ContractState) AssetOf(side Outcome) AssetID {
	switch side {
	case OutcomeYes:
		return s.YesAsset
	case OutcomeNo:
		return s.NoAsset
	}
	return ""
}

// SupplyOf devuelve el supply en circulación del lado dado.
func (s ContractState) SupplyOf(side Outcome) int64 {
	switch side {
	case OutcomeYes:
		return s.YesSupply
	case OutcomeNo:
		return s.NoSupply
	}
	return 0
}

// CheckConservation verifica los invariantes contables:
//   - el par se define entero o no se define;
//   - sin resolver: yes_supply == no_supply == total_backing;
//   - resuelto: supply(winner) == total_backing, supply(loser) >= 0.
func (s ContractState) CheckConservation() error {
	if (s.YesAsset == "") != (s.NoAsset == "") {
		return fmt.Errorf("conservation: half-defined token pair (yes=%q no=%q)", s.YesAsset, s.NoAsset)
	}
	if s.TotalBacking < 0 || s.YesSupply < 0 || s.NoSupply < 0 {
		return fmt.Errorf("conservation: negative balance (backing=%d yes=%d no=%d)",
			s.TotalBacking, s.YesSupply, s.NoSupply)
	}
	if !s.Resolved() {
		if s.YesSupply != s.NoSupply || s.YesSupply != s.TotalBacking {
			return fmt.Errorf("conservation: unresolved supplies diverge (backing=%d yes=%d no=%d)",
				s.TotalBacking, s.YesSupply, s.NoSupply)
		}
		return nil
	}
	if w := s.SupplyOf(s.Winner); w != s.TotalBacking {
		return fmt.Errorf("conservation: winner supply %d != backing %d", w, s.TotalBacking)
	}
	return nil
}
