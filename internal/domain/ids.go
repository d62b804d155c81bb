package domain

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// DeriveInstanceAddress es el Keccak-256 de los params canónicos:
// los mismos params producen siempre la misma instancia.
func DeriveInstanceAddress(p ContractParams) string {
	return hexutil.Encode(crypto.Keccak256([]byte(p.Canonical())))
}

// DeriveAssetID deriva el id del token YES o NO de la identidad de la instancia.
// Reproducible y sin colisiones entre instancias ni entre lados.
func DeriveAssetID(instance string, side Outcome) AssetID {
	return AssetID(hexutil.Encode(crypto.Keccak256([]byte(instance + ":" + string(side)))))
}

// NewMessageID genera un id local para mensajes que llegan sin él.
func NewMessageID() string {
	return uuid.NewString()
}
