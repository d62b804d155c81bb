package ports

import (
	"context"

	"github.com/alejandrodnm/condtoken/internal/domain"
)

// StateStore persiste el estado de cada instancia y el journal de mensajes.
type StateStore interface {
	// LoadState devuelve el estado guardado, o el estado vacío si la instancia es nueva.
	LoadState(ctx context.Context, instance string) (domain.ContractState, error)

	// Commit guarda el nuevo estado y la respuesta aceptada en una sola transacción.
	Commit(ctx context.Context, instance string, state domain.ContractState, resp domain.Response) error

	// RecordRejection añade al journal una respuesta rechazada sin tocar el estado.
	RecordRejection(ctx context.Context, instance string, resp domain.Response) error

	// Journal devuelve las últimas respuestas de la instancia, la más reciente primero.
	Journal(ctx context.Context, instance string, limit int) ([]domain.Response, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
