package ports

import (
	"context"

	"github.com/alejandrodnm/condtoken/internal/domain"
)

// Notifier presenta al usuario la respuesta a cada mensaje procesado.
type Notifier interface {
	Notify(ctx context.Context, resp domain.Response) error
}
