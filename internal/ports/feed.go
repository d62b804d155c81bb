package ports

import (
	"context"
	"time"
)

// FeedReader lee el último valor publicado por un oráculo para un feed.
type FeedReader interface {
	// ReadFeed devuelve el valor más reciente publicado por oracleID bajo feedName
	// estrictamente antes de asOf. ok=false si nunca se publicó.
	// Un único snapshot por llamada, sin reintentos.
	ReadFeed(ctx context.Context, oracleID, feedName string, asOf time.Time) (value string, ok bool, err error)
}

// FeedRecorder registra publicaciones de un oráculo (simulación y CLI).
type FeedRecorder interface {
	PostFeed(ctx context.Context, oracleID, feedName, value string, at time.Time) error
}
