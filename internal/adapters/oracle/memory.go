package oracle

import (
	"context"
	"sync"
	"time"
)

type post struct {
	value string
	at    time.Time
}

// Memory es un FeedReader/FeedRecorder en memoria para tests y dry-run.
type Memory struct {
	mu    sync.RWMutex
	posts map[string][]post // oracle + "\x00" + feed → publicaciones en orden de llegada
}

// NewMemory crea un feed vacío.
func NewMemory() *Memory {
	return &Memory{posts: make(map[string][]post)}
}

// PostFeed registra una publicación del oráculo en el instante at.
func (m *Memory) PostFeed(_ context.Context, oracleID, feedName, value string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(oracleID, feedName)
	m.posts[k] = append(m.posts[k], post{value: value, at: at})
	return nil
}

// ReadFeed devuelve la última publicación estrictamente anterior a asOf.
// Con empates de timestamp gana la registrada después.
func (m *Memory) ReadFeed(_ context.Context, oracleID, feedName string, asOf time.Time) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best  post
		found bool
	)
	for _, p := range m.posts[key(oracleID, feedName)] {
		if !p.at.Before(asOf) {
			continue
		}
		if !found || !p.at.Before(best.at) {
			best, found = p, true
		}
	}
	return best.value, found, nil
}

func key(oracleID, feedName string) string {
	return oracleID + "\x00" + feedName
}
