package migration

import (
	"context"
	"log/slog"

	"github.com/sas-esd/esdmail/libs/db"
)

type lookupState int

const (
	lookupNotFound lookupState = iota
	lookupFound
	lookupFailed
)

// lookup separates a missing row from a failed query. Callers treat both as absent.
type lookup struct {
	state lookupState
	id    []byte
	err   error
}

func (l lookup) found() bool {
	return l.state == lookupFound
}

func fetchID(ctx context.Context, conn db.Connection, logger *slog.Logger, what string, query string, args ...any) lookup {
	v, ok, err := conn.FetchColumn(ctx, query, args...)
	if err != nil {
		logger.Warn("lookup failed, treating as not found", "lookup", what, "err", err)
		return lookup{state: lookupFailed, err: err}
	}
	if !ok {
		return lookup{state: lookupNotFound}
	}
	id := idBytes(v)
	if len(id) == 0 {
		return lookup{state: lookupNotFound}
	}
	return lookup{state: lookupFound, id: id}
}

func idBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case [16]byte:
		return t[:]
	case string:
		return []byte(t)
	default:
		return nil
	}
}
