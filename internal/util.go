package internal

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// logAction appends to the audit trail, best-effort.
func logAction(db *pgxpool.Pool, actorID *int, action, details string) {
	if db == nil {
		return
	}
	_, err := db.Exec(context.Background(),
		"INSERT INTO logs(actor_id, action, details) VALUES ($1,$2,$3)",
		actorID, action, details,
	)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}
