package internal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgPartyStore persists parties in a single versioned table. The
// compare-and-swap is one UPDATE guarded by the version column.
type PgPartyStore struct {
	db *pgxpool.Pool
}

var _ PartyStore = (*PgPartyStore)(nil)

func NewPgPartyStore(db *pgxpool.Pool) *PgPartyStore {
	return &PgPartyStore{db: db}
}

var partyColumns = []string{
	"id", "creator_id", "party_name", "game_context",
	"max_players", "is_private", "members", "status", "created_at", "version",
}

func (s *PgPartyStore) Put(ctx context.Context, p Party) (Party, error) {
	p.Version = 1
	gameCtx, err := json.Marshal(p.GameContext)
	if err != nil {
		return Party{}, err
	}
	members, err := json.Marshal(p.Members)
	if err != nil {
		return Party{}, err
	}

	q := psql.Insert("parties").
		Columns(partyColumns...).
		Values(p.ID, p.CreatorID, p.PartyName, gameCtx,
			p.MaxPlayers, p.IsPrivate, members, p.Status, p.CreatedAt, p.Version)
	if _, err := qExec(ctx, s.db, q); err != nil {
		return Party{}, err
	}
	return p, nil
}

func (s *PgPartyStore) Get(ctx context.Context, id string) (Party, error) {
	q := psql.Select(partyColumns...).From("parties").Where(sq.Eq{"id": id})
	p, err := scanParty(qRow(ctx, s.db, q))
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, ErrPartyNotFound
	}
	return p, err
}

func (s *PgPartyStore) CompareAndSwapMembers(ctx context.Context, id string, expectedVersion int64, members []string) (Party, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Party{}, err
	}

	p.Members = append([]string(nil), members...)
	p.RecomputeStatus()
	p.Version = expectedVersion + 1

	encoded, err := json.Marshal(p.Members)
	if err != nil {
		return Party{}, err
	}

	q := psql.Update("parties").
		Set("members", encoded).
		Set("status", p.Status).
		Set("version", p.Version).
		Where(sq.Eq{"id": id, "version": expectedVersion})
	tag, err := qExec(ctx, s.db, q)
	if err != nil {
		return Party{}, err
	}
	if tag.RowsAffected() == 0 {
		// row exists (seen above) but the version moved under us
		return Party{}, ErrVersionConflict
	}
	return p, nil
}

func (s *PgPartyStore) List(ctx context.Context) ([]Party, error) {
	q := psql.Select(partyColumns...).From("parties").OrderBy("created_at ASC")
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanParty(row pgx.Row) (Party, error) {
	var p Party
	var gameCtx, members []byte
	var createdAt time.Time
	err := row.Scan(&p.ID, &p.CreatorID, &p.PartyName, &gameCtx,
		&p.MaxPlayers, &p.IsPrivate, &members, &p.Status, &createdAt, &p.Version)
	if err != nil {
		return Party{}, err
	}
	p.CreatedAt = createdAt
	if err := json.Unmarshal(gameCtx, &p.GameContext); err != nil {
		return Party{}, err
	}
	if err := json.Unmarshal(members, &p.Members); err != nil {
		return Party{}, err
	}
	return p, nil
}
