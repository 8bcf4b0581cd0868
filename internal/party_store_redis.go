package internal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisPartyStore keeps all parties as JSON values in one hash key. The
// compare-and-swap runs under WATCH on that key; losing the transaction
// surfaces as ErrVersionConflict and the registry retries.
type RedisPartyStore struct {
	client  *redis.Client
	setName string
}

var _ PartyStore = (*RedisPartyStore)(nil)

func NewRedisPartyStore(client *redis.Client, setName string) *RedisPartyStore {
	return &RedisPartyStore{client: client, setName: setName}
}

// storedParty re-exposes the version for persistence; Party itself hides
// it from HTTP responses.
type storedParty struct {
	Party
	Version int64 `json:"version"`
}

func (p storedParty) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func decodeParty(raw string) (Party, error) {
	var sp storedParty
	if err := json.Unmarshal([]byte(raw), &sp); err != nil {
		return Party{}, err
	}
	p := sp.Party
	p.Version = sp.Version
	return p, nil
}

func (s *RedisPartyStore) Put(ctx context.Context, p Party) (Party, error) {
	p.Version = 1
	if err := s.client.HSet(ctx, s.setName, p.ID, storedParty{Party: p, Version: p.Version}).Err(); err != nil {
		return Party{}, err
	}
	return p, nil
}

func (s *RedisPartyStore) Get(ctx context.Context, id string) (Party, error) {
	raw, err := s.client.HGet(ctx, s.setName, id).Result()
	if errors.Is(err, redis.Nil) {
		return Party{}, ErrPartyNotFound
	}
	if err != nil {
		return Party{}, err
	}
	return decodeParty(raw)
}

func (s *RedisPartyStore) CompareAndSwapMembers(ctx context.Context, id string, expectedVersion int64, members []string) (Party, error) {
	var updated Party

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, s.setName, id).Result()
		if errors.Is(err, redis.Nil) {
			return ErrPartyNotFound
		}
		if err != nil {
			return err
		}
		p, err := decodeParty(raw)
		if err != nil {
			return err
		}
		if p.Version != expectedVersion {
			return ErrVersionConflict
		}

		p.Members = append([]string(nil), members...)
		p.RecomputeStatus()
		p.Version++
		updated = p

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.setName, id, storedParty{Party: p, Version: p.Version})
			return nil
		})
		return err
	}, s.setName)

	if errors.Is(err, redis.TxFailedErr) {
		return Party{}, ErrVersionConflict
	}
	if err != nil {
		return Party{}, err
	}
	return updated, nil
}

func (s *RedisPartyStore) List(ctx context.Context) ([]Party, error) {
	raw, err := s.client.HGetAll(ctx, s.setName).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Party, 0, len(raw))
	for _, v := range raw {
		p, err := decodeParty(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
