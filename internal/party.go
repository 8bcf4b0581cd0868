package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidParty   = errors.New("invalid party input")
	ErrPartyNotFound  = errors.New("party not found")
	ErrPartyFull      = errors.New("party is full")
	ErrAlreadyInParty = errors.New("already in party")
	// ErrVersionConflict is returned by stores when a compare-and-swap
	// loses to a concurrent update. The registry retries; it never
	// reaches callers.
	ErrVersionConflict = errors.New("party version conflict")
)

// Signaler notifies a party's realtime room about membership changes so
// existing peers can set up direct connections. Best-effort: the registry
// never rolls back a join because a notification failed.
type Signaler interface {
	NotifyRoom(roomID, event string, payload any)
}

// PartyRegistry owns the set of active parties. It is the only mutator of
// party membership; capacity and uniqueness invariants are enforced here,
// with per-party atomicity delegated to the store's compare-and-swap.
type PartyRegistry struct {
	store    PartyStore
	signaler Signaler
	events   *EventPublisher
}

func NewPartyRegistry(store PartyStore, signaler Signaler, events *EventPublisher) *PartyRegistry {
	return &PartyRegistry{store: store, signaler: signaler, events: events}
}

type CreatePartyInput struct {
	CreatorID   string
	GameContext map[string]any
	MaxPlayers  int
	IsPrivate   bool
	PartyName   string
}

// Create inserts a new party with the creator as its first member.
func (r *PartyRegistry) Create(ctx context.Context, in CreatePartyInput) (Party, error) {
	if in.CreatorID == "" {
		return Party{}, fmt.Errorf("%w: creatorId is required", ErrInvalidParty)
	}
	game, _ := in.GameContext["game"].(string)
	if game == "" {
		return Party{}, fmt.Errorf("%w: gameContext.game is required", ErrInvalidParty)
	}
	if in.MaxPlayers == 0 {
		in.MaxPlayers = 4
	}
	if in.MaxPlayers < 1 {
		return Party{}, fmt.Errorf("%w: maxPlayers must be positive", ErrInvalidParty)
	}
	if in.PartyName == "" {
		in.PartyName = game + " Party"
	}

	p := Party{
		ID:          uuid.NewString(),
		CreatorID:   in.CreatorID,
		PartyName:   in.PartyName,
		GameContext: in.GameContext,
		MaxPlayers:  in.MaxPlayers,
		IsPrivate:   in.IsPrivate,
		Members:     []string{in.CreatorID},
		CreatedAt:   time.Now().UTC(),
	}
	p.RecomputeStatus()

	stored, err := r.store.Put(ctx, p)
	if err != nil {
		return Party{}, err
	}

	r.events.Publish(ctx, "party.created", map[string]any{
		"partyId": stored.ID,
		"game":    game,
	})
	return stored, nil
}

// Join appends playerID to the party's members. Checks run in a fixed
// order: existence, capacity, duplicate membership. The capacity check and
// the append commit as one compare-and-swap, so two joiners racing for the
// last slot get exactly one success and one ErrPartyFull.
func (r *PartyRegistry) Join(ctx context.Context, partyID, playerID string) (Party, error) {
	for {
		p, err := r.store.Get(ctx, partyID)
		if err != nil {
			return Party{}, err
		}
		if len(p.Members) >= p.MaxPlayers {
			return Party{}, ErrPartyFull
		}
		if p.HasMember(playerID) {
			return Party{}, ErrAlreadyInParty
		}

		members := append(append([]string(nil), p.Members...), playerID)
		updated, err := r.store.CompareAndSwapMembers(ctx, partyID, p.Version, members)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Party{}, err
		}

		if r.signaler != nil {
			r.signaler.NotifyRoom(partyID, "player_joined", map[string]any{
				"partyId":        partyID,
				"playerId":       playerID,
				"currentPlayers": len(updated.Members),
				"status":         updated.Status,
			})
		}
		r.events.Publish(ctx, "party.joined", map[string]any{
			"partyId":  partyID,
			"playerId": playerID,
		})
		return updated, nil
	}
}

// Discover lists public, joinable parties the requester is not already in,
// optionally restricted to one game. Always a list, never an error result
// for an empty view; the snapshot may be slightly stale under concurrent
// joins.
func (r *PartyRegistry) Discover(ctx context.Context, requestingPlayerID, gameFilter string) ([]PartySummary, error) {
	parties, err := r.store.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("party discovery list failed")
		return nil, err
	}

	out := []PartySummary{}
	for _, p := range parties {
		if p.IsPrivate {
			continue
		}
		if len(p.Members) >= p.MaxPlayers {
			continue
		}
		if gameFilter != "" && p.Game() != gameFilter {
			continue
		}
		if requestingPlayerID != "" && p.HasMember(requestingPlayerID) {
			continue
		}
		out = append(out, p.Summary())
	}
	return out, nil
}
