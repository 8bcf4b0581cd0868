package internal

import "time"

type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	AccountType string `json:"account_type"` // user|company
	Earnings    int    `json:"earnings"`     // illustrative cents, never settled
}

const (
	PartyStatusWaiting = "waiting_for_players"
	PartyStatusFull    = "full"
)

// Party is one matchmaking group. Members is ordered, starts with the
// creator and never contains duplicates. Status is derived from
// len(Members) vs MaxPlayers and recomputed on every membership change.
type Party struct {
	ID          string         `json:"id"`
	CreatorID   string         `json:"creatorId"`
	PartyName   string         `json:"partyName"`
	GameContext map[string]any `json:"gameContext"`
	MaxPlayers  int            `json:"maxPlayers"`
	IsPrivate   bool           `json:"isPrivate"`
	Members     []string       `json:"members"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`

	// Version guards compare-and-swap updates; storage-internal, not part
	// of the HTTP surface.
	Version int64 `json:"-"`
}

// PartySummary is the discovery view of a public, joinable party.
type PartySummary struct {
	ID             string         `json:"id"`
	PartyName      string         `json:"partyName"`
	GameContext    map[string]any `json:"gameContext"`
	CurrentPlayers int            `json:"currentPlayers"`
	MaxPlayers     int            `json:"maxPlayers"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Game returns the game title carried in the party's context.
func (p *Party) Game() string {
	g, _ := p.GameContext["game"].(string)
	return g
}

// HasMember reports whether playerID is already in the party.
func (p *Party) HasMember(playerID string) bool {
	for _, m := range p.Members {
		if m == playerID {
			return true
		}
	}
	return false
}

// RecomputeStatus rederives Status from the membership count.
func (p *Party) RecomputeStatus() {
	if len(p.Members) >= p.MaxPlayers {
		p.Status = PartyStatusFull
	} else {
		p.Status = PartyStatusWaiting
	}
}

// Summary builds the lightweight discovery record.
func (p *Party) Summary() PartySummary {
	return PartySummary{
		ID:             p.ID,
		PartyName:      p.PartyName,
		GameContext:    p.GameContext,
		CurrentPlayers: len(p.Members),
		MaxPlayers:     p.MaxPlayers,
		CreatedAt:      p.CreatedAt,
	}
}
