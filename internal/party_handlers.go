package internal

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// playerID derives the opaque player identifier from the authenticated
// user. Party mutations never trust identifiers in request bodies.
func playerID(c *gin.Context) string {
	return strconv.Itoa(uid(c))
}

// POST /api/parties
func CreateParty(reg *PartyRegistry, db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			GameContext map[string]any `json:"gameContext"`
			MaxPlayers  int            `json:"maxPlayers"`
			IsPrivate   bool           `json:"isPrivate"`
			PartyName   string         `json:"partyName"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}

		creator := playerID(c)
		p, err := reg.Create(c.Request.Context(), CreatePartyInput{
			CreatorID:   creator,
			GameContext: req.GameContext,
			MaxPlayers:  req.MaxPlayers,
			IsPrivate:   req.IsPrivate,
			PartyName:   req.PartyName,
		})
		switch {
		case errors.Is(err, ErrInvalidParty):
			c.JSON(400, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(500, gin.H{"error": "registry"})
			return
		}

		actor := uid(c)
		logAction(db, &actor, "create_party", "party_id="+p.ID)
		c.JSON(200, p)
	}
}

// POST /api/parties/:id/join
func JoinParty(reg *PartyRegistry, db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		partyID := c.Param("id")
		var req struct {
			PlayerName string `json:"playerName"` // display only
		}
		_ = c.BindJSON(&req)

		p, err := reg.Join(c.Request.Context(), partyID, playerID(c))
		switch {
		case errors.Is(err, ErrPartyNotFound):
			c.JSON(404, gin.H{"error": "Party not found"})
			return
		case errors.Is(err, ErrPartyFull):
			c.JSON(400, gin.H{"error": "Party is full"})
			return
		case errors.Is(err, ErrAlreadyInParty):
			c.JSON(400, gin.H{"error": "Already in party"})
			return
		case err != nil:
			c.JSON(500, gin.H{"error": "registry"})
			return
		}

		actor := uid(c)
		detail := "party_id=" + partyID
		if req.PlayerName != "" {
			detail += " name=" + req.PlayerName
		}
		logAction(db, &actor, "join_party", detail)
		c.JSON(200, p)
	}
}

// GET /api/parties?gameContext=valorant
func DiscoverParties(reg *PartyRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameFilter := c.Query("gameContext")

		parties, err := reg.Discover(c.Request.Context(), playerID(c), gameFilter)
		if err != nil {
			c.JSON(500, gin.H{"error": "registry"})
			return
		}

		recommendation := "No open parties right now - create one and invite your friends!"
		if len(parties) > 0 {
			recommendation = "Join a party to squad up and start earning together!"
		}
		c.JSON(200, gin.H{
			"availableParties": parties,
			"totalParties":     len(parties),
			"recommendation":   recommendation,
		})
	}
}
