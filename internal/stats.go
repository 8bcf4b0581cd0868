package internal

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

var startedAt = time.Now()

// GET /api/health, polled by the dashboard pages.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"uptime": int(time.Since(startedAt).Seconds()),
		})
	}
}

// GET /api/stats, aggregate counts for the dashboard.
func Stats(db *pgxpool.Pool, store PartyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		var users int
		if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&users); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		parties, err := store.List(ctx)
		if err != nil {
			c.JSON(500, gin.H{"error": "registry"})
			return
		}
		open := 0
		for _, p := range parties {
			if !p.IsPrivate && len(p.Members) < p.MaxPlayers {
				open++
			}
		}

		c.JSON(200, gin.H{
			"users":        users,
			"parties":      len(parties),
			"open_parties": open,
		})
	}
}

// GET /api/me
func Me(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uid(c)
		var u User
		err := db.QueryRow(context.Background(),
			"SELECT id, username, account_type, earnings FROM users WHERE id=$1", id,
		).Scan(&u.ID, &u.Username, &u.AccountType, &u.Earnings)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, u)
	}
}
