package internal

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Canned question templates per topic. No model is called anywhere:
// "generation" is a lookup plus deterministic arithmetic, which is all the
// product demo needs.
var surveyTemplates = map[string][]string{
	"gaming": {
		"How many hours per week do you play %s?",
		"What made you pick up %s for the first time?",
		"Which in-game purchase have you made in the last month?",
		"How likely are you to recommend %s to a friend?",
		"What would make you stop playing %s?",
	},
	"shopping": {
		"How often do you shop online for %s?",
		"What is the most you would spend on %s in one order?",
		"Which brand of %s did you buy most recently?",
		"What would convince you to switch brands of %s?",
		"How important are reviews when buying %s?",
	},
	"lifestyle": {
		"How has %s changed your daily routine?",
		"How much do you budget monthly for %s?",
		"Who influences your choices around %s the most?",
		"What app do you use to keep track of %s?",
		"What is the biggest obstacle to %s for you?",
	},
}

// reward arithmetic, in cents
const (
	surveyBaseReward        = 50
	surveyPerQuestionReward = 25
)

type surveyQuestion struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Type   string `json:"type"` // scale|open
	Reward int    `json:"reward"`
}

// GenerateSurvey returns a templated question set for a topic with an
// illustrative earnings figure.
//
// POST /api/surveys/generate
func GenerateSurvey(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Topic         string `json:"topic"`
			Subject       string `json:"subject"`
			QuestionCount int    `json:"questionCount"`
		}
		if err := c.BindJSON(&req); err != nil || req.Subject == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		templates, ok := surveyTemplates[req.Topic]
		if !ok {
			templates = surveyTemplates["lifestyle"]
		}
		count := req.QuestionCount
		if count <= 0 || count > len(templates) {
			count = len(templates)
		}

		questions := make([]surveyQuestion, 0, count)
		for i := 0; i < count; i++ {
			text := strings.ReplaceAll(templates[i], "%s", req.Subject)
			qType := "open"
			if i%2 == 0 {
				qType = "scale"
			}
			questions = append(questions, surveyQuestion{
				ID:     i + 1,
				Text:   text,
				Type:   qType,
				Reward: surveyPerQuestionReward,
			})
		}
		earnings := surveyBaseReward + surveyPerQuestionReward*len(questions)

		actor := uid(c)
		logAction(db, &actor, "generate_survey", "topic="+req.Topic+" questions="+strconv.Itoa(len(questions)))
		c.JSON(200, gin.H{
			"title":             req.Subject + " Survey",
			"topic":             req.Topic,
			"questions":         questions,
			"estimatedEarnings": earnings, // cents, illustrative only
		})
	}
}

// POST /api/surveys/complete credits the illustrative earnings balance.
func CompleteSurvey(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		var req struct {
			QuestionCount int `json:"questionCount"`
		}
		if err := c.BindJSON(&req); err != nil || req.QuestionCount <= 0 {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		earned := surveyBaseReward + surveyPerQuestionReward*req.QuestionCount
		_, err := db.Exec(c.Request.Context(),
			"UPDATE users SET earnings = earnings + $1 WHERE id=$2",
			earned, userID,
		)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		logAction(db, &userID, "complete_survey", "earned="+strconv.Itoa(earned))
		c.JSON(200, gin.H{"ok": true, "earned": earned})
	}
}
