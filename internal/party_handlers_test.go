package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, userID int, accountType string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:      userID,
		AccountType: accountType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "party-platform",
		},
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newTestRouter(t *testing.T) (*gin.Engine, *PartyRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := NewPartyRegistry(NewMemoryPartyStore(), NewSignalingHub(), nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/parties", Auth(testSecret), CreateParty(reg, nil))
	api.POST("/parties/:id/join", Auth(testSecret), JoinParty(reg, nil))
	api.GET("/parties", Auth(testSecret), DiscoverParties(reg))
	api.POST("/surveys/generate", Auth(testSecret), RequireCompany(), GenerateSurvey(nil))
	return r, reg
}

func doJSON(t *testing.T, r *gin.Engine, userID int, accountType, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: signTestToken(t, userID, accountType)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPartyEndpointsRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/api/parties"},
		{"POST", "/api/parties/x/join"},
		{"GET", "/api/parties"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestCreateJoinDiscoverFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	// user 1 creates a two-slot party
	w := doJSON(t, r, 1, "user", "POST", "/api/parties",
		`{"gameContext":{"game":"valorant"},"maxPlayers":2,"partyName":"Test"}`)
	require.Equal(t, 200, w.Code)

	var created Party
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "1", created.CreatorID)
	assert.Equal(t, []string{"1"}, created.Members)
	assert.Equal(t, PartyStatusWaiting, created.Status)

	// user 2 sees it
	w = doJSON(t, r, 2, "user", "GET", "/api/parties?gameContext=valorant", "")
	require.Equal(t, 200, w.Code)
	var listing struct {
		AvailableParties []PartySummary `json:"availableParties"`
		TotalParties     int            `json:"totalParties"`
		Recommendation   string         `json:"recommendation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.TotalParties)
	assert.Equal(t, created.ID, listing.AvailableParties[0].ID)
	assert.NotEmpty(t, listing.Recommendation)

	// user 2 joins, filling the party
	w = doJSON(t, r, 2, "user", "POST", "/api/parties/"+created.ID+"/join", `{"playerName":"Ace"}`)
	require.Equal(t, 200, w.Code)
	var joined Party
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &joined))
	assert.Equal(t, []string{"1", "2"}, joined.Members)
	assert.Equal(t, PartyStatusFull, joined.Status)

	// full party no longer discoverable
	w = doJSON(t, r, 3, "user", "GET", "/api/parties", "")
	require.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 0, listing.TotalParties)
}

func TestJoinErrorShapes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, 1, "user", "POST", "/api/parties",
		`{"gameContext":{"game":"valorant"},"maxPlayers":2}`)
	require.Equal(t, 200, w.Code)
	var created Party
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// unknown party
	w = doJSON(t, r, 2, "user", "POST", "/api/parties/nope/join", "")
	assert.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"error":"Party not found"}`, w.Body.String())

	// duplicate join
	w = doJSON(t, r, 1, "user", "POST", "/api/parties/"+created.ID+"/join", "")
	assert.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"error":"Already in party"}`, w.Body.String())

	// capacity
	w = doJSON(t, r, 2, "user", "POST", "/api/parties/"+created.ID+"/join", "")
	require.Equal(t, 200, w.Code)
	w = doJSON(t, r, 3, "user", "POST", "/api/parties/"+created.ID+"/join", "")
	assert.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"error":"Party is full"}`, w.Body.String())
}

func TestCreatePartyRejectsMissingGame(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, 1, "user", "POST", "/api/parties", `{"gameContext":{"mode":"ranked"}}`)
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, r, 1, "user", "POST", "/api/parties", `{"maxPlayers":4}`)
	assert.Equal(t, 400, w.Code)
}

func TestPrivatePartyHiddenFromDiscovery(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, 1, "user", "POST", "/api/parties",
		`{"gameContext":{"game":"valorant"},"isPrivate":true}`)
	require.Equal(t, 200, w.Code)

	w = doJSON(t, r, 2, "user", "GET", "/api/parties", "")
	require.Equal(t, 200, w.Code)
	var listing struct {
		TotalParties int `json:"totalParties"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 0, listing.TotalParties)
}
