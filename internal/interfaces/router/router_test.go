package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"wager-backend/internal/config"
	"wager-backend/internal/domain"
	"wager-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status   string                 `json:"status"`
	Data     json.RawMessage        `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
	Error    struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

func setupApp(t *testing.T) (*fiber.App, *Resources) {
	return setupAppWith(t, nil)
}

func setupAppWith(t *testing.T, adjust func(*config.Config)) (*fiber.App, *Resources) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Env:            "test",
		DatabaseURL:    "sqlite::memory:",
		AutoMigrate:    true,
		RedisURL:       "redis://" + mr.Addr(),
		Operators:      []domain.Principal{"op"},
		Custody:        domain.DefaultCustodyAccount,
		PayoutPolicy:   "placer",
		HealthAdminKey: "admin",
	}
	if adjust != nil {
		adjust(cfg)
	}
	app, res, err := CreateApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })
	return app, res
}

func call(t *testing.T, app *fiber.App, method, path, principal string, body interface{}) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(middleware.PrincipalHeader, principal)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestCreateApp_RequiresDatabase(t *testing.T) {
	_, _, err := CreateApp(&config.Config{})
	assert.Error(t, err)
}

func TestCreateApp_RejectsUnknownPayoutPolicy(t *testing.T) {
	_, _, err := CreateApp(&config.Config{DatabaseURL: "sqlite::memory:", PayoutPolicy: "lottery"})
	assert.Error(t, err)
}

func TestRoutes_Authentication(t *testing.T) {
	app, _ := setupApp(t)

	code, _ := call(t, app, "POST", "/api/v1/games", "", map[string]string{"description": "x"})
	assert.Equal(t, 401, code)

	code, env := call(t, app, "POST", "/api/v1/games", "alice", map[string]string{"description": "x"})
	assert.Equal(t, 403, code)
	assert.Equal(t, "error", env.Status)

	code, _ = call(t, app, "POST", "/api/v1/accounts/deposit", "alice", map[string]interface{}{"principal": "alice", "amount": 10})
	assert.Equal(t, 403, code)
}

func TestRoutes_FullGameLifecycle(t *testing.T) {
	app, _ := setupApp(t)

	for _, p := range []string{"alice", "bob"} {
		code, _ := call(t, app, "POST", "/api/v1/accounts/deposit", "op", map[string]interface{}{"principal": p, "amount": 100})
		require.Equal(t, 200, code)
	}

	code, env := call(t, app, "POST", "/api/v1/games", "op", map[string]string{"description": "Final"})
	require.Equal(t, 201, code)
	var game domain.Game
	require.NoError(t, json.Unmarshal(env.Data, &game))
	assert.Equal(t, uint(1), game.ID)
	assert.Equal(t, domain.GameOpen, game.State)

	code, env = call(t, app, "POST", "/api/v1/games/1/bets", "alice", map[string]interface{}{"outcome": 1, "amount": 100})
	require.Equal(t, 201, code)
	var bet domain.Bet
	require.NoError(t, json.Unmarshal(env.Data, &bet))
	assert.Equal(t, uint(0), bet.Seq)
	code, _ = call(t, app, "POST", "/api/v1/games/1/bets", "bob", map[string]interface{}{"outcome": 2, "amount": 100})
	require.Equal(t, 201, code)

	code, _ = call(t, app, "POST", "/api/v1/games/1/bets", "bob", map[string]interface{}{"outcome": 2, "amount": 1})
	assert.Equal(t, 402, code, "bob has no funds left")

	code, _ = call(t, app, "POST", "/api/v1/games/1/close", "op", nil)
	require.Equal(t, 200, code)
	code, env = call(t, app, "POST", "/api/v1/games/1/bets", "alice", map[string]interface{}{"outcome": 1, "amount": 1})
	assert.Equal(t, 409, code)
	assert.Equal(t, domain.ErrGameNotOpen.Error(), env.Error.Message)

	code, _ = call(t, app, "POST", "/api/v1/games/1/winners", "op", map[string]interface{}{"bet_ids": []uint{0}})
	require.Equal(t, 200, code)

	code, env = call(t, app, "POST", "/api/v1/games/1/distribute", "op", nil)
	require.Equal(t, 200, code)
	var dist struct {
		Paid      int64 `json:"paid"`
		Remainder int64 `json:"remainder"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dist))
	assert.Equal(t, int64(200), dist.Paid)
	assert.Equal(t, int64(0), dist.Remainder)

	code, _ = call(t, app, "POST", "/api/v1/games/1/distribute", "op", nil)
	assert.Equal(t, 409, code)

	code, env = call(t, app, "GET", "/api/v1/accounts/alice", "alice", nil)
	require.Equal(t, 200, code)
	var acct domain.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, int64(200), acct.Balance)

	code, env = call(t, app, "GET", "/api/v1/games/1", "bob", nil)
	require.Equal(t, 200, code)
	var view struct {
		Game    domain.Game  `json:"game"`
		Bets    []domain.Bet `json:"bets"`
		Winners []uint       `json:"winners"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, domain.GameSettled, view.Game.State)
	assert.Equal(t, []uint{0}, view.Winners)
	require.Len(t, view.Bets, 2)
	assert.Equal(t, domain.BetPaidOut, view.Bets[0].State)
	assert.Equal(t, domain.BetLost, view.Bets[1].State)

	code, env = call(t, app, "GET", "/api/v1/games/1/events", "bob", nil)
	require.Equal(t, 200, code)
	assert.EqualValues(t, 8, env.Metadata["count"])
}

func TestRoutes_ShareMarket(t *testing.T) {
	app, _ := setupApp(t)
	call(t, app, "POST", "/api/v1/accounts/deposit", "op", map[string]interface{}{"principal": "alice", "amount": 100})
	call(t, app, "POST", "/api/v1/accounts/deposit", "op", map[string]interface{}{"principal": "bob", "amount": 100})
	call(t, app, "POST", "/api/v1/games", "op", map[string]string{"description": "Market"})
	call(t, app, "POST", "/api/v1/games/1/bets", "alice", map[string]interface{}{"outcome": 0, "amount": 100})

	code, _ := call(t, app, "POST", "/api/v1/games/1/bets/0/buy", "bob", map[string]interface{}{"payment": 10, "units": 1})
	assert.Equal(t, 400, code)

	code, _ = call(t, app, "POST", "/api/v1/games/1/bets/0/list", "alice", map[string]interface{}{"price": 2, "units": 40})
	require.Equal(t, 200, code)

	code, env := call(t, app, "POST", "/api/v1/games/1/bets/0/buy", "bob", map[string]interface{}{"payment": 80, "units": 40})
	require.Equal(t, 200, code)
	var bet domain.Bet
	require.NoError(t, json.Unmarshal(env.Data, &bet))
	assert.Equal(t, int64(0), bet.AskPrice)
	assert.Equal(t, int64(100), bet.TotalClaimUnits)

	code, env = call(t, app, "GET", "/api/v1/games/1/bets/0", "bob", nil)
	require.Equal(t, 200, code)
	var view struct {
		Holdings []domain.BetHolding `json:"holdings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Holdings, 2)

	code, _ = call(t, app, "GET", "/api/v1/games/1/bets/9", "bob", nil)
	assert.Equal(t, 404, code)
	code, _ = call(t, app, "GET", "/api/v1/games/abc", "bob", nil)
	assert.Equal(t, 400, code)

	code, env = call(t, app, "GET", "/api/v1/accounts/alice/transfers", "alice", nil)
	require.Equal(t, 200, code)
	assert.EqualValues(t, 3, env.Metadata["count"])

	code, env = call(t, app, "GET", "/api/v1/accounts/bob/holdings", "bob", nil)
	require.Equal(t, 200, code)
	assert.EqualValues(t, 1, env.Metadata["count"])
}

func TestRoutes_RemoveBet(t *testing.T) {
	app, _ := setupApp(t)
	call(t, app, "POST", "/api/v1/accounts/deposit", "op", map[string]interface{}{"principal": "alice", "amount": 50})
	call(t, app, "POST", "/api/v1/games", "op", map[string]string{"description": "Withdraw"})

	code, _ := call(t, app, "DELETE", "/api/v1/games/1/bets", "alice", nil)
	assert.Equal(t, 404, code)

	call(t, app, "POST", "/api/v1/games/1/bets", "alice", map[string]interface{}{"outcome": 3, "amount": 50})
	code, _ = call(t, app, "DELETE", "/api/v1/games/1/bets", "alice", nil)
	require.Equal(t, 200, code)

	_, env := call(t, app, "GET", "/api/v1/accounts/alice", "alice", nil)
	var acct domain.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, int64(50), acct.Balance)
}

func TestRoutes_MetricsAndHealth(t *testing.T) {
	app, _ := setupApp(t)
	call(t, app, "POST", "/api/v1/games", "op", map[string]string{"description": "Metrics"})

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `wager_ledger_operations_total{operation="create_game",outcome="ok"} 1`), string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/health/json", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/wager", redactDSN("postgres://user:secret@db:5432/wager"))
	assert.Equal(t, "sqlite::memory:", redactDSN("sqlite::memory:"))
}

func TestRoutes_LedgerAccountsCannotSpendPool(t *testing.T) {
	app, _ := setupAppWith(t, func(cfg *config.Config) { cfg.Custody = "house" })
	call(t, app, "POST", "/api/v1/accounts/deposit", "op", map[string]interface{}{"principal": "alice", "amount": 120})
	call(t, app, "POST", "/api/v1/games", "op", map[string]string{"description": "First"})
	call(t, app, "POST", "/api/v1/games", "op", map[string]string{"description": "Second"})
	code, _ := call(t, app, "POST", "/api/v1/games/1/bets", "alice", map[string]interface{}{"outcome": 1, "amount": 100})
	require.Equal(t, 201, code)
	code, _ = call(t, app, "POST", "/api/v1/games/1/close", "op", nil)
	require.Equal(t, 200, code)
	code, _ = call(t, app, "POST", "/api/v1/games/2/bets", "alice", map[string]interface{}{"outcome": 1, "amount": 20})
	require.Equal(t, 201, code)
	code, _ = call(t, app, "POST", "/api/v1/games/2/bets/0/list", "alice", map[string]interface{}{"price": 10, "units": 10})
	require.Equal(t, 200, code)

	buy := map[string]interface{}{"payment": 100, "units": 10}
	for _, caller := range []string{"ledger:custody", "ledger:escrow", "house"} {
		code, _ = call(t, app, "POST", "/api/v1/games/2/bets/0/buy", caller, buy)
		assert.Equal(t, 403, code, caller)
	}

	code, _ = call(t, app, "POST", "/api/v1/games/1/winners", "op", map[string]interface{}{"bet_ids": []uint{0}})
	require.Equal(t, 200, code)
	code, env := call(t, app, "POST", "/api/v1/games/1/distribute", "op", nil)
	require.Equal(t, 200, code, env.Error.Message)

	_, env = call(t, app, "GET", "/api/v1/accounts/house", "alice", nil)
	var acct domain.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, int64(0), acct.Balance)
}
