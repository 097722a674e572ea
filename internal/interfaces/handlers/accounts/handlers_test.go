package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	holdsvc "wager-backend/internal/application/holdings"
	"wager-backend/internal/application/wallet"
	"wager-backend/internal/domain"
	"wager-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAccountsTest(t *testing.T) (*fiber.App, *wallet.Service) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	w := &wallet.Service{DB: db}
	h := &Handlers{Wallet: w, Holdings: &holdsvc.Service{DB: db}}

	app := fiber.New()
	app.Post("/accounts/deposit", h.Deposit)
	app.Get("/accounts/:principal", h.Balance)
	app.Get("/accounts/:principal/transfers", h.ListTransfers)
	app.Get("/accounts/:principal/holdings", h.ViewHoldings)
	return app, w
}

func decode(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	raw, _ := io.ReadAll(r)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDeposit(t *testing.T) {
	app, _ := setupAccountsTest(t)

	cases := []struct {
		body string
		want int
	}{
		{`{"principal":"alice","amount":25}`, 200},
		{`{"principal":"alice","amount":0}`, 400},
		{`{"principal":"ledger:escrow","amount":25}`, 400},
		{`{"principal":"","amount":25}`, 400},
		{`{`, 400},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/accounts/deposit", bytes.NewBufferString(tc.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.body)
	}
}

func TestBalanceAndTransfers(t *testing.T) {
	app, w := setupAccountsTest(t)
	ctx := context.Background()
	_, err := w.Deposit(ctx, "alice", 10)
	require.NoError(t, err)
	_, err = w.Deposit(ctx, "alice", 15)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/accounts/alice", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.EqualValues(t, 25, out["data"].(map[string]interface{})["balance"])

	resp, err = app.Test(httptest.NewRequest("GET", "/accounts/unknown", nil))
	require.NoError(t, err)
	out = decode(t, resp.Body)
	assert.EqualValues(t, 0, out["data"].(map[string]interface{})["balance"])

	resp, err = app.Test(httptest.NewRequest("GET", "/accounts/alice/transfers", nil))
	require.NoError(t, err)
	out = decode(t, resp.Body)
	assert.EqualValues(t, 2, out["metadata"].(map[string]interface{})["count"])
	first := out["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, domain.TransferDeposit, first["kind"])
}

func TestViewHoldings_Empty(t *testing.T) {
	app, _ := setupAccountsTest(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/accounts/alice/holdings", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.Empty(t, out["data"])
}
