package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"wager-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrInvalidGame: 404,
		fmt.Errorf("%w: game 1 bet 2", domain.ErrBetNotFound): 404,
		domain.ErrGameNotAwaitingSettlement:                   409,
		domain.ErrInsufficientPayment:                         400,
		domain.ErrUnauthorized:                                403,
		fmt.Errorf("%w: low", domain.ErrTransferFailed):       402,
		domain.ErrInconsistentState:                           500,
		errors.New("db gone"):                                 500,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestLedgerError_HidesFaultDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/fault", func(c *fiber.Ctx) error {
		return LedgerError(c, fmt.Errorf("%w: pool mismatch", domain.ErrInconsistentState))
	})
	app.Get("/reject", func(c *fiber.Ctx) error {
		return LedgerError(c, domain.ErrNotForSale)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fault", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal Server Error", body.Error.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/reject", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, domain.ErrNotForSale.Error(), body.Error.Message)
}

func TestError_CarriesTraceID(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("trace_id", "trace-1")
		return LedgerError(c, domain.ErrGameNotOpen)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "trace-1", body.Error.TraceID)
}
