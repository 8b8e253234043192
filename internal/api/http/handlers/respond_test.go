package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/travel-community/pkg/util/errorutil"
)

func outcomeApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.ToDomainError(err).HTTPStatus).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return respondWithOutcome(c, fiber.Map{"status": "approved"}, err)
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRespondWithOutcome_PartialFailureKeepsData(t *testing.T) {
	partial := apperrors.NewPartialFailure("request approved but user verification failed", []apperrors.WriteOutcome{
		{Store: "verification_requests", OK: true},
		{Store: "users", OK: false, Error: "backend down"},
	})

	resp, err := outcomeApp(partial).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, map[string]any{"status": "approved"}, body["data"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "PARTIAL_FAILURE", errBody["code"])
	outcomes := errBody["details"].(map[string]any)["outcomes"].([]any)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "users", outcomes[1].(map[string]any)["store"])
	assert.Equal(t, false, outcomes[1].(map[string]any)["ok"])
}

func TestRespondWithOutcome_Success(t *testing.T) {
	resp, err := outcomeApp(nil).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Nil(t, body["error"])
}

func TestRespondWithOutcome_OtherErrorsPassThrough(t *testing.T) {
	resp, err := outcomeApp(apperrors.NewStoreFailure("approve", errors.New("down"))).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp)
	assert.Nil(t, body["data"])
}
