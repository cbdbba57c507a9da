package response

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradenexus/internal/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginated(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page := pagination.NewResponse([]string{"a", "b", "c"}, pagination.NewParams(2, 2))
		return Paginated(c, "Letters retrieved", "letters", page)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": true,
		"message": "Letters retrieved",
		"data": {
			"letters": ["c"],
			"meta": {"page": 2, "limit": 2, "total": 3, "total_pages": 2, "has_next": false, "has_prev": true}
		}
	}`, string(raw))
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		send func(*fiber.Ctx, string) error
		want int
	}{
		{RequestTimeout, fiber.StatusRequestTimeout},
		{TooManyRequests, fiber.StatusTooManyRequests},
		{BadGateway, fiber.StatusBadGateway},
		{Conflict, fiber.StatusConflict},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return tc.send(c, "nope") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":"nope"}`, string(raw))
	}
}
