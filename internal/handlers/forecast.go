package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/models"
)

// MaxHorizon bounds the number of years one forecast request may ask for
const MaxHorizon = 100

// Forecast projects the saved model over the years after from
// GET /v1/forecast?horizon=10&from=2023
func (h *Handler) Forecast(c *fiber.Ctx) error {
	horizon := h.cfg.Forecast.Horizon
	if raw := c.Query("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxHorizon {
			return errorJSON(c, fiber.StatusBadRequest, "INVALID_HORIZON",
				"horizon must be an integer between 1 and "+strconv.Itoa(MaxHorizon),
				map[string]interface{}{"value": raw})
		}
		horizon = n
	}

	from, ok := h.parseYear(c, "from", h.now().Year())
	if !ok {
		return h.invalidYear(c, "from")
	}

	m, err := h.cache.Load(c.UserContext(), h.handle)
	if err != nil {
		return h.modelError(c, err)
	}

	// The saved record carries no residual spread, so bounds collapse to
	// the point prediction.
	points := forecast.ForecastYears(m, from, horizon, forecast.Uncertainty{}, h.cfg.Forecast.Confidence)
	return c.JSON(models.ForecastResponse{
		From:        from,
		Horizon:     horizon,
		Predictions: points,
	})
}
