package handlers

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendcast/internal/models"
)

// Model returns the saved slope and intercept
// GET /v1/model
func (h *Handler) Model(c *fiber.Ctx) error {
	m, err := h.cache.Load(c.UserContext(), h.handle)
	if err != nil {
		return h.modelError(c, err)
	}

	store, path := h.modelSource()
	return c.JSON(models.ModelResponse{
		Slope:     m.Slope,
		Intercept: m.Intercept,
		Store:     store,
		Path:      path,
	})
}

// Predict returns the prediction for one year
// GET /v1/predict?year=2030
func (h *Handler) Predict(c *fiber.Ctx) error {
	year, ok := h.parseYear(c, "year", h.cfg.Viewer.DefaultYear)
	if !ok {
		return h.invalidYear(c, "year")
	}

	m, err := h.cache.Load(c.UserContext(), h.handle)
	if err != nil {
		return h.modelError(c, err)
	}

	prediction := m.Predict(year)
	return c.JSON(models.PredictResponse{
		Year:       year,
		Prediction: prediction,
		Formatted:  fmt.Sprintf("%.2f", prediction),
	})
}

// Plot serves the forecast chart written by the last training run
// GET /v1/plot
func (h *Handler) Plot(c *fiber.Ctx) error {
	data, err := os.ReadFile(h.plotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errorJSON(c, fiber.StatusNotFound, "PLOT_NOT_FOUND",
				"Forecast plot not found. Run the train tool first.",
				map[string]interface{}{"path": h.plotPath})
		}
		return err
	}

	c.Type("png")
	return c.Send(data)
}

// CacheStats reports model cache counters
// GET /v1/cache
func (h *Handler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(h.cache.Stats())
}

// parseYear reads an integer query parameter within the viewer's year
// range, falling back to def when it is absent.
func (h *Handler) parseYear(c *fiber.Ctx, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !h.cfg.Viewer.ValidYear(year) {
		return 0, false
	}
	return year, true
}

func (h *Handler) invalidYear(c *fiber.Ctx, key string) error {
	return errorJSON(c, fiber.StatusBadRequest, "INVALID_YEAR",
		fmt.Sprintf("%s must be an integer between %d and %d", key, h.cfg.Viewer.MinYear, h.cfg.Viewer.MaxYear),
		map[string]interface{}{
			"value":    c.Query(key),
			"min_year": h.cfg.Viewer.MinYear,
			"max_year": h.cfg.Viewer.MaxYear,
		})
}
