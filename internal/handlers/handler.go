package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/modelstore"
	"github.com/soltixdb/trendcast/internal/models"
	"github.com/soltixdb/trendcast/internal/queue"
)

// Handler contains all HTTP handlers of the viewer
type Handler struct {
	logger   *logging.Logger
	cache    *modelstore.Cache
	handle   modelstore.Handle
	cfg      *config.Config
	plotPath string
	now      func() time.Time
}

// New creates a new handler instance. The empty handle names the store's
// configured model.
func New(logger *logging.Logger, cache *modelstore.Cache, cfg *config.Config) *Handler {
	return &Handler{
		logger:   logger,
		cache:    cache,
		cfg:      cfg,
		plotPath: cfg.PlotPath(),
		now:      time.Now,
	}
}

// OnModelTrained drops the cached model so the next request reloads it
func (h *Handler) OnModelTrained(ev queue.ModelTrainedEvent) error {
	h.cache.Invalidate(h.handle)
	h.logger.Info("Model cache invalidated",
		"run_id", ev.RunID,
		"indicator", ev.Indicator,
		"slope", ev.Slope,
		"intercept", ev.Intercept)
	return nil
}

// modelSource names where the viewer's model lives
func (h *Handler) modelSource() (store, path string) {
	if h.cfg.ModelStore.Type == "etcd" {
		return "etcd", modelstore.ModelKey(h.cfg.ModelStore.EtcdKey)
	}
	return "file", h.cfg.ModelStore.Path
}

func errorJSON(c *fiber.Ctx, status int, code, message string, details map[string]interface{}) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// modelError maps a cache load failure to a response
func (h *Handler) modelError(c *fiber.Ctx, err error) error {
	_, path := h.modelSource()
	switch {
	case errors.Is(err, modelstore.ErrModelNotFound):
		return errorJSON(c, fiber.StatusNotFound, "MODEL_NOT_FOUND",
			"No trained model found. Run the train tool first.",
			map[string]interface{}{"path": path})
	case errors.Is(err, modelstore.ErrInvalidModel):
		h.logger.Error("Saved model is invalid", "path", path, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "MODEL_INVALID",
			"Saved model could not be decoded",
			map[string]interface{}{"path": path})
	default:
		h.logger.Error("Failed to load model", "path", path, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "MODEL_LOAD_FAILED",
			"Failed to load model",
			map[string]interface{}{"error": err.Error()})
	}
}
