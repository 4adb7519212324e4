package handler

import (
	"errors"
	"strings"

	"go-eol-dashboard/internal/afas"
	"go-eol-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	service service.SyncService
}

func NewSyncHandler(s service.SyncService) *SyncHandler {
	return &SyncHandler{service: s}
}

func splitConnectors(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TriggerSync runs the full fetch-reconcile-classify-upsert pipeline.
// POST /api/v1/sync?limit=10&connectors=items,stock
func (h *SyncHandler) TriggerSync(c *fiber.Ctx) error {
	opts := service.SyncOptions{
		Limit:      c.QueryInt("limit", 0),
		Connectors: splitConnectors(c.Query("connectors")),
	}

	result, err := h.service.Run(c.Context(), opts)
	if err != nil {
		status := 500
		switch {
		case errors.Is(err, service.ErrMissingRequiredSource):
			status = 400
		case errors.Is(err, afas.ErrNotConfigured):
			status = 500
		case errors.Is(err, afas.ErrConnectorUnavailable):
			status = 502
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(result)
}

// Analyze reports record structure per connector, failures isolated.
// GET /api/v1/sync/analyze?connectors=items,stock
func (h *SyncHandler) Analyze(c *fiber.Ctx) error {
	results, err := h.service.Analyze(c.Context(), splitConnectors(c.Query("connectors")))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	if len(results) == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "No valid connectors selected"})
	}
	return c.JSON(fiber.Map{"success": true, "connectors": results})
}

// Probe passes one raw page request through to any AFAS connector.
// GET /api/v1/sync/probe?connector=EOL_dashboard_Items&skip=0&take=10
func (h *SyncHandler) Probe(c *fiber.Ctx) error {
	connector := c.Query("connector")
	if connector == "" {
		return c.Status(400).JSON(fiber.Map{"error": "connector query parameter is required"})
	}

	opts := afas.RawOptions{
		Skip:            c.QueryInt("skip", 0),
		Take:            c.QueryInt("take", 10),
		FilterFieldIDs:  c.Query("filterfieldids"),
		FilterValues:    c.Query("filtervalues"),
		OperatorTypes:   c.Query("operatortypes"),
		OrderByFieldIDs: c.Query("orderbyfieldids"),
		FilterJSON:      c.Query("filterjson"),
	}

	body, err := h.service.Probe(c.Context(), connector, opts)
	if err != nil {
		status := 502
		if errors.Is(err, afas.ErrNotConfigured) {
			status = 500
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": body})
}
