// Package http exposes the engine over fiber.
package http

import (
	"jobtrack_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// ScanHandler exposes scan trigger and report endpoints.
type ScanHandler struct {
	scans in.ScanService
}

func NewScanHandler(scans in.ScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

func (h *ScanHandler) Register(api fiber.Router) {
	api.Post("/scans", h.RunScan)
	api.Get("/scans/latest", h.LatestReport)
	api.Get("/scans/unresolved", h.ListUnresolved)
}

type runScanRequest struct {
	DaysBack   int `json:"days_back"`
	MaxResults int `json:"limit"`
}

// RunScan runs one synchronous scan for the authenticated owner and
// returns the report. 409 when a scan is already running.
func (h *ScanHandler) RunScan(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body runScanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	report, err := h.scans.Scan(c.Context(), userID, &in.ScanRequest{
		DaysBack:   body.DaysBack,
		MaxResults: body.MaxResults,
	})
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, report)
}

func (h *ScanHandler) LatestReport(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	report, err := h.scans.LatestReport(c.Context(), userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, report)
}

func (h *ScanHandler) ListUnresolved(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit := c.QueryInt("limit", 50)
	events, err := h.scans.ListUnresolved(c.Context(), userID, limit)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{
		"events": events,
		"count":  len(events),
	})
}
