package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/nucares/booking-gateway/flow"
	"github.com/nucares/booking-gateway/models"
	"github.com/nucares/booking-gateway/redis"
	"github.com/nucares/booking-gateway/session"
	"github.com/nucares/booking-gateway/utils"
)

// APIFactory builds a clinic API client bound to one bearer token. The token
// is captured when the flow starts and forwarded on every upstream call.
type APIFactory func(token string) flow.API

// FlowHandler exposes the booking workflow over HTTP. One flow session per
// started flow; every route checks session ownership.
type FlowHandler struct {
	store  *session.Store
	newAPI APIFactory
	now    func() time.Time
}

func NewFlowHandler(store *session.Store, newAPI APIFactory) *FlowHandler {
	return &FlowHandler{store: store, newAPI: newAPI, now: time.Now}
}

// StartFlow creates a booking flow: profile fetch plus the initial
// eligibility check for the requested (default doctor) service.
func (h *FlowHandler) StartFlow(c *fiber.Ctx) error {
	var body struct {
		ServiceType string `json:"service_type"`
	}
	// Body is optional; a bare POST starts a doctor flow.
	_ = c.BodyParser(&body)

	service := models.ServiceDoctor
	if body.ServiceType != "" {
		parsed, err := models.ParseServiceType(body.ServiceType)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid service type",
				Error:   err.Error(),
			})
		}
		service = parsed
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Unauthorized",
		})
	}
	token, _ := c.Locals("token").(string)

	f, err := flow.Begin(c.Context(), h.newAPI(token), service)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to start booking flow")
		return c.Status(fiber.StatusBadGateway).JSON(utils.ErrorResponse{
			Message: "Failed to load your profile from the clinic",
			Error:   err.Error(),
		})
	}

	id := h.store.Put(userID, f)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   id,
		"flow": f.Snapshot(),
	})
}

// GetFlow returns the current state snapshot.
func (h *FlowHandler) GetFlow(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}
	return c.JSON(f.Snapshot())
}

// SetService switches the service type and re-runs the eligibility gate. A
// request without a service_type toggles to the other service, the
// "unavailable" screen's switch action.
func (h *FlowHandler) SetService(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}

	var body struct {
		ServiceType string `json:"service_type"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Failed to parse request body",
				Error:   err.Error(),
			})
		}
	}

	service := f.Snapshot().Service.Other()
	if body.ServiceType != "" {
		parsed, err := models.ParseServiceType(body.ServiceType)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid service type",
				Error:   err.Error(),
			})
		}
		service = parsed
	}

	if err := f.SetService(c.Context(), service); err != nil {
		return flowError(c, err)
	}
	return c.JSON(f.Snapshot())
}

// Recheck re-runs the eligibility gate for the current service.
func (h *FlowHandler) Recheck(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}
	if err := f.Recheck(c.Context()); err != nil {
		return flowError(c, err)
	}
	return c.JSON(f.Snapshot())
}

// SetDate selects a booking date. The [today, today+30] window is enforced
// here, at the input boundary.
func (h *FlowHandler) SetDate(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}

	var body struct {
		Date string `json:"date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if body.Date != "" && !utils.WithinBookingWindow(body.Date, h.now()) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(utils.ErrorResponse{
			Message: "Date must be within the next 30 days",
		})
	}

	if err := f.SetDate(c.Context(), body.Date); err != nil {
		return flowError(c, err)
	}
	return c.JSON(f.Snapshot())
}

// SetTime selects one of the offered slots.
func (h *FlowHandler) SetTime(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}

	var body struct {
		Time string `json:"time"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if err := f.SetTime(models.TimeSlot(body.Time)); err != nil {
		return flowError(c, err)
	}
	return c.JSON(f.Snapshot())
}

// SetReason stores the booking reason text.
func (h *FlowHandler) SetReason(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if err := f.SetReason(body.Reason); err != nil {
		return flowError(c, err)
	}
	return c.JSON(f.Snapshot())
}

// Submit re-verifies eligibility and posts the booking. The redis guard
// refuses a second submission of the same (user, service, date, time) tuple;
// a reservation is handed back whenever the booking does not go through.
func (h *FlowHandler) Submit(c *fiber.Ctx) error {
	f, ok := h.lookup(c)
	if !ok {
		return flowNotFound(c)
	}
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return flowNotFound(c)
	}

	snap := f.Snapshot()
	if !snap.CanSubmit {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(utils.ErrorResponse{
			Message: "Date, time and reason are required before submitting",
		})
	}

	fresh, err := redis.Reserve(c.Context(), userID, snap.Service, snap.Date, snap.SelectedTime)
	if err != nil {
		// Guard is advisory; the upstream API still owns conflict handling.
		log.Warn().Err(err).Msg("duplicate-submission guard unavailable")
		fresh = true
	}
	if !fresh {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "This booking was already submitted",
		})
	}

	if err := f.Submit(c.Context()); err != nil {
		if relErr := redis.Release(c.Context(), userID, snap.Service, snap.Date, snap.SelectedTime); relErr != nil {
			log.Warn().Err(relErr).Msg("failed to release booking reservation")
		}
		return flowError(c, err)
	}

	result := f.Snapshot()
	if result.SuccessMessage == "" {
		if relErr := redis.Release(c.Context(), userID, snap.Service, snap.Date, snap.SelectedTime); relErr != nil {
			log.Warn().Err(relErr).Msg("failed to release booking reservation")
		}
	}
	return c.JSON(result)
}

func (h *FlowHandler) lookup(c *fiber.Ctx) (*flow.Flow, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, false
	}
	return h.store.Get(c.Params("id"), userID)
}

func flowNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
		Message: "Booking flow not found",
	})
}

func flowError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, flow.ErrBusy), errors.Is(err, flow.ErrNotEligible):
		status = fiber.StatusConflict
	case errors.Is(err, flow.ErrSlotNotOffered), errors.Is(err, flow.ErrNotReady):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(utils.ErrorResponse{
		Message: "Booking flow rejected the action",
		Error:   err.Error(),
	})
}
