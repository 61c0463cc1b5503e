package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Fraol-12/WhisperBox/internal/middleware"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/service"
)

type AdminHandler struct {
	auth       *service.AuthService
	complaints *service.ComplaintService
}

func NewAdminHandler(auth *service.AuthService, complaints *service.ComplaintService) *AdminHandler {
	return &AdminHandler{auth: auth, complaints: complaints}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		}
	}

	resp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(resp)
}

// Complaints handles GET /api/admin/complaints
func (h *AdminHandler) Complaints(c fiber.Ctx) error {
	p, err := middleware.MustPrincipal(c)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	search, errMsg := middleware.ValidateSearch(c.Query("search"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	complaints, err := h.complaints.ListForAdmin(c.Context(), p, middleware.ValidateSortBy(c.Query("sortBy")), search)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(complaints)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c fiber.Ctx) error {
	p, err := middleware.MustPrincipal(c)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	stats, err := h.complaints.Stats(c.Context(), p)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(stats)
}

// UpdateStatus handles PUT /api/admin/complaints/:id/status
func (h *AdminHandler) UpdateStatus(c fiber.Ctx) error {
	p, err := middleware.MustPrincipal(c)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	var req model.StatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	complaint, err := h.complaints.UpdateStatus(c.Context(), p, strings.TrimSpace(c.Params("id")), req.Status)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(model.ComplaintUpdatedResponse{
		Message:   "Status updated successfully",
		Complaint: complaint,
	})
}

// Reply handles PUT /api/admin/complaints/:id/reply
func (h *AdminHandler) Reply(c fiber.Ctx) error {
	p, err := middleware.MustPrincipal(c)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	var req model.ReplyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	complaint, err := h.complaints.SetReply(c.Context(), p, strings.TrimSpace(c.Params("id")), req.Reply)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(model.ComplaintUpdatedResponse{
		Message:   "Reply added successfully",
		Complaint: complaint,
	})
}
