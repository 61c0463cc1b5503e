package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/middleware"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/service"
	"github.com/Fraol-12/WhisperBox/internal/storage"
)

// PhotoField is the multipart field complaint photos are uploaded under.
const PhotoField = "photos"

type ComplaintHandler struct {
	complaints *service.ComplaintService
	votes      *service.VoteService
	photos     *storage.PhotoStore
}

func NewComplaintHandler(complaints *service.ComplaintService, votes *service.VoteService, photos *storage.PhotoStore) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, votes: votes, photos: photos}
}

// Create handles POST /api/complaints. The body is either multipart form
// data, with up to four image files under "photos", or JSON without photos.
func (h *ComplaintHandler) Create(c fiber.Ctx) error {
	var req model.ComplaintRequest
	var files []*multipart.FileHeader

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid multipart body")
		}
		req.Department = firstValue(form.Value["department"])
		req.Message = firstValue(form.Value["message"])
		files = form.File[PhotoField]
	} else if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		}
	}

	var refs []string
	if len(files) > 0 {
		if h.photos == nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "UPLOADS_DISABLED", "Photo uploads are not enabled")
		}
		saved, err := h.photos.Save(files)
		if err != nil {
			return middleware.RespondError(c, err)
		}
		refs = saved
	}

	complaint, err := h.complaints.Create(c.Context(), req.Department, req.Message, refs)
	if err != nil {
		if h.photos != nil {
			h.photos.Remove(refs)
		}
		return middleware.RespondError(c, err)
	}

	Metrics.ComplaintsCreated.WithLabelValues(string(complaint.Department)).Inc()
	return c.Status(fiber.StatusCreated).JSON(model.ComplaintCreatedResponse{
		Message:   "Complaint submitted successfully",
		TicketID:  complaint.TicketID,
		Complaint: complaint,
	})
}

// ListByDepartment handles GET /api/complaints/:department
func (h *ComplaintHandler) ListByDepartment(c fiber.Ctx) error {
	search, errMsg := middleware.ValidateSearch(c.Query("search"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	sortBy := middleware.ValidateSortBy(c.Query("sortBy"))

	complaints, err := h.complaints.List(c.Context(), c.Params("department"), sortBy, search)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(complaints)
}

// Like handles POST /api/complaints/:id/like
func (h *ComplaintHandler) Like(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateComplaintID(c.Params("id"))
	if errMsg != "" {
		return middleware.RespondError(c, apperr.ErrComplaintNotFound)
	}
	voter, errMsg := middleware.ResolveVoter(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	likes, err := h.votes.Like(c.Context(), id, voter)
	Metrics.LikesTotal.WithLabelValues(likeOutcome(err)).Inc()
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(model.LikeResponse{
		Message: "Complaint liked successfully",
		Likes:   likes,
	})
}

func likeOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, apperr.ErrDuplicateVote):
		return "duplicate"
	case errors.Is(err, apperr.ErrComplaintNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrLikeCountFailed):
		return "count_failed"
	default:
		return "error"
	}
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
