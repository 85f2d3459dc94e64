package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dias221467/Wishlist_Manager/internal/lifecycle"
	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/Dias221467/Wishlist_Manager/internal/repository"
	"github.com/Dias221467/Wishlist_Manager/internal/services"
	"github.com/Dias221467/Wishlist_Manager/pkg/logger"
	"github.com/gorilla/mux"
)

// StagedCleanup removes staged images once the record store has copied them.
type StagedCleanup interface {
	ScheduleCleanup(urls []string, delay time.Duration)
}

type WishHandler struct {
	Service *services.WishService
	Clock   lifecycle.Clock
	// Cleanup is optional; with a zero CleanupDelay staged images are kept.
	Cleanup      StagedCleanup
	CleanupDelay time.Duration
}

func NewWishHandler(service *services.WishService, clock lifecycle.Clock, cleanup StagedCleanup, cleanupDelay time.Duration) *WishHandler {
	return &WishHandler{
		Service:      service,
		Clock:        clock,
		Cleanup:      cleanup,
		CleanupDelay: cleanupDelay,
	}
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type imageURL struct {
	URL string `json:"url"`
}

type createWishRequest struct {
	Title     string     `json:"title"`
	Price     *float64   `json:"price"`
	Link      string     `json:"link"`
	CreatedBy string     `json:"createdBy"`
	ImageURLs []imageURL `json:"imageUrls"`
}

type updateStatusRequest struct {
	Status           string `json:"status"`
	ObjectionComment string `json:"objectionComment"`
	ObjectedBy       string `json:"objectedBy"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error onto a status code. Only
// validation messages reach the client; everything else is generic.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *lifecycle.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Wish not found")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Status change not allowed")
	default:
		logger.Log.WithError(err).Error(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// GetActiveWishesHandler returns waiting, objected and approved wishes
func (h *WishHandler) GetActiveWishesHandler(w http.ResponseWriter, r *http.Request) {
	today := h.Clock.Today()
	wishes, err := h.Service.ListActiveAt(r.Context(), today)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch wishes")
		return
	}
	writeJSON(w, http.StatusOK, newWishViews(wishes, today))
}

// GetArchivedWishesHandler returns archived, purchased and discarded wishes
func (h *WishHandler) GetArchivedWishesHandler(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.Service.ListArchived(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch archived wishes")
		return
	}
	writeJSON(w, http.StatusOK, newWishViews(wishes, h.Clock.Today()))
}

// GetWishByIDHandler retrieves a specific wish by ID
func (h *WishHandler) GetWishByIDHandler(w http.ResponseWriter, r *http.Request) {
	wishID := mux.Vars(r)["id"]

	today := h.Clock.Today()
	wish, err := h.Service.GetWishAt(r.Context(), wishID, today)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch wish")
		return
	}
	writeJSON(w, http.StatusOK, NewWishView(*wish, today))
}

// CreateWishHandler handles creation of a new wish
func (h *WishHandler) CreateWishHandler(w http.ResponseWriter, r *http.Request) {
	var req createWishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	in := services.CreateWishInput{
		Title:     req.Title,
		Price:     req.Price,
		Link:      req.Link,
		CreatedBy: req.CreatedBy,
	}
	for _, img := range req.ImageURLs {
		in.ImageURLs = append(in.ImageURLs, img.URL)
	}

	today := h.Clock.Today()
	wish, err := h.Service.CreateWishAt(r.Context(), in, today)
	if err != nil {
		writeServiceError(w, err, "Failed to create wish")
		return
	}

	if h.Cleanup != nil && len(in.ImageURLs) > 0 {
		h.Cleanup.ScheduleCleanup(in.ImageURLs, h.CleanupDelay)
	}
	writeJSON(w, http.StatusCreated, NewWishView(*wish, today))
}

// UpdateWishStatusHandler applies a status change requested by a user
func (h *WishHandler) UpdateWishStatusHandler(w http.ResponseWriter, r *http.Request) {
	wishID := mux.Vars(r)["id"]

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update payload")
		return
	}
	defer r.Body.Close()

	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "Status is required")
		return
	}

	transition := lifecycle.Request{Status: req.Status, ObjectionComment: req.ObjectionComment}
	if req.ObjectedBy != "" {
		by, err := models.ParsePerson(req.ObjectedBy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid objectedBy")
			return
		}
		transition.ObjectedBy = &by
	}

	today := h.Clock.Today()
	wish, err := h.Service.TransitionWishAt(r.Context(), wishID, transition, today)
	if err != nil {
		writeServiceError(w, err, "Failed to update wish")
		return
	}
	writeJSON(w, http.StatusOK, NewWishView(*wish, today))
}

// DeleteWishHandler removes a wish
func (h *WishHandler) DeleteWishHandler(w http.ResponseWriter, r *http.Request) {
	wishID := mux.Vars(r)["id"]

	if err := h.Service.DeleteWish(r.Context(), wishID); err != nil {
		writeServiceError(w, err, "Failed to delete wish")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetWishActivityHandler returns the recorded history of a wish
func (h *WishHandler) GetWishActivityHandler(w http.ResponseWriter, r *http.Request) {
	wishID := mux.Vars(r)["id"]

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	activities, err := h.Service.WishHistory(r.Context(), wishID, limit)
	if errors.Is(err, services.ErrHistoryUnavailable) {
		writeError(w, http.StatusNotFound, "History not available")
		return
	}
	if err != nil {
		writeServiceError(w, err, "Failed to fetch wish history")
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
