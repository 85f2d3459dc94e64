package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20

// ImageStager stages uploaded images in public blob storage.
type ImageStager interface {
	Stage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	DeleteAll(ctx context.Context, urls []string) int
}

type UploadHandler struct {
	Stager ImageStager
}

func NewUploadHandler(stager ImageStager) *UploadHandler {
	return &UploadHandler{Stager: stager}
}

// UploadImagesHandler stages the "files" of a multipart form and returns their URLs.
func (h *UploadHandler) UploadImagesHandler(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max size: 10MB); the reader fails once the body passes the limit
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too big or invalid format")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}
	if len(files) > models.MaxImages {
		writeError(w, http.StatusBadRequest, "Too many files")
		return
	}
	for _, header := range files {
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			writeError(w, http.StatusBadRequest, "Only images are allowed")
			return
		}
	}

	uploaded := make([]imageURL, 0, len(files))
	staged := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			h.Stager.DeleteAll(r.Context(), staged)
			writeError(w, http.StatusBadRequest, "Failed to read file")
			return
		}
		url, err := h.Stager.Stage(r.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			logrus.WithError(err).WithField("filename", header.Filename).Error("Failed to stage image")
			h.Stager.DeleteAll(r.Context(), staged)
			writeError(w, http.StatusInternalServerError, "Failed to upload files")
			return
		}
		staged = append(staged, url)
		uploaded = append(uploaded, imageURL{URL: url})
	}

	logrus.WithField("count", len(uploaded)).Info("Images staged")
	writeJSON(w, http.StatusOK, map[string]interface{}{"urls": uploaded})
}

// DeleteImagesHandler removes staged images; failures are logged and skipped.
func (h *UploadHandler) DeleteImagesHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URLs == nil {
		writeError(w, http.StatusBadRequest, "No URLs provided")
		return
	}
	defer r.Body.Close()

	removed := h.Stager.DeleteAll(r.Context(), req.URLs)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "removed": removed})
}
