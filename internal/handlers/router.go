package handlers

import (
	"net/http"

	"github.com/Dias221467/Wishlist_Manager/pkg/middleware"
	"github.com/gorilla/mux"
)

// NewRouter registers the API routes. uploads may be nil when no blob
// storage is configured.
func NewRouter(wishes *WishHandler, uploads *UploadHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Wish routes; /archived must be registered before /{id}
	api.HandleFunc("/wishes", wishes.GetActiveWishesHandler).Methods("GET")
	api.HandleFunc("/wishes", wishes.CreateWishHandler).Methods("POST")
	api.HandleFunc("/wishes/archived", wishes.GetArchivedWishesHandler).Methods("GET")
	api.HandleFunc("/wishes/{id}", wishes.GetWishByIDHandler).Methods("GET")
	api.HandleFunc("/wishes/{id}", wishes.UpdateWishStatusHandler).Methods("PATCH")
	api.HandleFunc("/wishes/{id}", wishes.DeleteWishHandler).Methods("DELETE")
	api.HandleFunc("/wishes/{id}/activity", wishes.GetWishActivityHandler).Methods("GET")

	if uploads != nil {
		api.HandleFunc("/upload", uploads.UploadImagesHandler).Methods("POST")
		api.HandleFunc("/upload", uploads.DeleteImagesHandler).Methods("DELETE")
	}

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)
	return router
}
