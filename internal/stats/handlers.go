package stats

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.SuccessResponse(w, summary, http.StatusOK)
}

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/stats").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetSummary).Methods("GET")
}
