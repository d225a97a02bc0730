package wrapped

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/utils"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// GenerateRequest is the body of POST /api/wrapped/generate.
type GenerateRequest struct {
	DateEntries       []*dating.Entry `json:"dateEntries" validate:"required,min=1"`
	SelectedTemplates []Template      `json:"selectedTemplates" validate:"required,min=1,max=10,dive"`
}

type GenerateResponse struct {
	Slides []Slide `json:"slides"`
}

type SelectRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		utils.RespondWithAppError(w, err)
		return false
	}
	return true
}

// GenerateSlides answers {slides} for the posted entries and templates.
func (h *Handler) GenerateSlides(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decode(w, r, &req) {
		return
	}

	slides, err := h.service.GenerateSlides(r.Context(), req.DateEntries, req.SelectedTemplates)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, GenerateResponse{Slides: slides})
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, FilterByTag(Builtins(), r.URL.Query().Get("tag")), http.StatusOK)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.CreateSession(r.Context(), userID)
	h.respond(w, sess, err, http.StatusCreated)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.GetSession(r.Context(), userID, mux.Vars(r)["id"])
	h.respond(w, sess, err, http.StatusOK)
}

func (h *Handler) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decode(w, r, &req) {
		return
	}
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.Select(r.Context(), userID, mux.Vars(r)["id"], req.TemplateID)
	h.respond(w, sess, err, http.StatusOK)
}

func (h *Handler) DeselectTemplate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.Deselect(r.Context(), userID, vars["id"], vars["templateID"])
	h.respond(w, sess, err, http.StatusOK)
}

func (h *Handler) AddCustomTemplate(w http.ResponseWriter, r *http.Request) {
	var req CustomTemplateRequest
	if !decode(w, r, &req) {
		return
	}
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.AddCustom(r.Context(), userID, mux.Vars(r)["id"], &req)
	h.respond(w, sess, err, http.StatusCreated)
}

func (h *Handler) DeleteCustomTemplate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.DeleteCustom(r.Context(), userID, vars["id"], vars["templateID"])
	h.respond(w, sess, err, http.StatusOK)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.Generate(r.Context(), userID, mux.Vars(r)["id"])
	h.respond(w, sess, err, http.StatusOK)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	sess, err := h.service.Reset(r.Context(), userID, mux.Vars(r)["id"])
	h.respond(w, sess, err, http.StatusOK)
}

func (h *Handler) respond(w http.ResponseWriter, sess *Session, err error, status int) {
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.SuccessResponse(w, sess, status)
}

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	gen := router.PathPrefix("/api/wrapped").Subrouter()
	gen.Use(authMiddleware.Authenticate)
	gen.HandleFunc("/generate", handler.GenerateSlides).Methods("POST")

	api := router.PathPrefix("/api/v1/wrapped").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/templates", handler.ListTemplates).Methods("GET")
	api.HandleFunc("/sessions", handler.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", handler.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/selection", handler.SelectTemplate).Methods("POST")
	api.HandleFunc("/sessions/{id}/selection/{templateID}", handler.DeselectTemplate).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/templates", handler.AddCustomTemplate).Methods("POST")
	api.HandleFunc("/sessions/{id}/templates/{templateID}", handler.DeleteCustomTemplate).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/generate", handler.Generate).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", handler.Reset).Methods("POST")
}
