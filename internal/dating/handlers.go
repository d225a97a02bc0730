package dating

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.SuccessResponse(w, entries, http.StatusOK)
}

// UpsertEntry inserts when the body has no id and updates otherwise.
func (h *Handler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.upsert(w, r, &req)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.ID = mux.Vars(r)["id"]
	h.upsert(w, r, &req)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request, req *EntryRequest) {
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	userID, _ := auth.GetUserIDFromContext(r.Context())
	created := req.ID == ""

	entry, err := h.service.Upsert(r.Context(), userID, req.ToEntry())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.SuccessResponse(w, entry, status)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	if err := h.service.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.MessageResponse(w, "Entry deleted", http.StatusOK)
}

// GetFields describes the editable fields and their option sets.
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, Fields, http.StatusOK)
}
