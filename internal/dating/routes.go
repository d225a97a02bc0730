package dating

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/datewrapped/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/entries").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.ListEntries).Methods("GET")
	api.HandleFunc("", handler.UpsertEntry).Methods("POST")
	api.HandleFunc("/fields", handler.GetFields).Methods("GET")
	api.HandleFunc("/{id}", handler.UpdateEntry).Methods("PUT")
	api.HandleFunc("/{id}", handler.DeleteEntry).Methods("DELETE")
}
