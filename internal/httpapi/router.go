package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(Recovery(logger), RequestLogger(logger))

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(Identity)

	// Week and quota
	api.HandleFunc("/week", h.GetWeek).Methods(http.MethodGet)
	api.HandleFunc("/quota", h.GetQuota).Methods(http.MethodGet)
	api.HandleFunc("/places", h.ListPlaces).Methods(http.MethodGet)

	// Bookings
	api.HandleFunc("/bookings/mine", h.MyBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings", h.Reserve).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}", h.CancelBooking).Methods(http.MethodDelete)

	// Connections and claims
	api.HandleFunc("/connections", h.ListConnections).Methods(http.MethodGet)
	api.HandleFunc("/claims", h.ListClaims).Methods(http.MethodGet)
	api.HandleFunc("/claims/mine", h.MyClaim).Methods(http.MethodGet)
	api.HandleFunc("/claims", h.PutClaim).Methods(http.MethodPut)
	api.HandleFunc("/claims/{id}", h.DeleteClaim).Methods(http.MethodDelete)

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/overview", h.Overview).Methods(http.MethodGet)
	admin.HandleFunc("/settings/quota", h.SetQuota).Methods(http.MethodPut)
	admin.HandleFunc("/places", h.CreatePlace).Methods(http.MethodPost)
	admin.HandleFunc("/places/{id:[0-9]+}", h.RenamePlace).Methods(http.MethodPatch)
	admin.HandleFunc("/places/{id:[0-9]+}", h.DeletePlace).Methods(http.MethodDelete)
	admin.HandleFunc("/places/{id:[0-9]+}/timeslots", h.AddTimeslot).Methods(http.MethodPost)
	admin.HandleFunc("/timeslots/{id:[0-9]+}", h.DeleteTimeslot).Methods(http.MethodDelete)
	admin.HandleFunc("/connections", h.CreateConnection).Methods(http.MethodPost)
	admin.HandleFunc("/connections/{id:[0-9]+}", h.UpdateConnection).Methods(http.MethodPatch)
	admin.HandleFunc("/connections/{id:[0-9]+}", h.DeleteConnection).Methods(http.MethodDelete)

	return router
}
