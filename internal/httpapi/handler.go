package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Engine interface {
	QuotaWindow(ctx context.Context) (quota.Window, error)
	Remaining(ctx context.Context, groupID string) (int, error)
	WeekBoard(ctx context.Context, actor model.Actor) (*service.Board, error)
	Reserve(ctx context.Context, actor model.Actor, req service.ReserveRequest) (*model.Booking, error)
	Cancel(ctx context.Context, actor model.Actor, bookingID int64) (*model.Booking, error)
	MyBookings(ctx context.Context, actor model.Actor) ([]*model.Booking, error)
	AdminOverview(ctx context.Context, actor model.Actor) (*service.Overview, error)
	Connections(ctx context.Context) ([]model.ConnectionUsage, error)
	Claims(ctx context.Context) ([]*model.Claim, error)
	MyClaim(ctx context.Context, actor model.Actor) (*model.Claim, error)
	Claim(ctx context.Context, actor model.Actor, req service.ClaimRequest) (*model.Claim, error)
	Unclaim(ctx context.Context, actor model.Actor, claimID uuid.UUID) error
	DisplayName(groupID string) string
}

type PlaceAdmin interface {
	ListPlaces(ctx context.Context) ([]*model.Place, error)
	CreatePlace(ctx context.Context, actor model.Actor, name string, slots ...model.Timeslot) (*model.Place, error)
	RenamePlace(ctx context.Context, actor model.Actor, id int64, name string) error
	DeletePlace(ctx context.Context, actor model.Actor, id int64) error
	AddTimeslot(ctx context.Context, actor model.Actor, placeID int64, start, end model.TimeOfDay) (*model.Timeslot, error)
	DeleteTimeslot(ctx context.Context, actor model.Actor, id int64) error
}

type ConnectionAdmin interface {
	Create(ctx context.Context, actor model.Actor, conn *model.Connection) error
	SetCapacity(ctx context.Context, actor model.Actor, id int64, capacity int) error
	Delete(ctx context.Context, actor model.Actor, id int64) error
}

type QuotaAdmin interface {
	SetWeeklyQuota(ctx context.Context, actor model.Actor, limit int) error
}

type Handler struct {
	engine      Engine
	places      PlaceAdmin
	connections ConnectionAdmin
	settings    QuotaAdmin
	logger      *zap.Logger
}

func NewHandler(engine Engine, places PlaceAdmin, connections ConnectionAdmin, settings QuotaAdmin, logger *zap.Logger) *Handler {
	return &Handler{
		engine:      engine,
		places:      places,
		connections: connections,
		settings:    settings,
		logger:      logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Week board

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	board, err := h.engine.WeekBoard(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToBoardResponse(board))
}

func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	groupID := actor.GroupID
	if q := r.URL.Query().Get("group_id"); q != "" {
		normalized, err := model.ValidateGroupID(q)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		groupID = normalized
	}
	if groupID == "" || (groupID != actor.GroupID && !actor.IsAdmin) {
		h.handleError(w, r, model.ErrForbidden)
		return
	}

	win, err := h.engine.QuotaWindow(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	left, err := h.engine.Remaining(r.Context(), groupID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QuotaResponse{
		GroupID:   groupID,
		Remaining: left,
		Limit:     win.Limit,
		WeekStart: win.Start.Format(model.DateLayout),
		WeekEnd:   win.LastDay().Format(model.DateLayout),
	})
}

// Bookings

func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.engine.MyBookings(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	booking, err := h.engine.Reserve(r.Context(), actorFrom(r.Context()), service.ReserveRequest{
		GroupID:    req.GroupID,
		TimeslotID: req.TimeslotID,
		Date:       date,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToBookingResponse(booking))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	booking, err := h.engine.Cancel(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToBookingResponse(booking))
}

// Connections and claims

func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.engine.Connections(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	resp := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		resp = append(resp, ToConnectionResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.engine.Claims(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	resp := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		resp = append(resp, ToClaimResponse(c, h.engine.DisplayName))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) MyClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.engine.MyClaim(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if claim == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, ToClaimResponse(claim, h.engine.DisplayName))
}

func (h *Handler) PutClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if !h.decode(w, r, &req) {
		return
	}

	var previous uuid.UUID
	if req.PreviousClaimID != "" {
		id, err := uuid.Parse(req.PreviousClaimID)
		if err != nil {
			h.handleError(w, r, fmt.Errorf("%w: invalid previous_claim_id", model.ErrInvalidInput))
			return
		}
		previous = id
	}

	claim, err := h.engine.Claim(r.Context(), actorFrom(r.Context()), service.ClaimRequest{
		GroupID:         req.GroupID,
		Target:          model.ClaimTarget{ConnectionID: req.ConnectionID, CustomLabel: req.CustomLabel},
		Destination:     req.Destination,
		PreviousClaimID: previous,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToClaimResponse(claim, h.engine.DisplayName))
}

func (h *Handler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, r, fmt.Errorf("%w: invalid claim id", model.ErrInvalidInput))
		return
	}
	if err := h.engine.Unclaim(r.Context(), actorFrom(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Admin

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.engine.AdminOverview(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToOverviewResponse(overview))
}

func (h *Handler) SetQuota(w http.ResponseWriter, r *http.Request) {
	var req QuotaRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.settings.SetWeeklyQuota(r.Context(), actorFrom(r.Context()), req.Limit); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.places.ListPlaces(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	resp := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		resp = append(resp, ToPlaceResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if !h.decode(w, r, &req) {
		return
	}
	place, err := h.places.CreatePlace(r.Context(), actorFrom(r.Context()), req.Name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToPlaceResponse(place))
}

func (h *Handler) RenamePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req PlaceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.places.RenamePlace(r.Context(), actorFrom(r.Context()), id, req.Name); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.places.DeletePlace(r.Context(), actorFrom(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddTimeslot(w http.ResponseWriter, r *http.Request) {
	placeID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req TimeslotRequest
	if !h.decode(w, r, &req) {
		return
	}
	slot, err := h.places.AddTimeslot(r.Context(), actorFrom(r.Context()), placeID, req.Start, req.End)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToTimeslotResponse(slot))
}

func (h *Handler) DeleteTimeslot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.places.DeleteTimeslot(r.Context(), actorFrom(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	conn := &model.Connection{Line: req.Line, Departure: req.Departure, Stop: req.Stop, Capacity: req.Capacity}
	if err := h.connections.Create(r.Context(), actorFrom(r.Context()), conn); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToConnectionResponse(model.ConnectionUsage{Connection: conn}))
}

func (h *Handler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ConnectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.connections.SetCapacity(r.Context(), actorFrom(r.Context()), id, req.Capacity); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.connections.Delete(r.Context(), actorFrom(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// helpers

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error(), Code: "invalid_input"})
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id", Code: "invalid_input"})
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch model.Kind(err) {
	case "quota_exceeded", "slot_taken", "capacity_exceeded":
		return http.StatusConflict
	case "forbidden":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "invalid_input":
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	err = model.Classify(err)
	status := statusFor(err)
	code := model.Kind(err)

	if status == http.StatusServiceUnavailable {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		// причину из хранилища наружу не отдаём
		writeJSON(w, status, ErrorResponse{Error: model.ErrStorageUnavailable.Error(), Code: code})
		return
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
