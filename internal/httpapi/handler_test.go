package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/memory"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	router http.Handler
	places *service.PlaceService
	conns  *service.ConnectionService
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	c := clock.NewFixed(time.Date(2025, 3, 2, 13, 0, 0, 0, time.UTC))
	store := memory.New(c.Now)
	logger := zap.NewNop()
	resolver := week.NewResolver(c, time.UTC)

	settings := service.NewSettingsService(store.Settings(), service.Policy{
		WeeklyQuota: quota.DefaultWeeklyLimit,
		Cutover:     week.DefaultRule(),
	}, logger)
	allocator := service.NewSlotAllocator(store, store.Places(), store.Timeslots(), store.Bookings(), c, logger)
	registry := service.NewClaimRegistry(store, store.Connections(), store.Claims(), logger)
	places := service.NewPlaceService(store, store.Places(), store.Timeslots(), store.Bookings(), resolver, logger)
	conns := service.NewConnectionService(store, store.Connections(), store.Claims(), logger)
	engine := service.NewBookingEngine(settings, resolver, allocator, registry, places, conns,
		store.Bookings(), store.Claims(), nil, logger)

	h := NewHandler(engine, places, conns, settings, logger)
	return &testAPI{router: NewRouter(h, logger), places: places, conns: conns}
}

func (a *testAPI) do(t *testing.T, method, path, groupID string, isAdmin bool, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if groupID != "" {
		req.Header.Set(HeaderGroupID, groupID)
	}
	if isAdmin {
		req.Header.Set(HeaderAdmin, "true")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) seedSlot(t *testing.T) int64 {
	t.Helper()
	place, err := a.places.CreatePlace(context.Background(), model.Actor{IsAdmin: true}, "Halle", model.Timeslot{
		Start: model.NewTimeOfDay(16, 0),
		End:   model.NewTimeOfDay(17, 0),
	})
	require.NoError(t, err)
	return place.Timeslots[0].ID
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)
	w := api.do(t, http.MethodGet, "/healthz", "", false, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingIdentity(t *testing.T) {
	api := setupAPI(t)
	w := api.do(t, http.MethodGet, "/api/week", "", false, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReserveAndConflict(t *testing.T) {
	api := setupAPI(t)
	slotID := api.seedSlot(t)

	w := api.do(t, http.MethodPost, "/api/bookings", "7@WH.de", false, ReserveRequest{TimeslotID: slotID, Date: "2025-03-04"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var booking BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, "7@wh.de", booking.GroupID)
	assert.Equal(t, "16:00", booking.Start)
	assert.Equal(t, "2025-03-04", booking.Date)

	w = api.do(t, http.MethodPost, "/api/bookings", "8@wh.de", false, ReserveRequest{TimeslotID: slotID, Date: "2025-03-04"})
	assert.Equal(t, http.StatusConflict, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "slot_taken", errResp.Code)

	w = api.do(t, http.MethodGet, "/api/quota", "7@wh.de", false, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var q QuotaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, 7, q.Remaining)
	assert.Equal(t, "2025-03-03", q.WeekStart)
	assert.Equal(t, "2025-03-09", q.WeekEnd)
}

func TestQuotaGroupParamNormalized(t *testing.T) {
	api := setupAPI(t)
	slotID := api.seedSlot(t)

	w := api.do(t, http.MethodPost, "/api/bookings", "7@wh.de", false, ReserveRequest{TimeslotID: slotID, Date: "2025-03-04"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/quota?group_id=%207%40WH.de", "", true, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var q QuotaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "7@wh.de", q.GroupID)
	assert.Equal(t, 7, q.Remaining)

	// своя группа в другом регистре тоже своя
	w = api.do(t, http.MethodGet, "/api/quota?group_id=7%40WH.DE", "7@wh.de", false, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/quota?group_id=8%40wh.de", "7@wh.de", false, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/quota?group_id=gruppe7", "", true, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReserveBadInput(t *testing.T) {
	api := setupAPI(t)
	slotID := api.seedSlot(t)

	w := api.do(t, http.MethodPost, "/api/bookings", "7@wh.de", false, ReserveRequest{TimeslotID: slotID, Date: "04.03.2025"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/bookings", "7@wh.de", false, ReserveRequest{TimeslotID: 999, Date: "2025-03-04"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelForbiddenForOtherGroup(t *testing.T) {
	api := setupAPI(t)
	slotID := api.seedSlot(t)

	w := api.do(t, http.MethodPost, "/api/bookings", "7@wh.de", false, ReserveRequest{TimeslotID: slotID, Date: "2025-03-05"})
	require.Equal(t, http.StatusCreated, w.Code)
	var booking BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	path := "/api/bookings/" + jsonNumber(booking.ID)
	w = api.do(t, http.MethodDelete, path, "8@wh.de", false, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodDelete, path, "", true, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, "cancelled", booking.Status)
}

func TestClaimsFlow(t *testing.T) {
	api := setupAPI(t)

	w := api.do(t, http.MethodPost, "/api/admin/connections", "", true, ConnectionRequest{
		Line: "Bus 42", Departure: model.NewTimeOfDay(9, 15), Stop: "Markt", Capacity: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var conn ConnectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conn))
	assert.Equal(t, "Bus 42 – 09:15 ab Markt", conn.Label)

	w = api.do(t, http.MethodPut, "/api/claims", "a@wh.de", false, ClaimRequest{ConnectionID: conn.ID, Destination: "Zoo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var claim ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, "Gruppe a", claim.Group)

	w = api.do(t, http.MethodPut, "/api/claims", "b@wh.de", false, ClaimRequest{ConnectionID: conn.ID, Destination: "Zoo"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPut, "/api/claims", "a@wh.de", false, ClaimRequest{
		ConnectionID: conn.ID, Destination: "Park", PreviousClaimID: claim.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/connections", "b@wh.de", false, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []ConnectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Used)
	assert.True(t, list[0].Full)

	w = api.do(t, http.MethodGet, "/api/claims/mine", "b@wh.de", false, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodDelete, "/api/claims/"+claim.ID, "a@wh.de", false, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	api := setupAPI(t)

	w := api.do(t, http.MethodGet, "/api/admin/overview", "7@wh.de", false, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, "/api/admin/settings/quota", "7@wh.de", false, QuotaRequest{Limit: 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, "/api/admin/settings/quota", "", true, QuotaRequest{Limit: 2})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/admin/overview", "", true, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview OverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 2, overview.Limit)
}

func TestAdminPlaces(t *testing.T) {
	api := setupAPI(t)

	w := api.do(t, http.MethodPost, "/api/admin/places", "", true, PlaceRequest{Name: "Bolzplatz"})
	require.Equal(t, http.StatusCreated, w.Code)
	var place PlaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &place))

	w = api.do(t, http.MethodPost, "/api/admin/places/"+jsonNumber(place.ID)+"/timeslots", "", true,
		map[string]string{"start": "17:00", "end": "16:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/admin/places/"+jsonNumber(place.ID)+"/timeslots", "", true,
		map[string]string{"start": "16:00", "end": "17:30"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/week", "7@wh.de", false, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board BoardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Places, 1)
	require.Len(t, board.Places[0].Slots, 1)
	assert.Len(t, board.Places[0].Slots[0].Cells, 5)
	assert.Equal(t, "17:30", board.Places[0].Slots[0].End)

	w = api.do(t, http.MethodDelete, "/api/admin/places/"+jsonNumber(place.ID), "", true, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
