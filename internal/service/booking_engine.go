package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingEngine serves booking, cancellation and claim requests on behalf
// of an actor. It authorizes, resolves the active week and delegates to
// the allocator and the claim registry.
type BookingEngine struct {
	settings    *SettingsService
	resolver    *week.Resolver
	allocator   *SlotAllocator
	registry    *ClaimRegistry
	places      *PlaceService
	connections *ConnectionService
	bookings    ports.BookingRepo
	claims      ports.ClaimRepo
	aliases     map[string]string
	logger      *zap.Logger
}

func NewBookingEngine(
	settings *SettingsService,
	resolver *week.Resolver,
	allocator *SlotAllocator,
	registry *ClaimRegistry,
	places *PlaceService,
	connections *ConnectionService,
	bookings ports.BookingRepo,
	claims ports.ClaimRepo,
	aliases map[string]string,
	logger *zap.Logger,
) *BookingEngine {
	return &BookingEngine{
		settings:    settings,
		resolver:    resolver,
		allocator:   allocator,
		registry:    registry,
		places:      places,
		connections: connections,
		bookings:    bookings,
		claims:      claims,
		aliases:     aliases,
		logger:      logger,
	}
}

// DisplayName возвращает имя группы для показа
func (e *BookingEngine) DisplayName(groupID string) string {
	return model.GroupDisplayName(groupID, e.aliases)
}

// QuotaWindow возвращает активную неделю с действующим лимитом
func (e *BookingEngine) QuotaWindow(ctx context.Context) (quota.Window, error) {
	policy, err := e.settings.Policy(ctx)
	if err != nil {
		return quota.Window{}, model.Classify(err)
	}
	return quota.Window{
		Window: e.resolver.Current(policy.Cutover),
		Limit:  policy.WeeklyQuota,
	}, nil
}

// Remaining возвращает остаток квоты группы на активной неделе
func (e *BookingEngine) Remaining(ctx context.Context, groupID string) (int, error) {
	w, err := e.QuotaWindow(ctx)
	if err != nil {
		return 0, err
	}
	left, err := e.allocator.Remaining(ctx, groupID, w)
	if err != nil {
		return 0, model.Classify(err)
	}
	return left, nil
}

// Unit is one bookable (timeslot, date) with its current owner.
type Unit struct {
	Place    *model.Place    `json:"place"`
	Timeslot *model.Timeslot `json:"timeslot"`
	Date     time.Time       `json:"date"`
	Booking  *model.Booking  `json:"booking,omitempty"`
}

// Occupancy lists every timeslot for every date in [from, to) together
// with its active booking, if any.
func (e *BookingEngine) Occupancy(ctx context.Context, from, to time.Time) ([]Unit, error) {
	from, to = model.DateOf(from), model.DateOf(to)
	if !to.After(from) {
		return nil, fmt.Errorf("%w: empty date range", model.ErrInvalidInput)
	}

	places, err := e.places.ListPlaces(ctx)
	if err != nil {
		return nil, err
	}
	active, err := e.activeBookings(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var units []Unit
	for _, p := range places {
		for _, slot := range p.Timeslots {
			for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
				units = append(units, Unit{
					Place:    p,
					Timeslot: slot,
					Date:     d,
					Booking:  active[keyFor(slot.ID, d)],
				})
			}
		}
	}
	return units, nil
}

type unitKey struct {
	timeslotID int64
	date       string
}

func keyFor(timeslotID int64, date time.Time) unitKey {
	return unitKey{timeslotID: timeslotID, date: date.Format(model.DateLayout)}
}

func (e *BookingEngine) activeBookings(ctx context.Context, from, to time.Time) (map[unitKey]*model.Booking, error) {
	bookings, err := e.bookings.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list bookings: %w", err))
	}
	active := make(map[unitKey]*model.Booking, len(bookings))
	for _, b := range bookings {
		if b.IsActive() && b.TimeslotID != 0 {
			active[keyFor(b.TimeslotID, b.Date)] = b
		}
	}
	return active, nil
}

// Board is the bookable part of the active week as seen by one group.
type Board struct {
	Window    quota.Window `json:"window"`
	Days      []time.Time  `json:"days"`
	Remaining int          `json:"remaining"`
	Places    []PlaceRow   `json:"places"`
}

type PlaceRow struct {
	Place *model.Place `json:"place"`
	Slots []SlotRow    `json:"slots"`
}

type SlotRow struct {
	Timeslot *model.Timeslot `json:"timeslot"`
	Cells    []Cell          `json:"cells"`
}

// Cell is one (timeslot, date) of the board.
type Cell struct {
	Date      time.Time `json:"date"`
	BookingID int64     `json:"booking_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	OwnerName string    `json:"owner_name,omitempty"`
	Mine      bool      `json:"mine"`
	Past      bool      `json:"past"`
}

// Free reports whether the cell can still be booked.
func (c Cell) Free() bool {
	return c.BookingID == 0 && !c.Past
}

// WeekBoard builds the Monday–Friday board of the active week.
func (e *BookingEngine) WeekBoard(ctx context.Context, actor model.Actor) (*Board, error) {
	w, err := e.QuotaWindow(ctx)
	if err != nil {
		return nil, err
	}
	days := w.Bookable()

	places, err := e.places.ListPlaces(ctx)
	if err != nil {
		return nil, err
	}
	active, err := e.activeBookings(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	board := &Board{Window: w, Days: days, Places: make([]PlaceRow, 0, len(places))}
	if actor.GroupID != "" {
		board.Remaining = e.remainingFrom(actor.GroupID, active, w)
	}

	today := e.resolver.Today()
	for _, p := range places {
		row := PlaceRow{Place: p, Slots: make([]SlotRow, 0, len(p.Timeslots))}
		for _, slot := range p.Timeslots {
			slotRow := SlotRow{Timeslot: slot, Cells: make([]Cell, 0, len(days))}
			for _, d := range days {
				cell := Cell{Date: d, Past: d.Before(today)}
				if b := active[keyFor(slot.ID, d)]; b != nil {
					cell.BookingID = b.ID
					cell.GroupID = b.GroupID
					cell.OwnerName = e.DisplayName(b.GroupID)
					cell.Mine = b.OwnedBy(actor.GroupID)
				}
				slotRow.Cells = append(slotRow.Cells, cell)
			}
			row.Slots = append(row.Slots, slotRow)
		}
		board.Places = append(board.Places, row)
	}

	return board, nil
}

func (e *BookingEngine) remainingFrom(groupID string, active map[unitKey]*model.Booking, w quota.Window) int {
	bookings := make([]*model.Booking, 0, len(active))
	for _, b := range active {
		bookings = append(bookings, b)
	}
	return quota.Remaining(groupID, bookings, w.Window, w.Limit)
}

// ReserveRequest asks for one timeslot on one date. GroupID may only be
// set by admins booking on behalf of a group.
type ReserveRequest struct {
	GroupID    string    `json:"group_id,omitempty"`
	TimeslotID int64     `json:"timeslot_id"`
	Date       time.Time `json:"date"`
}

// Reserve бронирует слот для группы актора или, для админа, для указанной группы
func (e *BookingEngine) Reserve(ctx context.Context, actor model.Actor, req ReserveRequest) (*model.Booking, error) {
	groupID, err := e.targetGroup(actor, req.GroupID)
	if err != nil {
		return nil, err
	}

	w, err := e.QuotaWindow(ctx)
	if err != nil {
		return nil, err
	}

	date := model.DateOf(req.Date)
	if !w.Contains(date) {
		return nil, fmt.Errorf("%w: only dates of the active week %s – %s can be booked",
			model.ErrInvalidInput, w.Start.Format(model.DateLayout), w.LastDay().Format(model.DateLayout))
	}
	if offset := int(date.Sub(w.Start).Hours() / 24); offset >= week.BookableDays {
		return nil, fmt.Errorf("%w: only Monday to Friday can be booked", model.ErrInvalidInput)
	}
	if date.Before(e.resolver.Today()) {
		return nil, fmt.Errorf("%w: date is in the past", model.ErrInvalidInput)
	}

	return e.allocator.Reserve(ctx, groupID, req.TimeslotID, date, w)
}

// Cancel отменяет бронь владельца или любую бронь для админа
func (e *BookingEngine) Cancel(ctx context.Context, actor model.Actor, bookingID int64) (*model.Booking, error) {
	if actor.GroupID == "" && !actor.IsAdmin {
		return nil, model.ErrForbidden
	}
	return e.allocator.Cancel(ctx, bookingID, actor.GroupID, actor.IsAdmin)
}

// MyBookings возвращает активные брони группы на активной неделе
func (e *BookingEngine) MyBookings(ctx context.Context, actor model.Actor) ([]*model.Booking, error) {
	if actor.GroupID == "" {
		return nil, model.ErrForbidden
	}
	w, err := e.QuotaWindow(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := e.bookings.ListByGroup(ctx, actor.GroupID, w.Start, w.End)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list group bookings: %w", err))
	}

	mine := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			mine = append(mine, b)
		}
	}
	return mine, nil
}

// GroupRow is one line of the admin overview.
type GroupRow struct {
	quota.GroupUsage
	Name string `json:"name"`
}

// Overview is the admin view of the active week.
type Overview struct {
	Window   quota.Window     `json:"window"`
	Groups   []GroupRow       `json:"groups"`
	Bookings []*model.Booking `json:"bookings"`
}

// AdminOverview возвращает расход квоты по группам и все брони недели
func (e *BookingEngine) AdminOverview(ctx context.Context, actor model.Actor) (*Overview, error) {
	if !actor.IsAdmin {
		return nil, model.ErrForbidden
	}
	w, err := e.QuotaWindow(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := e.bookings.ListByDateRange(ctx, w.Start, w.End)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list bookings: %w", err))
	}

	active := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].Date.Equal(active[j].Date) {
			return active[i].Date.Before(active[j].Date)
		}
		return active[i].Start < active[j].Start
	})

	// отменённые брони тоже передаются, чтобы группа без активных броней была в списке
	usage := quota.Summarize(bookings, w)
	groups := make([]GroupRow, 0, len(usage))
	for _, u := range usage {
		groups = append(groups, GroupRow{GroupUsage: u, Name: e.DisplayName(u.GroupID)})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})

	return &Overview{Window: w, Groups: groups, Bookings: active}, nil
}

// Connections возвращает соединения с занятостью
func (e *BookingEngine) Connections(ctx context.Context) ([]model.ConnectionUsage, error) {
	return e.connections.List(ctx)
}

// Claims возвращает все заявки с заполненным соединением
func (e *BookingEngine) Claims(ctx context.Context) ([]*model.Claim, error) {
	claims, err := e.claims.List(ctx)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list claims: %w", err))
	}
	if err := e.attachConnections(ctx, claims...); err != nil {
		return nil, err
	}
	return claims, nil
}

// MyClaim возвращает заявку группы актора или nil
func (e *BookingEngine) MyClaim(ctx context.Context, actor model.Actor) (*model.Claim, error) {
	if actor.GroupID == "" {
		return nil, model.ErrForbidden
	}
	claim, err := e.claims.GetByGroup(ctx, actor.GroupID)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("get claim: %w", err))
	}
	if claim == nil {
		return nil, nil
	}
	if err := e.attachConnections(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

func (e *BookingEngine) attachConnections(ctx context.Context, claims ...*model.Claim) error {
	usage, err := e.connections.List(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]*model.Connection, len(usage))
	for _, u := range usage {
		byID[u.Connection.ID] = u.Connection
	}
	for _, c := range claims {
		if c.ConnectionID != nil {
			c.Connection = byID[*c.ConnectionID]
		}
	}
	return nil
}

// Claim сохраняет заявку группы актора или, для админа, указанной группы
func (e *BookingEngine) Claim(ctx context.Context, actor model.Actor, req ClaimRequest) (*model.Claim, error) {
	groupID, err := e.targetGroup(actor, req.GroupID)
	if err != nil {
		return nil, err
	}
	req.GroupID = groupID
	claim, err := e.registry.Upsert(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.attachConnections(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Unclaim удаляет заявку
func (e *BookingEngine) Unclaim(ctx context.Context, actor model.Actor, claimID uuid.UUID) error {
	if actor.GroupID == "" && !actor.IsAdmin {
		return model.ErrForbidden
	}
	return e.registry.Delete(ctx, claimID, actor.GroupID, actor.IsAdmin)
}

// targetGroup решает, от имени какой группы действует актор
func (e *BookingEngine) targetGroup(actor model.Actor, requested string) (string, error) {
	if requested == "" {
		if actor.GroupID == "" {
			return "", model.ErrForbidden
		}
		return actor.GroupID, nil
	}

	groupID, err := model.ValidateGroupID(requested)
	if err != nil {
		return "", err
	}
	if groupID != actor.GroupID && !actor.IsAdmin {
		return "", model.ErrForbidden
	}
	return groupID, nil
}
