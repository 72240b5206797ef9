package httpapi

import (
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type ReserveRequest struct {
	GroupID    string `json:"group_id,omitempty"`
	TimeslotID int64  `json:"timeslot_id"`
	Date       string `json:"date"`
}

type ClaimRequest struct {
	GroupID         string `json:"group_id,omitempty"`
	ConnectionID    int64  `json:"connection_id,omitempty"`
	CustomLabel     string `json:"custom_label,omitempty"`
	Destination     string `json:"destination"`
	PreviousClaimID string `json:"previous_claim_id,omitempty"`
}

type QuotaRequest struct {
	Limit int `json:"limit"`
}

type PlaceRequest struct {
	Name string `json:"name"`
}

type TimeslotRequest struct {
	Start model.TimeOfDay `json:"start"`
	End   model.TimeOfDay `json:"end"`
}

type ConnectionRequest struct {
	Line      string          `json:"line"`
	Departure model.TimeOfDay `json:"departure"`
	Stop      string          `json:"stop"`
	Capacity  int             `json:"capacity"`
}

type BookingResponse struct {
	ID          int64  `json:"id"`
	TimeslotID  int64  `json:"timeslot_id,omitempty"`
	PlaceName   string `json:"place_name"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	GroupID     string `json:"group_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

func ToBookingResponse(b *model.Booking) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID,
		TimeslotID: b.TimeslotID,
		PlaceName:  b.PlaceName,
		Date:       b.Date.Format(model.DateLayout),
		Start:      b.Start.String(),
		End:        b.End.String(),
		GroupID:    b.GroupID,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		resp.CancelledAt = b.CancelledAt.Format(time.RFC3339)
	}
	return resp
}

func toBookingResponses(bookings []*model.Booking) []BookingResponse {
	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, ToBookingResponse(b))
	}
	return resp
}

type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Limit int    `json:"limit"`
}

func toWindowResponse(w quota.Window) WindowResponse {
	return WindowResponse{
		Start: w.Start.Format(model.DateLayout),
		End:   w.LastDay().Format(model.DateLayout),
		Limit: w.Limit,
	}
}

type QuotaResponse struct {
	GroupID   string `json:"group_id"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
}

type CellResponse struct {
	Date      string `json:"date"`
	BookingID int64  `json:"booking_id,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Mine      bool   `json:"mine"`
	Free      bool   `json:"free"`
}

type SlotResponse struct {
	TimeslotID int64          `json:"timeslot_id"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Cells      []CellResponse `json:"cells"`
}

type PlaceBoardResponse struct {
	PlaceID int64          `json:"place_id"`
	Name    string         `json:"name"`
	Slots   []SlotResponse `json:"slots"`
}

type BoardResponse struct {
	Window    WindowResponse       `json:"window"`
	Days      []string             `json:"days"`
	Remaining int                  `json:"remaining"`
	Places    []PlaceBoardResponse `json:"places"`
}

func ToBoardResponse(board *service.Board) BoardResponse {
	resp := BoardResponse{
		Window:    toWindowResponse(board.Window),
		Remaining: board.Remaining,
		Days:      make([]string, 0, len(board.Days)),
		Places:    make([]PlaceBoardResponse, 0, len(board.Places)),
	}
	for _, d := range board.Days {
		resp.Days = append(resp.Days, d.Format(model.DateLayout))
	}
	for _, p := range board.Places {
		place := PlaceBoardResponse{PlaceID: p.Place.ID, Name: p.Place.Name}
		for _, s := range p.Slots {
			slot := SlotResponse{TimeslotID: s.Timeslot.ID, Start: s.Timeslot.Start.String(), End: s.Timeslot.End.String()}
			for _, c := range s.Cells {
				slot.Cells = append(slot.Cells, CellResponse{
					Date:      c.Date.Format(model.DateLayout),
					BookingID: c.BookingID,
					Owner:     c.OwnerName,
					Mine:      c.Mine,
					Free:      c.Free(),
				})
			}
			place.Slots = append(place.Slots, slot)
		}
		resp.Places = append(resp.Places, place)
	}
	return resp
}

type ConnectionResponse struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Line      string `json:"line"`
	Departure string `json:"departure"`
	Stop      string `json:"stop"`
	Capacity  int    `json:"capacity"`
	Used      int    `json:"used"`
	Full      bool   `json:"full"`
}

func ToConnectionResponse(u model.ConnectionUsage) ConnectionResponse {
	c := u.Connection
	return ConnectionResponse{
		ID:        c.ID,
		Label:     c.Label(),
		Line:      c.Line,
		Departure: c.Departure.String(),
		Stop:      c.Stop,
		Capacity:  c.Capacity,
		Used:      u.Used,
		Full:      u.Full(),
	}
}

type ClaimResponse struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	Group        string `json:"group"`
	ConnectionID *int64 `json:"connection_id,omitempty"`
	Option       string `json:"option"`
	Destination  string `json:"destination"`
	UpdatedAt    string `json:"updated_at"`
}

func ToClaimResponse(c *model.Claim, displayName func(string) string) ClaimResponse {
	resp := ClaimResponse{
		ID:           c.ID.String(),
		GroupID:      c.GroupID,
		Group:        displayName(c.GroupID),
		ConnectionID: c.ConnectionID,
		Destination:  c.Destination,
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
	switch {
	case c.Connection != nil:
		resp.Option = c.Connection.Label()
	case c.CustomLabel != nil:
		resp.Option = *c.CustomLabel
	}
	return resp
}

type GroupUsageResponse struct {
	GroupID   string `json:"group_id"`
	Name      string `json:"name"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type OverviewResponse struct {
	WeekStart string               `json:"week_start"`
	WeekEnd   string               `json:"week_end"`
	Limit     int                  `json:"limit"`
	Groups    []GroupUsageResponse `json:"groups"`
	Bookings  []BookingResponse    `json:"bookings"`
}

func ToOverviewResponse(o *service.Overview) OverviewResponse {
	resp := OverviewResponse{
		WeekStart: o.Window.Start.Format(model.DateLayout),
		WeekEnd:   o.Window.LastDay().Format(model.DateLayout),
		Limit:     o.Window.Limit,
		Groups:    make([]GroupUsageResponse, 0, len(o.Groups)),
		Bookings:  toBookingResponses(o.Bookings),
	}
	for _, g := range o.Groups {
		resp.Groups = append(resp.Groups, GroupUsageResponse{
			GroupID:   g.GroupID,
			Name:      g.Name,
			Used:      g.Used,
			Remaining: g.Remaining,
		})
	}
	return resp
}

type PlaceResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Timeslots []TimeslotResponse `json:"timeslots"`
}

type TimeslotResponse struct {
	ID    int64  `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func ToTimeslotResponse(t *model.Timeslot) TimeslotResponse {
	return TimeslotResponse{ID: t.ID, Start: t.Start.String(), End: t.End.String()}
}

func ToPlaceResponse(p *model.Place) PlaceResponse {
	resp := PlaceResponse{ID: p.ID, Name: p.Name, Timeslots: make([]TimeslotResponse, 0, len(p.Timeslots))}
	for _, t := range p.Timeslots {
		resp.Timeslots = append(resp.Timeslots, ToTimeslotResponse(t))
	}
	return resp
}
