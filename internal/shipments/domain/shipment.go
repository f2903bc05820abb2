package domain

import (
	"time"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/format"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
)

const Kind = "shipments"

const (
	StatusPending   = "pending"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
	StatusDelayed   = "delayed"
	StatusReturned  = "returned"
)

type Address struct {
	Line1      string  `json:"line1" yaml:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty" yaml:"line2,omitempty"`
	City       string  `json:"city" yaml:"city" validate:"required"`
	PostalCode string  `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Country    string  `json:"country" yaml:"country" validate:"required"`
}

// String renders the address on one line, skipping blank parts.
func (a Address) String() string {
	return format.Join(", ", a.Line1, format.Optional(a.Line2), a.City, a.PostalCode, a.Country)
}

// Shipment is one consignment in the logistics console.
type Shipment struct {
	TrackingNumber string     `json:"tracking_number" yaml:"tracking_number" validate:"required,max=64"`
	Carrier        string     `json:"carrier" yaml:"carrier" validate:"required"`
	Status         string     `json:"status" yaml:"status" validate:"required,oneof=pending in_transit delivered delayed returned"`
	Origin         Address    `json:"origin" yaml:"origin"`
	Destination    Address    `json:"destination" yaml:"destination"`
	WeightKg       float64    `json:"weight_kg" yaml:"weight_kg" validate:"gte=0"`
	Cost           float64    `json:"cost" yaml:"cost" validate:"gte=0"`
	Currency       string     `json:"currency" yaml:"currency" validate:"required,iso4217"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty" yaml:"shipped_at,omitempty"`
	ETA            *time.Time `json:"eta,omitempty" yaml:"eta,omitempty"`
}

// Check rejects an ETA before the ship date.
func Check(s Shipment) error {
	if s.ShippedAt != nil && s.ETA != nil && s.ETA.Before(*s.ShippedAt) {
		return &dash.ValidationError{Field: "eta", Message: "must not be before shipped_at"}
	}
	return nil
}

func lastMovement(r dash.Record[Shipment]) time.Time {
	if r.Data.ShippedAt != nil {
		return *r.Data.ShippedAt
	}
	return r.CreatedAt
}

func View() listview.Config[dash.Record[Shipment]] {
	return listview.Config[dash.Record[Shipment]]{
		Text: []func(dash.Record[Shipment]) string{
			func(r dash.Record[Shipment]) string { return r.Data.TrackingNumber },
			func(r dash.Record[Shipment]) string { return r.Data.Carrier },
			func(r dash.Record[Shipment]) string { return r.Data.Destination.City },
			func(r dash.Record[Shipment]) string { return r.Data.Destination.Country },
		},
		Category: func(r dash.Record[Shipment]) string { return r.Data.Status },
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Shipment]]{
			listview.SortRecent: listview.ByTimeDesc(lastMovement),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Shipment]) string { return r.Data.TrackingNumber }),
			listview.SortSize:   listview.ByNumberDesc(func(r dash.Record[Shipment]) float64 { return r.Data.WeightKg }),
		},
		DefaultSort: listview.SortRecent,
	}
}

type Item struct {
	dash.Record[Shipment]
	Cost        string `json:"cost_display"`
	Destination string `json:"destination_display"`
	ETA         string `json:"eta_display,omitempty"`
}

func Present(r dash.Record[Shipment]) any {
	cost, err := format.Currency(r.Data.Cost, r.Data.Currency)
	if err != nil {
		cost = ""
	}
	it := Item{Record: r, Cost: cost, Destination: r.Data.Destination.String()}
	if r.Data.ETA != nil {
		it.ETA = r.Data.ETA.Format("Jan 2, 2006")
	}
	return it
}

// Overview is the console header.
type Overview struct {
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"by_status"`
	ByCarrier map[string]int `json:"by_carrier"`
	// Spend is keyed by currency; amounts in different currencies are never added.
	Spend   map[string]string `json:"spend"`
	Overdue int               `json:"overdue"`
}
