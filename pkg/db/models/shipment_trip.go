package models

import (
	"time"

	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
)

// ShipmentTrip is the header for one order going out on one calendar day.
// Rows are append-only history: trips close and reopen but are never deleted.
// pkgs_loaded is maintained in the same transaction as the package-load flip,
// never by a database trigger.
type ShipmentTrip struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	TripDate     time.Time  `gorm:"column:trip_date;type:date;not null;uniqueIndex:uq_trips_date_order,priority:1"`
	OrderNo      string     `gorm:"column:order_no;size:32;not null;uniqueIndex:uq_trips_date_order,priority:2"`
	CustomerCode string     `gorm:"column:customer_code;size:32"`
	CustomerName string     `gorm:"column:customer_name;size:128"`
	Region       string     `gorm:"column:region;size:64"`
	Address1     string     `gorm:"column:address1;size:255"`
	PkgsTotal    int        `gorm:"column:pkgs_total;not null"`
	PkgsLoaded   int        `gorm:"column:pkgs_loaded;not null;default:0"`
	Closed       bool       `gorm:"column:closed;not null;default:false"`
	EnRoute      bool       `gorm:"column:en_route;not null;default:false"`
	LoadedAt     *time.Time `gorm:"column:loaded_at"`
	InvoiceRoot  string     `gorm:"column:invoice_root;size:32;index"`
	QRToken      string     `gorm:"column:qr_token;size:64"`
	Printed      bool       `gorm:"column:printed;not null;default:false"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default GORM pluralization.
func (ShipmentTrip) TableName() string {
	return "shipment_trips"
}

// State derives the lifecycle state from the stored columns.
func (t ShipmentTrip) State() enums.TripState {
	return enums.DeriveTripState(t.PkgsLoaded, t.PkgsTotal, t.Closed)
}
