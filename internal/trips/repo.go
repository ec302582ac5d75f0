package trips

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
)

// Repository manages persistence for shipment trips and their package loads.
// The write methods assume they run inside the caller's transaction when
// counters must stay consistent with the load ledger; see Service.MarkLoaded.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	UpsertHeader(ctx context.Context, header *models.ShipmentTrip) (*models.ShipmentTrip, error)
	GetByID(ctx context.Context, tripID int64) (*models.ShipmentTrip, error)
	ResolveByInvoiceRoot(ctx context.Context, invoiceRoot string, day *time.Time) (*models.ShipmentTrip, error)
	ListByDay(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]models.ShipmentTrip, error)

	FlipPackageLoaded(ctx context.Context, tripID int64, pkgNo int, loadedBy string) (bool, error)
	IncrementLoaded(ctx context.Context, tripID int64) error
	CloseTrip(ctx context.Context, tripID int64, loadedAt time.Time) error
	SetClosed(ctx context.Context, tripID int64, closed bool) error
	ListPackageLoads(ctx context.Context, tripID int64) ([]models.PackageLoad, error)
	ListOpenBefore(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a trips repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertHeader inserts the trip for (trip_date, order_no) or merges into the
// existing row: pkgs_total keeps the larger value, closed resets so a re-sync
// reopens a finished trip, and invoice_root is only filled when still empty.
func (r *repository) UpsertHeader(ctx context.Context, header *models.ShipmentTrip) (*models.ShipmentTrip, error) {
	header.TripDate = truncateToDay(header.TripDate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "trip_date"}, {Name: "order_no"}},
			DoUpdates: clause.Assignments(map[string]any{
				"customer_code": gorm.Expr("excluded.customer_code"),
				"customer_name": gorm.Expr("excluded.customer_name"),
				"region":        gorm.Expr("excluded.region"),
				"address1":      gorm.Expr("excluded.address1"),
				"pkgs_total": gorm.Expr(
					"CASE WHEN excluded.pkgs_total > shipment_trips.pkgs_total THEN excluded.pkgs_total ELSE shipment_trips.pkgs_total END"),
				"closed":   false,
				"en_route": false,
				"invoice_root": gorm.Expr(
					"CASE WHEN shipment_trips.invoice_root = '' THEN excluded.invoice_root ELSE shipment_trips.invoice_root END"),
			}),
		}).Create(header).Error; err != nil {
			return err
		}
		return tx.
			Where("trip_date = ? AND order_no = ?", header.TripDate, header.OrderNo).
			Take(header).Error
	})
	if err != nil {
		return nil, err
	}
	return header, nil
}

func (r *repository) GetByID(ctx context.Context, tripID int64) (*models.ShipmentTrip, error) {
	var trip models.ShipmentTrip
	if err := r.db.WithContext(ctx).
		Where("id = ?", tripID).
		Take(&trip).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// ResolveByInvoiceRoot finds the oldest trip still accepting packages for the
// given invoice root: not closed, not full, lowest id first.
func (r *repository) ResolveByInvoiceRoot(ctx context.Context, invoiceRoot string, day *time.Time) (*models.ShipmentTrip, error) {
	q := r.db.WithContext(ctx).
		Where("invoice_root = ?", invoiceRoot).
		Where("closed = ?", false).
		Where("pkgs_loaded < pkgs_total")
	if day != nil {
		q = q.Where("trip_date = ?", truncateToDay(*day))
	}
	var trip models.ShipmentTrip
	if err := q.Order("id ASC").Take(&trip).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) ListByDay(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error) {
	return r.list(r.db.WithContext(ctx).Where("trip_date = ?", truncateToDay(day)))
}

func (r *repository) ListByRange(ctx context.Context, start, end time.Time) ([]models.ShipmentTrip, error) {
	return r.list(r.db.WithContext(ctx).
		Where("trip_date >= ? AND trip_date <= ?", truncateToDay(start), truncateToDay(end)))
}

func (r *repository) list(q *gorm.DB) ([]models.ShipmentTrip, error) {
	var trips []models.ShipmentTrip
	if err := q.Order("trip_date ASC").Order("id ASC").Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

// FlipPackageLoaded flips the package row 0→1 and reports whether this call
// won the flip. The conditional update and the guarded insert together make
// the operation race-safe without row locks: at most one caller sees true.
func (r *repository) FlipPackageLoaded(ctx context.Context, tripID int64, pkgNo int, loadedBy string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.PackageLoad{}).
		Where("trip_id = ? AND pkg_no = ? AND loaded = ?", tripID, pkgNo, false).
		Updates(map[string]any{
			"loaded":      true,
			"loaded_by":   loadedBy,
			"loaded_time": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// No open row: either the package was never registered or it is already
	// loaded. Try to create it pre-loaded; losing the insert race means a
	// duplicate scan.
	row := models.PackageLoad{
		TripID:     tripID,
		PkgNo:      pkgNo,
		Loaded:     true,
		LoadedBy:   loadedBy,
		LoadedTime: &now,
	}
	ins := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trip_id"}, {Name: "pkg_no"}},
		DoNothing: true,
	}).Create(&row)
	if ins.Error != nil {
		return false, ins.Error
	}
	return ins.RowsAffected > 0, nil
}

func (r *repository) IncrementLoaded(ctx context.Context, tripID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.ShipmentTrip{}).
		Where("id = ?", tripID).
		Update("pkgs_loaded", gorm.Expr("pkgs_loaded + 1")).Error
}

func (r *repository) CloseTrip(ctx context.Context, tripID int64, loadedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ShipmentTrip{}).
		Where("id = ?", tripID).
		Updates(map[string]any{
			"closed":    true,
			"en_route":  true,
			"loaded_at": loadedAt,
		}).Error
}

// SetClosed flips the closed and en_route flags together; a closing override
// also stamps loaded_at, same as the auto-close path.
func (r *repository) SetClosed(ctx context.Context, tripID int64, closed bool) error {
	updates := map[string]any{
		"closed":   closed,
		"en_route": closed,
	}
	if closed {
		updates["loaded_at"] = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Model(&models.ShipmentTrip{}).
		Where("id = ?", tripID).
		Updates(updates).Error
}

func (r *repository) ListPackageLoads(ctx context.Context, tripID int64) ([]models.PackageLoad, error) {
	var loads []models.PackageLoad
	if err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("pkg_no ASC").
		Find(&loads).Error; err != nil {
		return nil, err
	}
	return loads, nil
}

// ListOpenBefore returns trips still open with a trip date strictly before
// the given day. The cron digest uses it for operational visibility.
func (r *repository) ListOpenBefore(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error) {
	return r.list(r.db.WithContext(ctx).
		Where("closed = ?", false).
		Where("trip_date < ?", truncateToDay(day)))
}

func truncateToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
