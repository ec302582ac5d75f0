package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
)

type openTripLister interface {
	ListOpenBefore(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error)
}

// OpenTripsDigestJobParams configure the open trips digest.
type OpenTripsDigestJobParams struct {
	Logger *logger.Logger
	Trips  openTripLister
}

// NewOpenTripsDigestJob builds the job that reports trips still open past
// their trip date. It changes nothing; supervisors act on the log lines.
func NewOpenTripsDigestJob(params OpenTripsDigestJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Trips == nil {
		return nil, fmt.Errorf("trip lister required")
	}
	return &openTripsDigestJob{
		logg:  params.Logger,
		trips: params.Trips,
		now:   time.Now,
	}, nil
}

type openTripsDigestJob struct {
	logg  *logger.Logger
	trips openTripLister
	now   func() time.Time
}

func (j *openTripsDigestJob) Name() string { return "open-trips-digest" }

func (j *openTripsDigestJob) Run(ctx context.Context) error {
	today := j.now().UTC()
	trips, err := j.trips.ListOpenBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("open trips digest: %w", err)
	}
	if len(trips) == 0 {
		j.logg.Info(ctx, "no overdue open trips")
		return nil
	}
	for _, trip := range trips {
		tripCtx := j.logg.WithFields(ctx, map[string]any{
			"trip_id":     trip.ID,
			"order_no":    trip.OrderNo,
			"trip_date":   trip.TripDate.Format("2006-01-02"),
			"pkgs_loaded": trip.PkgsLoaded,
			"pkgs_total":  trip.PkgsTotal,
		})
		j.logg.Warn(tripCtx, "trip still open past its trip date")
	}
	digestCtx := j.logg.WithField(ctx, "overdue_trips", len(trips))
	j.logg.Info(digestCtx, "open trips digest complete")
	return nil
}
