package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fulfillmentworks/picksync-backend/api/controllers"
	"github.com/fulfillmentworks/picksync-backend/api/middleware"
	auditsvc "github.com/fulfillmentworks/picksync-backend/internal/audit"
	backordersvc "github.com/fulfillmentworks/picksync-backend/internal/backorders"
	"github.com/fulfillmentworks/picksync-backend/internal/pickqueue"
	"github.com/fulfillmentworks/picksync-backend/internal/scanning"
	linesvc "github.com/fulfillmentworks/picksync-backend/internal/shipmentlines"
	tripsvc "github.com/fulfillmentworks/picksync-backend/internal/trips"
	"github.com/fulfillmentworks/picksync-backend/pkg/config"
	"github.com/fulfillmentworks/picksync-backend/pkg/db"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
	"github.com/fulfillmentworks/picksync-backend/pkg/metrics"
	"github.com/fulfillmentworks/picksync-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Cfg            *config.Config
	Logg           *logger.Logger
	DBPinger       db.Pinger
	Redis          *redis.Client
	ScanMetrics    *metrics.ScanMetrics
	MetricsHandler http.Handler

	Scanning      scanning.Service
	PickQueue     pickqueue.Service
	Trips         tripsvc.Service
	Backorders    backordersvc.Service
	ShipmentLines linesvc.Service
	Audit         auditsvc.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logg),
		middleware.RequestID(d.Logg),
		middleware.Logging(d.Logg),
		middleware.CORS(),
	)

	// A typed-nil client must not reach the readiness check as a non-nil
	// pinger interface.
	readinessDeps := []controllers.Pinger{}
	if d.DBPinger != nil {
		readinessDeps = append(readinessDeps, d.DBPinger)
	}
	if d.Redis != nil {
		readinessDeps = append(readinessDeps, d.Redis)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, d.Logg, readinessDeps...))
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	// A typed-nil client must not reach the middleware as a non-nil interface.
	var idempotencyStore redis.IdempotencyStore
	if d.Redis != nil {
		idempotencyStore = d.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StationContext())
		r.Use(middleware.Idempotency(idempotencyStore, d.Logg))

		r.Route("/pick", func(r chi.Router) {
			r.Post("/scan", controllers.PickScan(d.Scanning, d.ScanMetrics, d.Logg))
			r.Route("/orders/{orderID}", func(r chi.Router) {
				r.Get("/queue", controllers.PickQueueFetch(d.PickQueue, d.Logg))
				r.Post("/complete", controllers.CompleteOrder(d.Scanning, d.Logg))
			})
		})

		r.Post("/load/scan", controllers.LoadScan(d.Scanning, d.ScanMetrics, d.Logg))

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", controllers.TripUpsert(d.Trips, d.Logg))
			r.Get("/", controllers.TripList(d.Trips, d.Logg))
			r.Get("/{tripID}", controllers.TripDetail(d.Trips, d.Logg))
			r.Post("/{tripID}/closed", controllers.TripSetClosed(d.Trips, d.ScanMetrics, d.Logg))
		})

		r.Route("/backorders", func(r chi.Router) {
			r.Post("/", controllers.BackorderInsert(d.Backorders, d.Logg))
			r.Get("/pending", controllers.BackorderListPending(d.Backorders, d.Logg))
			r.Get("/fulfilled", controllers.BackorderListFulfilled(d.Backorders, d.Logg))
			r.Post("/{backorderID}/fulfill", controllers.BackorderFulfill(d.Backorders, d.Logg))
		})

		r.Route("/shipment-lines", func(r chi.Router) {
			r.Post("/", controllers.ShipmentLineAdd(d.ShipmentLines, d.Logg))
			r.Get("/", controllers.ShipmentLineList(d.ShipmentLines, d.Logg))
		})

		r.Get("/activity", controllers.ActivityList(d.Audit, d.Logg))
	})

	return r
}
