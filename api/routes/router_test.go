package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	auditsvc "github.com/fulfillmentworks/picksync-backend/internal/audit"
	backordersvc "github.com/fulfillmentworks/picksync-backend/internal/backorders"
	"github.com/fulfillmentworks/picksync-backend/internal/scanning"
	linesvc "github.com/fulfillmentworks/picksync-backend/internal/shipmentlines"
	tripsvc "github.com/fulfillmentworks/picksync-backend/internal/trips"
	"github.com/fulfillmentworks/picksync-backend/pkg/config"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
	"github.com/fulfillmentworks/picksync-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubScanning struct{}

func (stubScanning) ProcessPickScan(_ context.Context, _ int64, _, _, _ string) (*scanning.PickScanResult, error) {
	return &scanning.PickScanResult{Result: enums.ScanResultSuccess, ItemCode: "SKU-1", QtySent: 1}, nil
}

func (stubScanning) ProcessLoadScan(_ context.Context, _, _ string, _ *time.Time) (*scanning.LoadScanResult, error) {
	return &scanning.LoadScanResult{Result: enums.ScanResultSuccess, Outcome: enums.LoadOutcomeLoaded, TripID: 1, PkgNo: 1}, nil
}

func (stubScanning) CompleteOrder(_ context.Context, _ int64, _, _ string) ([]scanning.CompletedLine, error) {
	return nil, nil
}

type stubQueue struct{}

func (stubQueue) Increment(_ context.Context, _ int64, _ string, _ int) (int, error) {
	return 1, nil
}

func (stubQueue) Fetch(_ context.Context, _ int64) (map[string]int, error) {
	return map[string]int{"SKU-1": 3}, nil
}

func (stubQueue) Delete(_ context.Context, _ int64) error {
	return nil
}

func (stubQueue) DeleteStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubTrips struct{}

func (stubTrips) UpsertHeader(_ context.Context, input tripsvc.UpsertHeaderInput) (*models.ShipmentTrip, error) {
	return &models.ShipmentTrip{ID: 7, TripDate: input.TripDate, OrderNo: input.OrderNo, PkgsTotal: input.PkgsTotal}, nil
}

func (stubTrips) MarkLoaded(_ context.Context, _ int64, _ int, _ string) (*tripsvc.LoadResult, error) {
	return &tripsvc.LoadResult{Outcome: enums.LoadOutcomeLoaded}, nil
}

func (stubTrips) SetClosed(_ context.Context, tripID int64, closed bool, _ string) (*models.ShipmentTrip, error) {
	return &models.ShipmentTrip{ID: tripID, Closed: closed, PkgsTotal: 1}, nil
}

func (stubTrips) Resolve(_ context.Context, _ string, _ *time.Time) (*models.ShipmentTrip, error) {
	return nil, nil
}

func (stubTrips) GetByID(_ context.Context, tripID int64) (*models.ShipmentTrip, error) {
	return &models.ShipmentTrip{ID: tripID, OrderNo: "SO-1", PkgsTotal: 2}, nil
}

func (stubTrips) ListHeaders(_ context.Context, day time.Time) ([]models.ShipmentTrip, error) {
	return []models.ShipmentTrip{{ID: 1, TripDate: day, OrderNo: "SO-1", PkgsTotal: 2}}, nil
}

func (stubTrips) ListHeadersRange(_ context.Context, _, _ time.Time) ([]models.ShipmentTrip, error) {
	return nil, nil
}

func (stubTrips) ListOpenBefore(_ context.Context, _ time.Time) ([]models.ShipmentTrip, error) {
	return nil, nil
}

type stubBackorders struct{}

func (stubBackorders) Insert(_ context.Context, input backordersvc.InsertInput) (*models.Backorder, error) {
	return &models.Backorder{ID: 1, OrderNo: input.OrderNo, ItemCode: input.ItemCode, QtyMissing: input.QtyMissing}, nil
}

func (stubBackorders) MarkFulfilled(_ context.Context, id int64, _ string) (*models.Backorder, error) {
	return &models.Backorder{ID: id, Fulfilled: true}, nil
}

func (stubBackorders) ListPending(_ context.Context) ([]models.Backorder, error) {
	return nil, nil
}

func (stubBackorders) ListFulfilled(_ context.Context, _ *time.Time) ([]models.Backorder, error) {
	return nil, nil
}

type stubLines struct{}

func (stubLines) Add(_ context.Context, input linesvc.AddInput) (*models.ShipmentLine, error) {
	return &models.ShipmentLine{ID: 1, InvoiceNo: input.InvoiceNo, ItemCode: input.ItemCode}, nil
}

func (stubLines) ListByInvoiceNo(_ context.Context, _ string) ([]models.ShipmentLine, error) {
	return nil, nil
}

type stubAudit struct{}

func (stubAudit) Record(_ context.Context, _ auditsvc.Entry) error {
	return nil
}

func (stubAudit) RecordTx(_ context.Context, _ *gorm.DB, _ auditsvc.Entry) error {
	return nil
}

func (stubAudit) ListByOrderNo(_ context.Context, _ string) ([]models.AuditEntry, error) {
	return []models.AuditEntry{{ID: 1, Username: "maria", Action: enums.AuditBarcodeScan, OrderNo: "SO-1"}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(Deps{
		Cfg:           cfg,
		Logg:          logg,
		DBPinger:      stubPinger{},
		ScanMetrics:   metrics.NewScanMetrics(nil),
		Scanning:      stubScanning{},
		PickQueue:     stubQueue{},
		Trips:         stubTrips{},
		Backorders:    stubBackorders{},
		ShipmentLines: stubLines{},
		Audit:         stubAudit{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-PickSync-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-PickSync-Env"))
	}
}

// Deps.Redis is left nil in newTestRouter: a deployment without Redis must
// still report ready instead of panicking on a typed-nil pinger.
func TestRouterHealthReady(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterPickScan(t *testing.T) {
	router := newTestRouter(t)

	body := `{"order_id":12,"order_no":"SO-12","barcode":"0001","username":"maria"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pick/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Result   string `json:"result"`
			ItemCode string `json:"item_code"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Result != string(enums.ScanResultSuccess) {
		t.Fatalf("unexpected result %q", envelope.Data.Result)
	}
	if envelope.Data.ItemCode != "SKU-1" {
		t.Fatalf("unexpected item code %q", envelope.Data.ItemCode)
	}
}

func TestRouterPickQueueFetch(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pick/orders/12/queue", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "SKU-1") {
		t.Fatalf("expected queue items in body: %s", resp.Body.String())
	}
}

func TestRouterPickQueueFetchRejectsBadID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pick/orders/abc/queue", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRouterTripListByDay(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips?day=2026-03-01", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "SO-1") {
		t.Fatalf("expected trip header in body: %s", resp.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestRouterActivityRequiresOrderNo(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
