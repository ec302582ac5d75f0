package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/fulfillmentworks/picksync-backend/api/responses"
	"github.com/fulfillmentworks/picksync-backend/api/validators"
	auditsvc "github.com/fulfillmentworks/picksync-backend/internal/audit"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
)

type activityResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	OrderNo   string    `json:"order_no,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newActivityListResponse(rows []models.AuditEntry) []activityResponse {
	out := make([]activityResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, activityResponse{
			ID:        row.ID,
			Username:  row.Username,
			Action:    string(row.Action),
			Details:   row.Details,
			OrderNo:   row.OrderNo,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}

// ActivityList returns the audit trail for one order, newest first.
func ActivityList(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		orderNo := strings.TrimSpace(r.URL.Query().Get("order_no"))
		if orderNo == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_no query parameter required"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByOrderNo(r.Context(), orderNo)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}
		responses.WriteSuccess(w, newActivityListResponse(rows))
	}
}
