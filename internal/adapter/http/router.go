package http

import (
	mw "autoempeno-backend/internal/adapter/middleware"
	"autoempeno-backend/internal/domain/session"

	"github.com/labstack/echo/v4"
)

// Routes groups everything Register needs to mount the API.
type Routes struct {
	Health       *Handler
	Assets       *AssetHandler
	Pledges      *PledgeHandler
	Transactions *TransactionHandler

	// Session authenticates /api; Idempotency runs after it so keys are per user.
	Session     echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)
	e.GET("/ready", r.Health.Ready)

	chain := []echo.MiddlewareFunc{r.Session}
	if r.Idempotency != nil {
		chain = append(chain, r.Idempotency)
	}
	api := e.Group("/api", chain...)

	staff := mw.RequireRole(session.RoleAdmin, session.RoleSeller)
	admin := mw.RequireRole(session.RoleAdmin)

	api.POST("/assets", r.Assets.Register, admin)
	api.GET("/assets", r.Assets.List, staff)
	api.GET("/assets/:asset_id", r.Assets.Get, staff)
	api.POST("/assets/:asset_id/sale", r.Assets.Sell, staff)
	api.POST("/assets/:asset_id/write-off", r.Assets.WriteOff, admin)
	api.POST("/assets/:asset_id/reinstate", r.Assets.Reinstate, staff)
	api.GET("/assets/:asset_id/pledge", r.Pledges.GetByAsset, staff)

	api.POST("/pledges", r.Pledges.Create, staff)
	api.GET("/pledges", r.Pledges.ListActive, staff)
	api.GET("/pledges/:pledge_id", r.Pledges.Get, staff)
	api.GET("/pledges/:pledge_id/snapshot", r.Pledges.Snapshot, staff)
	api.POST("/pledges/:pledge_id/payments", r.Pledges.ApplyPayment, staff)
	api.GET("/pledges/:pledge_id/payments", r.Pledges.ListPayments, staff)

	api.GET("/transactions", r.Transactions.List, admin)
	api.GET("/transactions/stats", r.Transactions.Stats, admin)
}
