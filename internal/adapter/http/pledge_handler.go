package http

import (
	"net/http"

	mw "autoempeno-backend/internal/adapter/middleware"
	"autoempeno-backend/internal/domain/pledge"
	ucpledge "autoempeno-backend/internal/usecase/pledge"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PledgeHandler struct {
	uc  *ucpledge.Usecase
	log *zap.Logger
}

func NewPledgeHandler(uc *ucpledge.Usecase, log *zap.Logger) *PledgeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PledgeHandler{uc: uc, log: log}
}

type createPledgeReq struct {
	AssetID     string          `json:"asset_id"     validate:"required,hex32"`
	Principal   decimal.Decimal `json:"principal"    validate:"gt=0,lte=9999999999999.99,dec2"`
	MonthlyRate decimal.Decimal `json:"monthly_rate" validate:"gte=0,lte=100,dec2"`
	Client      clientReq       `json:"client"`
	LocationID  uint64          `json:"location_id"`
	Notes       string          `json:"notes"        validate:"max=500"`
}

type applyPaymentReq struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0,lte=9999999999999.99,dec2"`
	// optional, YYYY-MM-DD or RFC3339; defaults to now
	AsOf  string `json:"as_of"`
	Notes string `json:"notes"  validate:"max=500"`
}

func (h *PledgeHandler) Create(c echo.Context) error {
	s, ok := mw.SessionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req createPledgeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Create(c.Request().Context(), s, ucpledge.CreatePledgeInput{
		AssetID:     req.AssetID,
		Principal:   req.Principal,
		MonthlyRate: req.MonthlyRate,
		Client:      req.Client.toDomain(),
		LocationID:  req.LocationID,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PledgeHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("pledge_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ListActive lists pawned pledges, optionally narrowed by ?kind=vehicle|article.
func (h *PledgeHandler) ListActive(c echo.Context) error {
	kind := pledge.AssetKind(c.QueryParam("kind"))
	if kind != "" && !kind.Valid() {
		return badRequest(c, "unknown kind")
	}
	list, err := h.uc.ListActive(c.Request().Context(), kind)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

// GetByAsset returns the active pledge on an asset with its payoff as of now.
func (h *PledgeHandler) GetByAsset(c echo.Context) error {
	dto, err := h.uc.GetActiveByAsset(c.Request().Context(), c.Param("asset_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PledgeHandler) Snapshot(c echo.Context) error {
	asOf, err := parseDate(c.QueryParam("as_of"))
	if err != nil {
		return badRequest(c, "as_of must be YYYY-MM-DD or RFC3339")
	}
	dto, err := h.uc.Snapshot(c.Request().Context(), c.Param("pledge_id"), asOf)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PledgeHandler) ApplyPayment(c echo.Context) error {
	s, ok := mw.SessionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req applyPaymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	asOf, err := parseDate(req.AsOf)
	if err != nil {
		return badRequest(c, "as_of must be YYYY-MM-DD or RFC3339")
	}
	res, err := h.uc.ApplyPayment(c.Request().Context(), s, ucpledge.ApplyPaymentInput{
		PledgeID: c.Param("pledge_id"),
		Amount:   req.Amount,
		AsOf:     asOf,
		Notes:    req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PledgeHandler) ListPayments(c echo.Context) error {
	list, err := h.uc.ListPayments(c.Request().Context(), c.Param("pledge_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}
