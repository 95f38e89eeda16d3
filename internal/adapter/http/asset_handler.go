package http

import (
	"net/http"
	"strconv"

	mw "autoempeno-backend/internal/adapter/middleware"
	domain "autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	ucasset "autoempeno-backend/internal/usecase/asset"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AssetHandler struct {
	uc  *ucasset.Usecase
	log *zap.Logger
}

func NewAssetHandler(uc *ucasset.Usecase, log *zap.Logger) *AssetHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetHandler{uc: uc, log: log}
}

type registerAssetReq struct {
	Kind          string          `json:"kind"           validate:"required,oneof=vehicle article"`
	Description   string          `json:"description"    validate:"required,max=255"`
	Brand         string          `json:"brand"          validate:"max=50"`
	Model         string          `json:"model"          validate:"max=50"`
	Year          int             `json:"year"           validate:"gte=0,lte=2100"`
	Plate         string          `json:"plate"          validate:"max=20"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gte=0,lte=9999999999999.99,dec2"`
	SalePrice     decimal.Decimal `json:"sale_price"     validate:"gte=0,lte=9999999999999.99,dec2"`
	LocationID    uint64          `json:"location_id"`
}

type clientReq struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Phone    string `json:"phone"    validate:"max=20"`
	Document string `json:"document" validate:"max=20"`
}

func (r *clientReq) toDomain() pledge.Client {
	if r == nil {
		return pledge.Client{}
	}
	return pledge.Client{Name: r.Name, Phone: r.Phone, Document: r.Document}
}

type sellAssetReq struct {
	Price  decimal.Decimal `json:"price"  validate:"gt=0,lte=9999999999999.99,dec2"`
	Client *clientReq      `json:"client"`
	Notes  string          `json:"notes"  validate:"max=500"`
}

type notesReq struct {
	Notes string `json:"notes" validate:"max=500"`
}

func (h *AssetHandler) Register(c echo.Context) error {
	s, ok := mw.SessionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req registerAssetReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Register(c.Request().Context(), s, ucasset.RegisterAssetInput{
		Kind:          pledge.AssetKind(req.Kind),
		Description:   req.Description,
		Brand:         req.Brand,
		Model:         req.Model,
		Year:          req.Year,
		Plate:         req.Plate,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		LocationID:    req.LocationID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AssetHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("asset_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// List accepts kind, state and location_id query filters.
func (h *AssetHandler) List(c echo.Context) error {
	f := domain.Filter{
		Kind:  pledge.AssetKind(c.QueryParam("kind")),
		State: pledge.State(c.QueryParam("state")),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return badRequest(c, "unknown kind")
	}
	if f.State != "" && !f.State.Valid() {
		return badRequest(c, "unknown state")
	}
	if raw := c.QueryParam("location_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "location_id must be a positive integer")
		}
		f.LocationID = n
	}
	list, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func (h *AssetHandler) Sell(c echo.Context) error {
	s, ok := mw.SessionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req sellAssetReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	res, err := h.uc.Sell(c.Request().Context(), s, ucasset.SellInput{
		AssetID: c.Param("asset_id"),
		Price:   req.Price,
		Client:  req.Client.toDomain(),
		Notes:   req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AssetHandler) WriteOff(c echo.Context) error {
	s, ok := mw.SessionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req notesReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.WriteOff(c.Request().Context(), s, c.Param("asset_id"), req.Notes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AssetHandler) Reinstate(c echo.Context) error {
	s, ok := mw.SessionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	dto, err := h.uc.Reinstate(c.Request().Context(), s, c.Param("asset_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
