package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"autoempeno-backend/internal/domain/transaction"
	ucreport "autoempeno-backend/internal/usecase/report"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxListLimit = 500

type TransactionHandler struct {
	uc  *ucreport.Usecase
	log *zap.Logger
}

func NewTransactionHandler(uc *ucreport.Usecase, log *zap.Logger) *TransactionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionHandler{uc: uc, log: log}
}

// List reads type (comma separated), asset_id, pledge_id, from, to and limit.
// from and to are inclusive; a bare-date to covers that whole day.
func (h *TransactionHandler) List(c echo.Context) error {
	var f transaction.Filter
	if raw := c.QueryParam("type"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t := transaction.Type(strings.TrimSpace(part))
			if !t.Valid() {
				return badRequest(c, "unknown transaction type "+strconv.Quote(string(t)))
			}
			f.Types = append(f.Types, t)
		}
	}
	f.AssetID = c.QueryParam("asset_id")
	f.PledgeID = c.QueryParam("pledge_id")

	from, to, ok := h.window(c)
	if !ok {
		return badRequest(c, "from/to must be YYYY-MM-DD or RFC3339")
	}
	f.From, f.To = from, to

	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxListLimit {
			return badRequest(c, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
		}
		f.Limit = n
	}

	list, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func (h *TransactionHandler) Stats(c echo.Context) error {
	from, to, ok := h.window(c)
	if !ok {
		return badRequest(c, "from/to must be YYYY-MM-DD or RFC3339")
	}
	st, err := h.uc.Stats(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *TransactionHandler) window(c echo.Context) (from, to *time.Time, ok bool) {
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return nil, nil, false
	}
	to, err = parseUntil(c.QueryParam("to"))
	if err != nil {
		return nil, nil, false
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, false
	}
	return from, to, true
}
