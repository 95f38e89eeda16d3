package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mw "autoempeno-backend/internal/adapter/middleware"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/session"
	"autoempeno-backend/internal/testutil/memstore"
	ucasset "autoempeno-backend/internal/usecase/asset"
	ucpledge "autoempeno-backend/internal/usecase/pledge"
	ucreport "autoempeno-backend/internal/usecase/report"
	"autoempeno-backend/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// -------- helpers --------

const headerTestRole = "X-Test-Role"

var apiDay0 = time.Date(2025, time.March, 1, 14, 0, 0, 0, time.UTC)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// testSession trusts X-Test-Role instead of a bearer token.
func testSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role := c.Request().Header.Get(headerTestRole)
		if role == "" {
			return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		}
		mw.WithSession(c, session.Session{UserID: "u-" + role, Role: session.Role(role)})
		return next(c)
	}
}

type apiFixture struct {
	e     *echo.Echo
	store *memstore.Store
	clk   *clock.Fixed
}

func newAPI(t *testing.T, lc pledge.Lifecycle) apiFixture {
	t.Helper()
	store := memstore.New()
	clk := clock.NewFixed(apiDay0)
	r := store.Repos()

	e := newEchoWithValidator()
	Register(e, Routes{
		Health:       NewHandler(nil),
		Assets:       NewAssetHandler(ucasset.NewUsecase(r.Assets, store, clk, lc, nil), nil),
		Pledges:      NewPledgeHandler(ucpledge.NewUsecase(r.Pledges, r.Transactions, store, clk, nil), nil),
		Transactions: NewTransactionHandler(ucreport.NewUsecase(r.Transactions), nil),
		Session:      testSession,
	})
	return apiFixture{e: e, store: store, clk: clk}
}

func (f apiFixture) do(t *testing.T, role session.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = mustJSON(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set(headerTestRole, string(role))
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	expect(t, rec, status)
	er := decode[ErrorResponse](t, rec)
	if er.Code != code {
		t.Fatalf("code = %q, want %q; body=%s", er.Code, code, rec.Body.String())
	}
	return er
}

func (f apiFixture) registerCar(t *testing.T) ucasset.AssetDTO {
	t.Helper()
	rec := f.do(t, session.RoleAdmin, stdhttp.MethodPost, "/api/assets", map[string]any{
		"kind":           "vehicle",
		"description":    "Renault Logan 2019",
		"brand":          "Renault",
		"model":          "Logan",
		"year":           2019,
		"plate":          "ABC123",
		"purchase_price": "18000000",
		"sale_price":     "21000000",
		"location_id":    2,
	})
	expect(t, rec, stdhttp.StatusCreated)
	return decode[ucasset.AssetDTO](t, rec)
}

func (f apiFixture) pawn(t *testing.T, assetID, principal string) ucpledge.PledgeDTO {
	t.Helper()
	rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges", map[string]any{
		"asset_id":     assetID,
		"principal":    principal,
		"monthly_rate": 3,
		"client":       map[string]string{"name": "Carlos Ruiz", "phone": "3001234567", "document": "1020304050"},
	})
	expect(t, rec, stdhttp.StatusCreated)
	return decode[ucpledge.PledgeDTO](t, rec)
}

func eqDec(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", field, got, want)
	}
}

// -------- tests --------

func TestAPI_PawnSnapshotAndRecover(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})
	car := f.registerCar(t)
	if car.State != pledge.StateAvailable || car.Plate != "ABC123" {
		t.Fatalf("unexpected asset: %+v", car)
	}

	p := f.pawn(t, car.AssetID, "500000")
	if p.State != pledge.StatePawned || p.AssetKind != pledge.KindVehicle || p.LocationID != 2 {
		t.Fatalf("unexpected pledge: %+v", p)
	}
	eqDec(t, "outstanding", p.OutstandingPrincipal, "500000")

	f.clk.AddDays(40)
	rec := f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID+"/snapshot", nil)
	expect(t, rec, stdhttp.StatusOK)
	snap := decode[ucpledge.SnapshotDTO](t, rec)
	if snap.ElapsedPeriods != 1 || snap.ElapsedDays != 40 {
		t.Fatalf("unexpected periods: %+v", snap.Accrual)
	}
	eqDec(t, "accrued_interest", snap.AccruedInterest, "15000")
	eqDec(t, "payoff_value", snap.PayoffValue, "515000")

	// explicit as_of: same answer, state unchanged
	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID+"/snapshot?as_of=2025-04-10", nil)
	expect(t, rec, stdhttp.StatusOK)
	eqDec(t, "payoff_value", decode[ucpledge.SnapshotDTO](t, rec).PayoffValue, "515000")

	rec = f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{"amount": "515000"})
	expect(t, rec, stdhttp.StatusOK)
	res := decode[ucpledge.PaymentResult](t, rec)
	if !res.Recovered || res.NewState != pledge.StateRecovered || res.Message != ucpledge.MessageRecovered {
		t.Fatalf("unexpected payment result: %+v", res)
	}
	eqDec(t, "new_outstanding", res.NewOutstanding, "0")

	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/assets/"+car.AssetID, nil)
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[ucasset.AssetDTO](t, rec); got.State != pledge.StateRecovered {
		t.Fatalf("asset state = %s, want recovered", got.State)
	}

	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID+"/payments", nil)
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[struct{ Count int }](t, rec); got.Count != 1 {
		t.Fatalf("payments count = %d, want 1", got.Count)
	}

	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges", nil)
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[struct{ Count int }](t, rec); got.Count != 0 {
		t.Fatalf("active pledges = %d, want 0", got.Count)
	}

	rec = f.do(t, session.RoleAdmin, stdhttp.MethodGet, "/api/transactions/stats", nil)
	expect(t, rec, stdhttp.StatusOK)
	st := decode[ucreport.Stats](t, rec)
	if st.Count != 2 {
		t.Fatalf("stats count = %d, want 2", st.Count)
	}
	eqDec(t, "pledged_out", st.PledgedOut, "500000")
	eqDec(t, "collected_in", st.CollectedIn, "515000")
}

func TestAPI_PartialPaymentRebases(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})
	p := f.pawn(t, f.registerCar(t).AssetID, "1000000")

	f.clk.AddDays(32)
	rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{
		"amount": 500000,
		"notes":  "primer abono",
	})
	expect(t, rec, stdhttp.StatusOK)
	res := decode[ucpledge.PaymentResult](t, rec)
	if res.Recovered || res.NewState != pledge.StatePawned {
		t.Fatalf("unexpected payment result: %+v", res)
	}
	eqDec(t, "payoff_before", res.PayoffBefore, "1030000")
	eqDec(t, "new_outstanding", res.NewOutstanding, "530000")

	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID, nil)
	expect(t, rec, stdhttp.StatusOK)
	got := decode[ucpledge.PledgeDTO](t, rec)
	if !got.PledgeDate.Equal(f.clk.Now()) {
		t.Fatalf("pledge_date = %v, want re-based to %v", got.PledgeDate, f.clk.Now())
	}
}

func TestAPI_RoleGuards(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})

	expect(t, f.do(t, "", stdhttp.MethodGet, "/api/assets", nil), stdhttp.StatusUnauthorized)
	expect(t, f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets", map[string]any{"kind": "article"}), stdhttp.StatusForbidden)
	expect(t, f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/transactions", nil), stdhttp.StatusForbidden)
	expect(t, f.do(t, "cliente", stdhttp.MethodGet, "/api/pledges", nil), stdhttp.StatusForbidden)

	car := f.registerCar(t)
	expect(t, f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/write-off", nil), stdhttp.StatusForbidden)
	expect(t, f.do(t, session.RoleAdmin, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/write-off", map[string]any{"notes": "motor fundido"}), stdhttp.StatusOK)

	// public liveness check
	expect(t, f.do(t, "", stdhttp.MethodGet, "/health", nil), stdhttp.StatusOK)
}

func TestAPI_ErrorMapping(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})
	car := f.registerCar(t)
	p := f.pawn(t, car.AssetID, "500000")
	unknown := strings.Repeat("0", 32)

	t.Run("unknown asset", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges", map[string]any{
			"asset_id": unknown, "principal": 1000, "monthly_rate": 3, "client": map[string]string{"name": "Ana"},
		})
		expectError(t, rec, stdhttp.StatusNotFound, "asset_not_found")
	})
	t.Run("asset already pawned", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges", map[string]any{
			"asset_id": car.AssetID, "principal": 1000, "monthly_rate": 3, "client": map[string]string{"name": "Ana"},
		})
		expectError(t, rec, stdhttp.StatusConflict, "asset_not_available")
	})
	t.Run("validation", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges", map[string]any{
			"asset_id": "nope", "principal": 0, "monthly_rate": 101, "client": map[string]string{},
		})
		er := expectError(t, rec, stdhttp.StatusUnprocessableEntity, codeValidation)
		for _, field := range []string{"asset_id", "principal", "monthly_rate", "name"} {
			if !containsFieldMsg(er.Details, field, "") {
				t.Fatalf("missing detail for %s: %+v", field, er.Details)
			}
		}
	})
	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", strings.NewReader("{"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(headerTestRole, string(session.RoleSeller))
		rec := httptest.NewRecorder()
		f.e.ServeHTTP(rec, req)
		expectError(t, rec, stdhttp.StatusBadRequest, codeBadRequest)
	})
	t.Run("unknown pledge", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+unknown+"/payments", map[string]any{"amount": 10})
		expectError(t, rec, stdhttp.StatusNotFound, "pledge_not_found")
		rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+unknown+"/snapshot", nil)
		expectError(t, rec, stdhttp.StatusNotFound, "pledge_not_found")
	})
	t.Run("bad as_of", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID+"/snapshot?as_of=10/04/2025", nil)
		expectError(t, rec, stdhttp.StatusBadRequest, codeBadRequest)
	})
	t.Run("snapshot before pledge date", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID+"/snapshot?as_of=2025-02-01", nil)
		expectError(t, rec, stdhttp.StatusUnprocessableEntity, "invalid_date")
	})
	t.Run("future payment", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{
			"amount": 10, "as_of": "2099-01-01",
		})
		expectError(t, rec, stdhttp.StatusUnprocessableEntity, "invalid_date")
	})
	t.Run("sell while pawned", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/sale", map[string]any{"price": 25000000})
		expectError(t, rec, stdhttp.StatusConflict, "illegal_state_transition")
	})
	t.Run("pay closed pledge", func(t *testing.T) {
		rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{"amount": 600000})
		expect(t, rec, stdhttp.StatusOK)
		rec = f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{"amount": 10})
		expectError(t, rec, stdhttp.StatusConflict, "pledge_not_active")
	})
	t.Run("duplicate plate", func(t *testing.T) {
		rec := f.do(t, session.RoleAdmin, stdhttp.MethodPost, "/api/assets", map[string]any{
			"kind": "vehicle", "description": "otro", "plate": "ABC123",
		})
		expectError(t, rec, stdhttp.StatusConflict, "asset_duplicate")
	})
}

func TestAPI_SaleAndReinstate(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})
	car := f.registerCar(t)

	rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/sale", map[string]any{
		"price":  "21500000",
		"client": map[string]string{"name": "Laura Gomez"},
	})
	expect(t, rec, stdhttp.StatusOK)
	sale := decode[ucasset.SaleResult](t, rec)
	eqDec(t, "profit", sale.Profit, "3500000")

	// sold is terminal
	rec = f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/reinstate", nil)
	expectError(t, rec, stdhttp.StatusConflict, "illegal_state_transition")

	other := f.registerCar2(t)
	p := f.pawn(t, other.AssetID, "100000")
	expect(t, f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{"amount": "100000"}), stdhttp.StatusOK)
	rec = f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+other.AssetID+"/reinstate", nil)
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[ucasset.AssetDTO](t, rec); got.State != pledge.StateAvailable {
		t.Fatalf("state = %s, want available", got.State)
	}

	rec = f.do(t, session.RoleAdmin, stdhttp.MethodGet, "/api/transactions?type=sale,recovery", nil)
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[struct{ Count int }](t, rec); got.Count != 2 {
		t.Fatalf("filtered transactions = %d, want 2", got.Count)
	}
	expectError(t, f.do(t, session.RoleAdmin, stdhttp.MethodGet, "/api/transactions?type=gift", nil), stdhttp.StatusBadRequest, codeBadRequest)
	expectError(t, f.do(t, session.RoleAdmin, stdhttp.MethodGet, "/api/transactions?from=2025-05-01&to=2025-04-01", nil), stdhttp.StatusBadRequest, codeBadRequest)
	expectError(t, f.do(t, session.RoleAdmin, stdhttp.MethodGet, "/api/transactions?limit=0", nil), stdhttp.StatusBadRequest, codeBadRequest)
}

func TestAPI_SellWhilePawnedWhenAllowed(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{AllowSaleWhilePawned: true})
	car := f.registerCar(t)
	p := f.pawn(t, car.AssetID, "500000")

	rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/sale", map[string]any{"price": 20000000})
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[ucasset.SaleResult](t, rec); got.ClosedPledgeID != p.PledgeID {
		t.Fatalf("closed pledge = %q, want %q", got.ClosedPledgeID, p.PledgeID)
	}
	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/pledges/"+p.PledgeID, nil)
	expect(t, rec, stdhttp.StatusOK)
	if got := decode[ucpledge.PledgeDTO](t, rec); got.State != pledge.StateSold {
		t.Fatalf("pledge state = %s, want sold", got.State)
	}
}

func TestAPI_PledgeByAsset(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})
	car := f.registerCar(t)

	rec := f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/assets/"+car.AssetID+"/pledge", nil)
	expectError(t, rec, stdhttp.StatusNotFound, "pledge_not_found")

	p := f.pawn(t, car.AssetID, "500000")
	f.clk.AddDays(33)
	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/assets/"+car.AssetID+"/pledge", nil)
	expect(t, rec, stdhttp.StatusOK)
	got := decode[ucpledge.ActivePledge](t, rec)
	if got.PledgeID != p.PledgeID || got.ElapsedPeriods != 1 {
		t.Fatalf("unexpected pledge: %+v", got)
	}
	eqDec(t, "payoff_value", got.PayoffValue, "515000")

	expect(t, f.do(t, "cliente", stdhttp.MethodGet, "/api/assets/"+car.AssetID+"/pledge", nil), stdhttp.StatusForbidden)

	expect(t, f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{"amount": "515000"}), stdhttp.StatusOK)
	rec = f.do(t, session.RoleSeller, stdhttp.MethodGet, "/api/assets/"+car.AssetID+"/pledge", nil)
	expectError(t, rec, stdhttp.StatusNotFound, "pledge_not_found")
}

func TestAPI_MoneyUpperBound(t *testing.T) {
	f := newAPI(t, pledge.Lifecycle{})
	car := f.registerCar(t)
	tooWide := "10000000000000"

	rec := f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges", map[string]any{
		"asset_id": car.AssetID, "principal": tooWide, "monthly_rate": 3, "client": map[string]string{"name": "Ana"},
	})
	er := expectError(t, rec, stdhttp.StatusUnprocessableEntity, codeValidation)
	if !containsFieldMsg(er.Details, "principal", "less than or equal to 9999999999999.99") {
		t.Fatalf("missing bound on principal: %+v", er.Details)
	}

	rec = f.do(t, session.RoleAdmin, stdhttp.MethodPost, "/api/assets", map[string]any{
		"kind": "article", "description": "Anillo", "purchase_price": tooWide,
	})
	er = expectError(t, rec, stdhttp.StatusUnprocessableEntity, codeValidation)
	if !containsFieldMsg(er.Details, "purchase_price", "less than or equal to") {
		t.Fatalf("missing bound on purchase_price: %+v", er.Details)
	}

	rec = f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/assets/"+car.AssetID+"/sale", map[string]any{"price": tooWide})
	expectError(t, rec, stdhttp.StatusUnprocessableEntity, codeValidation)

	p := f.pawn(t, car.AssetID, "9999999999999.99")
	rec = f.do(t, session.RoleSeller, stdhttp.MethodPost, "/api/pledges/"+p.PledgeID+"/payments", map[string]any{"amount": tooWide})
	expectError(t, rec, stdhttp.StatusUnprocessableEntity, codeValidation)
}

func (f apiFixture) registerCar2(t *testing.T) ucasset.AssetDTO {
	t.Helper()
	rec := f.do(t, session.RoleAdmin, stdhttp.MethodPost, "/api/assets", map[string]any{
		"kind":           "article",
		"description":    "Reloj Casio",
		"purchase_price": 80000,
	})
	expect(t, rec, stdhttp.StatusCreated)
	return decode[ucasset.AssetDTO](t, rec)
}
