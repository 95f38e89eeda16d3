package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoempeno-backend/internal/domain/transaction"
	"autoempeno-backend/internal/testutil/transactionmock"
	ucreport "autoempeno-backend/internal/usecase/report"
)

func TestTransactionHandler_Window(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "bare dates cover the whole to day",
			query:    "from=2025-01-01&to=2025-01-10",
			wantFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:     "rfc3339 to is the exact instant",
			query:    "from=2025-01-01T08:00:00Z&to=2025-01-10T12:00:00Z",
			wantFrom: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "offset is normalized to utc",
			query:  "to=2025-01-10T07:00:00-05:00",
			wantTo: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got transaction.Filter
			repo := &transactionmock.Repo{ListFn: func(_ context.Context, f transaction.Filter) ([]transaction.Transaction, error) {
				got = f
				return nil, nil
			}}
			h := NewTransactionHandler(ucreport.NewUsecase(repo), nil)

			e := newEchoWithValidator()
			req := httptest.NewRequest(stdhttp.MethodGet, "/api/transactions?"+tc.query, nil)
			rec := httptest.NewRecorder()
			if err := h.List(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			expect(t, rec, stdhttp.StatusOK)

			if tc.wantFrom.IsZero() {
				if got.From != nil {
					t.Fatalf("from = %v, want nil", got.From)
				}
			} else if got.From == nil || !got.From.Equal(tc.wantFrom) {
				t.Fatalf("from = %v, want %v", got.From, tc.wantFrom)
			}
			if got.To == nil || !got.To.Equal(tc.wantTo) {
				t.Fatalf("to = %v, want %v", got.To, tc.wantTo)
			}
		})
	}
}

func TestTransactionHandler_WindowRejectsInvertedRange(t *testing.T) {
	h := NewTransactionHandler(ucreport.NewUsecase(&transactionmock.Repo{}), nil)
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/api/transactions/stats?from=2025-01-10T12:00:00Z&to=2025-01-10T11:59:59Z", nil)
	rec := httptest.NewRecorder()
	if err := h.Stats(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectError(t, rec, stdhttp.StatusBadRequest, codeBadRequest)
}
