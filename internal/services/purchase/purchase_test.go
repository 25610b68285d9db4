package purchase

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/pgtestutil"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/ledger"
)

type fakeGateway struct {
	nextID string
	err    error

	gotAmount   int64
	gotMetadata map[string]string
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amountCents int64, metadata map[string]string) (PaymentIntent, error) {
	g.gotAmount = amountCents
	g.gotMetadata = metadata

	if g.err != nil {
		return PaymentIntent{}, g.err
	}
	return PaymentIntent{ID: g.nextID, ClientSecret: "cs_" + g.nextID}, nil
}

func newTestService(t *testing.T, gw Gateway) (*Service, *ledger.Service, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	ledgerSvc := ledger.New(db)

	return New(ledgerSvc, gw, 10), ledgerSvc, db
}

func seedUser(t *testing.T, db *sql.DB, id uint64, balance int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, balance) VALUES ($1, $2)`, id, balance)
	require.NoError(t, err)
}

func TestPurchase_InitiateAndSucceed(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{nextID: "pi_happy"}
	svc, ledgerSvc, db := newTestService(t, gw)
	seedUser(t, db, 1, 0)

	ctx := context.Background()

	receipt, err := svc.Initiate(ctx, 1, 50)
	require.NoError(t, err)
	require.Equal(t, "pi_happy", receipt.IntentID)
	require.Equal(t, "cs_pi_happy", receipt.ClientSecret)
	require.NotEmpty(t, receipt.EntryID)

	// 50 coins at 10 cents each.
	require.Equal(t, int64(500), gw.gotAmount)
	require.Equal(t, "1", gw.gotMetadata["user_id"])

	// No coins before reconciliation.
	bal, err := ledgerSvc.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), bal)

	require.NoError(t, svc.OnPaymentSucceeded(ctx, "pi_happy"))

	bal, err = ledgerSvc.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(50), bal)

	// Redelivered success is a no-op, not a second credit.
	require.NoError(t, svc.OnPaymentSucceeded(ctx, "pi_happy"))

	bal, err = ledgerSvc.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(50), bal)

	// A late conflicting failure is rejected.
	err = svc.OnPaymentFailed(ctx, "pi_happy")
	require.ErrorIs(t, err, ledger.ErrAlreadyResolved)
}

func TestPurchase_InitiateAndFail(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{nextID: "pi_declined"}
	svc, ledgerSvc, db := newTestService(t, gw)
	seedUser(t, db, 1, 0)

	ctx := context.Background()

	_, err := svc.Initiate(ctx, 1, 50)
	require.NoError(t, err)

	require.NoError(t, svc.OnPaymentFailed(ctx, "pi_declined"))

	bal, err := ledgerSvc.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), bal)

	hist, err := ledgerSvc.History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, entries.StatusFailed, hist[0].Status)
}

func TestPurchase_GatewayDown_RecordsNothing(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: ErrGatewayUnavailable}
	svc, ledgerSvc, db := newTestService(t, gw)
	seedUser(t, db, 1, 0)

	ctx := context.Background()

	_, err := svc.Initiate(ctx, 1, 50)
	require.ErrorIs(t, err, ErrGatewayUnavailable)

	hist, err := ledgerSvc.History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Empty(t, hist)
}

func TestPurchase_InvalidCoinCount(t *testing.T) {
	t.Parallel()

	svc, _, db := newTestService(t, &fakeGateway{nextID: "pi_never"})
	seedUser(t, db, 1, 0)

	_, err := svc.Initiate(context.Background(), 1, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestPurchase_UnknownIntent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, &fakeGateway{})

	err := svc.OnPaymentSucceeded(context.Background(), "pi_foreign")
	require.ErrorIs(t, err, entries.ErrEntryNotFound)
}

func TestHTTPGateway_CreatePaymentIntent(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/payment_intents", r.URL.Path)
			require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"pi_123","client_secret":"cs_123"}`))
		}))
		defer srv.Close()

		gw := NewHTTPGateway(srv.URL, "sk_test")

		intent, err := gw.CreatePaymentIntent(context.Background(), 500, map[string]string{"user_id": "1"})
		require.NoError(t, err)
		require.Equal(t, "pi_123", intent.ID)
		require.Equal(t, "cs_123", intent.ClientSecret)
	})

	t.Run("server_error_is_unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		gw := NewHTTPGateway(srv.URL, "sk_test")

		_, err := gw.CreatePaymentIntent(context.Background(), 500, nil)
		require.ErrorIs(t, err, ErrGatewayUnavailable)
	})

	t.Run("rejection_is_not_unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"amount too small"}`))
		}))
		defer srv.Close()

		gw := NewHTTPGateway(srv.URL, "sk_test")

		_, err := gw.CreatePaymentIntent(context.Background(), 1, nil)
		require.Error(t, err)
		require.False(t, errors.Is(err, ErrGatewayUnavailable))
	})
}
