package entry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HazemSalah29/bracketesports-sub001/internal/infra/pgtestutil"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/entries"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/participations"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/tournaments"
	"github.com/HazemSalah29/bracketesports-sub001/internal/repos/users"
	"github.com/HazemSalah29/bracketesports-sub001/internal/services/ledger"
)

const defaultLeadTime = time.Hour

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	return New(db, Policy{RefundLeadTime: defaultLeadTime}), db
}

func seedUser(t *testing.T, db *sql.DB, id uint64, balance int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, balance) VALUES ($1, $2)`, id, balance)
	require.NoError(t, err)
}

type tournamentSeed struct {
	fee      int64
	max      int
	startsIn time.Duration
	status   tournaments.Status
}

func seedTournament(t *testing.T, db *sql.DB, s tournamentSeed) string {
	t.Helper()

	if s.status == "" {
		s.status = tournaments.StatusRegistering
	}

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO tournaments (id, name, entry_fee, max_participants, start_time, status)
		VALUES ($1, 'Test Cup', $2, $3, $4, $5)
	`, id, s.fee, s.max, time.Now().Add(s.startsIn), string(s.status))
	require.NoError(t, err)

	return id
}

func balanceOf(t *testing.T, db *sql.DB, userID uint64) int64 {
	t.Helper()

	var bal int64
	err := db.QueryRow(`SELECT balance FROM users WHERE id = $1`, userID).Scan(&bal)
	require.NoError(t, err)

	return bal
}

func TestJoin_DebitsFeeAndReservesSlot(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 2, startsIn: 24 * time.Hour})

	ctx := context.Background()

	p, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)
	require.Equal(t, tid, p.TournamentID)
	require.Equal(t, uint64(1), p.UserID)
	require.True(t, p.Refundable)

	require.Equal(t, int64(60), balanceOf(t, db, 1))

	current, max, err := svc.Occupancy(ctx, tid)
	require.NoError(t, err)
	require.Equal(t, 1, current)
	require.Equal(t, 2, max)

	// The fee shows up as one completed negative entry.
	hist, err := ledger.New(db).History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, entries.KindTournamentEntry, hist[0].Kind)
	require.Equal(t, int64(-40), hist[0].Amount)
	require.NotNil(t, hist[0].TournamentID)
	require.Equal(t, tid, *hist[0].TournamentID)
}

func TestJoin_InsufficientBalance_RollsBackSlot(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 30)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 2, startsIn: 24 * time.Hour})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.ErrorIs(t, err, users.ErrInsufficientBalance)

	// The slot reservation was part of the same transaction and rolled back.
	current, _, err := svc.Occupancy(ctx, tid)
	require.NoError(t, err)
	require.Equal(t, 0, current)

	require.Equal(t, int64(30), balanceOf(t, db, 1))

	hist, err := ledger.New(db).History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Empty(t, hist)
}

func TestJoin_Full(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	seedUser(t, db, 2, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 1, startsIn: 24 * time.Hour})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)

	_, err = svc.Join(ctx, 2, tid)
	require.ErrorIs(t, err, tournaments.ErrTournamentFull)

	require.Equal(t, int64(100), balanceOf(t, db, 2))
}

func TestJoin_Duplicate(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 1, startsIn: 24 * time.Hour})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)

	// A member of a now-full tournament is told "already joined", not "full".
	_, err = svc.Join(ctx, 1, tid)
	require.ErrorIs(t, err, participations.ErrAlreadyJoined)

	require.Equal(t, int64(60), balanceOf(t, db, 1))
}

func TestJoin_NotOpen(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)

	ctx := context.Background()

	t.Run("live_status", func(t *testing.T) {
		tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 8, startsIn: 24 * time.Hour, status: tournaments.StatusLive})

		_, err := svc.Join(ctx, 1, tid)
		require.ErrorIs(t, err, ErrTournamentNotOpen)
	})

	t.Run("start_time_passed", func(t *testing.T) {
		tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 8, startsIn: -time.Minute})

		_, err := svc.Join(ctx, 1, tid)
		require.ErrorIs(t, err, ErrTournamentNotOpen)
	})

	t.Run("missing_tournament", func(t *testing.T) {
		_, err := svc.Join(ctx, 1, uuid.NewString())
		require.ErrorIs(t, err, tournaments.ErrTournamentNotFound)
	})
}

func TestJoin_ZeroFee_NoLedgerEntry(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 0)
	tid := seedTournament(t, db, tournamentSeed{fee: 0, max: 8, startsIn: 24 * time.Hour})

	ctx := context.Background()

	p, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)
	require.True(t, p.Refundable)

	require.Equal(t, int64(0), balanceOf(t, db, 1))

	hist, err := ledger.New(db).History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Empty(t, hist)
}

func TestLeave_RefundsInsideWindow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 2, startsIn: 24 * time.Hour})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)
	require.Equal(t, int64(60), balanceOf(t, db, 1))

	res, err := svc.Leave(ctx, 1, tid)
	require.NoError(t, err)
	require.Equal(t, int64(40), res.Refunded)

	require.Equal(t, int64(100), balanceOf(t, db, 1))

	current, _, err := svc.Occupancy(ctx, tid)
	require.NoError(t, err)
	require.Equal(t, 0, current)

	// Fee and refund are separate immutable entries, not a deletion.
	hist, err := ledger.New(db).History(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, entries.KindTournamentRefund, hist[0].Kind)
	require.Equal(t, int64(40), hist[0].Amount)

	require.NoError(t, ledger.New(db).VerifyBalance(ctx, 1))
}

func TestLeave_TooLate(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	// Starts inside the refund lead time.
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 2, startsIn: 30 * time.Minute})

	ctx := context.Background()

	p, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)
	require.False(t, p.Refundable)

	_, err = svc.Leave(ctx, 1, tid)
	require.ErrorIs(t, err, ErrTooLateToLeave)

	// Fee kept, slot kept.
	require.Equal(t, int64(60), balanceOf(t, db, 1))

	current, _, err := svc.Occupancy(ctx, tid)
	require.NoError(t, err)
	require.Equal(t, 1, current)
}

func TestLeave_ZeroFee_UntilStart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 0)
	// Inside the paid lead time, but free entries can leave until start.
	tid := seedTournament(t, db, tournamentSeed{fee: 0, max: 8, startsIn: 30 * time.Minute})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)

	res, err := svc.Leave(ctx, 1, tid)
	require.NoError(t, err)
	require.Equal(t, int64(0), res.Refunded)
}

func TestLeave_NotParticipating(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 2, startsIn: 24 * time.Hour})

	_, err := svc.Leave(context.Background(), 1, tid)
	require.ErrorIs(t, err, participations.ErrNotParticipating)
}

func TestJoinLeaveJoin_Cycle(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 1, startsIn: 24 * time.Hour})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)

	_, err = svc.Leave(ctx, 1, tid)
	require.NoError(t, err)

	_, err = svc.Join(ctx, 1, tid)
	require.NoError(t, err)

	require.Equal(t, int64(60), balanceOf(t, db, 1))

	current, _, err := svc.Occupancy(ctx, tid)
	require.NoError(t, err)
	require.Equal(t, 1, current)
}

// A freed slot can be taken by another user: the "last slot handoff" flow.
func TestLeave_FreesSlotForAnotherUser(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	seedUser(t, db, 1, 100)
	seedUser(t, db, 2, 100)
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: 1, startsIn: 24 * time.Hour})

	ctx := context.Background()

	_, err := svc.Join(ctx, 1, tid)
	require.NoError(t, err)

	_, err = svc.Join(ctx, 2, tid)
	require.ErrorIs(t, err, tournaments.ErrTournamentFull)

	_, err = svc.Leave(ctx, 1, tid)
	require.NoError(t, err)

	_, err = svc.Join(ctx, 2, tid)
	require.NoError(t, err)

	require.Equal(t, int64(100), balanceOf(t, db, 1))
	require.Equal(t, int64(60), balanceOf(t, db, 2))
}

func TestJoin_Concurrent_ExactlyCapacityWins(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)

	const (
		workers  = 6
		capacity = 3
	)

	for i := 1; i <= workers; i++ {
		seedUser(t, db, uint64(i), 100)
	}
	tid := seedTournament(t, db, tournamentSeed{fee: 40, max: capacity, startsIn: 24 * time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, full := 0, 0

	wg.Add(workers)
	for i := 1; i <= workers; i++ {
		go func(userID uint64) {
			defer wg.Done()

			_, err := svc.Join(context.Background(), userID, tid)
			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				success++
			case errors.Is(err, tournaments.ErrTournamentFull):
				full++
			default:
				t.Errorf("user %d: unexpected error: %v", userID, err)
			}
		}(uint64(i))
	}
	wg.Wait()

	require.Equal(t, capacity, success)
	require.Equal(t, workers-capacity, full)

	current, _, err := svc.Occupancy(context.Background(), tid)
	require.NoError(t, err)
	require.Equal(t, capacity, current)

	// Exactly the winners paid.
	var paid int64
	err = db.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries`).Scan(&paid)
	require.NoError(t, err)
	require.Equal(t, int64(-40*capacity), paid)
}
