package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gwskins/GWSkins_Go/internal/database"
	"github.com/gwskins/GWSkins_Go/internal/domain"
)

func startTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	var pgContainer *tcpostgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = tcpostgres.Run(ctx,
			"postgres:15-alpine",
			tcpostgres.WithDatabase("testdb"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(5*time.Second)),
		)
	}()

	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	if pgContainer == nil {
		t.Skip("no container available")
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr, 5, time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// seedUserWithEntries inserts a user, a catalog skin and n inventory entries,
// returning the user id and the entry ids.
func seedUserWithEntries(t *testing.T, pool *pgxpool.Pool, steamID string, price int64, n int) (string, []string) {
	t.Helper()
	ctx := context.Background()

	var userID string
	err := pool.QueryRow(ctx,
		`INSERT INTO users (steam_id, name, trade_url)
		 VALUES ($1, 'tester', 'https://steamcommunity.com/tradeoffer/new/?partner=1&token=abc')
		 RETURNING user_id`, steamID).Scan(&userID)
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}

	var caseID string
	err = pool.QueryRow(ctx,
		`INSERT INTO cases (name) VALUES ('Test Case') RETURNING case_id`).Scan(&caseID)
	if err != nil {
		t.Fatalf("failed to insert case: %v", err)
	}

	var skinID string
	err = pool.QueryRow(ctx,
		`INSERT INTO skins (case_id, name, price, market_hash_name)
		 VALUES ($1, 'AK-47 | Redline', $2, 'AK-47 | Redline (Field-Tested)')
		 RETURNING skin_id`, caseID, price).Scan(&skinID)
	if err != nil {
		t.Fatalf("failed to insert skin: %v", err)
	}

	entryIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var entryID string
		err = pool.QueryRow(ctx,
			`INSERT INTO inventory (user_id, skin_id) VALUES ($1, $2) RETURNING entry_id`,
			userID, skinID).Scan(&entryID)
		if err != nil {
			t.Fatalf("failed to insert inventory entry: %v", err)
		}
		entryIDs = append(entryIDs, entryID)
	}

	return userID, entryIDs
}

func TestSettlementRepository_Integration(t *testing.T) {
	pool := startTestDatabase(t)
	ctx := context.Background()

	repo := NewSettlementRepository(pool)
	users := NewUserRepository(pool)

	t.Run("Liquidation Transaction", func(t *testing.T) {
		userID, entryIDs := seedUserWithEntries(t, pool, "76561198000000001", 1250, 1)

		tx, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}

		ewp, err := tx.GetEntryWithPriceForUpdate(ctx, entryIDs[0])
		if err != nil {
			t.Fatalf("GetEntryWithPriceForUpdate failed: %v", err)
		}
		if ewp.Skin.Price != 1250 {
			t.Errorf("expected price 1250, got %d", ewp.Skin.Price)
		}

		reserved, err := tx.EntryReserved(ctx, entryIDs[0])
		if err != nil {
			t.Fatalf("EntryReserved failed: %v", err)
		}
		if reserved {
			t.Error("expected entry to be unreserved")
		}

		if err := tx.DeleteEntries(ctx, entryIDs); err != nil {
			t.Fatalf("DeleteEntries failed: %v", err)
		}
		if err := tx.CreditBalance(ctx, userID, ewp.Skin.Price); err != nil {
			t.Fatalf("CreditBalance failed: %v", err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}

		u, err := users.GetByID(ctx, userID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if u.Balance != 1250 {
			t.Errorf("expected balance 1250, got %d", u.Balance)
		}

		tx2, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		defer tx2.Rollback(ctx)
		if _, err := tx2.GetEntryWithPriceForUpdate(ctx, entryIDs[0]); err != domain.ErrEntryNotFound {
			t.Errorf("expected ErrEntryNotFound after liquidation, got %v", err)
		}
	})

	t.Run("Reservation And Terminal Transitions", func(t *testing.T) {
		userID, entryIDs := seedUserWithEntries(t, pool, "76561198000000002", 500, 2)

		tx, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		req := &domain.DeliveryRequest{
			UserID:      userID,
			EntryIDs:    entryIDs[:1],
			Destination: "https://steamcommunity.com/tradeoffer/new/?partner=1&token=abc",
		}
		if err := tx.CreateDelivery(ctx, req); err != nil {
			t.Fatalf("CreateDelivery failed: %v", err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		if req.ID == "" {
			t.Fatal("expected delivery id to be set")
		}

		// A pending delivery reserves its entry and leaves the other eligible.
		tx2, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		reserved, err := tx2.EntryReserved(ctx, entryIDs[0])
		if err != nil {
			t.Fatalf("EntryReserved failed: %v", err)
		}
		if !reserved {
			t.Error("expected entry to be reserved by pending delivery")
		}
		eligible, err := tx2.ListEligibleEntriesForUpdate(ctx, userID)
		if err != nil {
			t.Fatalf("ListEligibleEntriesForUpdate failed: %v", err)
		}
		if len(eligible) != 1 || eligible[0].Entry.ID != entryIDs[1] {
			t.Errorf("expected only the unreserved entry to be eligible, got %+v", eligible)
		}
		tx2.Rollback(ctx)

		// pending -> dispatched is a one-shot transition.
		moved, err := repo.MarkDispatched(ctx, req.ID, "prop-integration-1")
		if err != nil {
			t.Fatalf("MarkDispatched failed: %v", err)
		}
		if !moved {
			t.Error("expected MarkDispatched to succeed")
		}
		moved, err = repo.MarkDispatched(ctx, req.ID, "prop-integration-2")
		if err != nil {
			t.Fatalf("MarkDispatched failed: %v", err)
		}
		if moved {
			t.Error("expected second MarkDispatched to be a no-op")
		}

		got, err := repo.GetDeliveryByProposalID(ctx, "prop-integration-1")
		if err != nil {
			t.Fatalf("GetDeliveryByProposalID failed: %v", err)
		}
		if got.ID != req.ID || got.State != domain.DeliveryDispatched {
			t.Errorf("unexpected delivery: %+v", got)
		}

		inflight, err := repo.ListDeliveriesByState(ctx, domain.DeliveryDispatched)
		if err != nil {
			t.Fatalf("ListDeliveriesByState failed: %v", err)
		}
		if len(inflight) != 1 {
			t.Errorf("expected 1 dispatched delivery, got %d", len(inflight))
		}

		// Terminal transition is compare-and-set; the duplicate is a no-op.
		tx3, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		moved, err = tx3.MarkTerminal(ctx, req.ID, domain.DeliveryDispatched, domain.DeliveryFinalized, domain.OutcomeAccepted)
		if err != nil {
			t.Fatalf("MarkTerminal failed: %v", err)
		}
		if !moved {
			t.Error("expected terminal transition to succeed")
		}
		ids, err := tx3.DeliveryEntryIDs(ctx, req.ID)
		if err != nil {
			t.Fatalf("DeliveryEntryIDs failed: %v", err)
		}
		if err := tx3.DeleteEntries(ctx, ids); err != nil {
			t.Fatalf("DeleteEntries failed: %v", err)
		}
		if err := tx3.Commit(ctx); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}

		tx4, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		defer tx4.Rollback(ctx)
		moved, err = tx4.MarkTerminal(ctx, req.ID, domain.DeliveryDispatched, domain.DeliveryReversed, domain.OutcomeDeclined)
		if err != nil {
			t.Fatalf("MarkTerminal failed: %v", err)
		}
		if moved {
			t.Error("expected duplicate terminal transition to be a no-op")
		}

		// The historical association outlives the deleted inventory row.
		final, err := repo.GetDelivery(ctx, req.ID)
		if err != nil {
			t.Fatalf("GetDelivery failed: %v", err)
		}
		if final.State != domain.DeliveryFinalized || final.Outcome != domain.OutcomeAccepted {
			t.Errorf("unexpected final delivery: %+v", final)
		}
		if len(final.EntryIDs) != 1 {
			t.Errorf("expected historical entry association, got %v", final.EntryIDs)
		}
	})

	t.Run("Unknown Proposal", func(t *testing.T) {
		_, err := repo.GetDeliveryByProposalID(ctx, "prop-nonexistent")
		if err != domain.ErrDeliveryNotFound {
			t.Errorf("expected ErrDeliveryNotFound, got %v", err)
		}
	})
}
