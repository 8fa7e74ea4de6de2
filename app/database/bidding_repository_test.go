package database

import (
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestApplyChanges_InsertsNewRecords(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))
	now := time.Now()

	changes, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Agency: "SESAB", Object: "Aquisição de medicamentos", Status: "Aberta"},
		{Number: "002/2024", Agency: "SEC", Object: "Material escolar", Status: "Em andamento"},
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	if len(changes) != 2 {
		t.Fatalf("Expected 2 changes, got %d", len(changes))
	}
	for _, c := range changes {
		if c.Kind != ChangeNew {
			t.Errorf("Expected kind %q, got %q", ChangeNew, c.Kind)
		}
	}

	b, err := repo.GetByNumber("001/2024")
	if err != nil {
		t.Fatal(err)
	}
	if b == nil {
		t.Fatal("Expected bidding 001/2024 to be stored")
	}
	if b.Status != "Aberta" {
		t.Errorf("Expected status 'Aberta', got '%s'", b.Status)
	}
	if b.Agency != "SESAB" {
		t.Errorf("Expected agency 'SESAB', got '%s'", b.Agency)
	}
}

func TestApplyChanges_UnchangedStatusIsNoOp(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))

	first := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	if _, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "Aberta"},
	}, first); err != nil {
		t.Fatal(err)
	}

	changes, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "Aberta"},
	}, first.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("Expected no changes for identical status, got %d", len(changes))
	}

	b, err := repo.GetByNumber("001/2024")
	if err != nil {
		t.Fatal(err)
	}
	if !b.CheckedAt.Equal(first) {
		t.Errorf("Expected checked_at untouched (%v), got %v", first, b.CheckedAt)
	}
}

func TestApplyChanges_UpdatesStatusAndTimestamp(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))

	first := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	if _, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Agency: "SESAB", Status: "Aberta"},
	}, first); err != nil {
		t.Fatal(err)
	}

	second := first.Add(24 * time.Hour)
	changes, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Agency: "SESAB", Status: "Homologada"},
	}, second)
	if err != nil {
		t.Fatal(err)
	}

	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}
	if changes[0].Kind != ChangeUpdated {
		t.Errorf("Expected kind %q, got %q", ChangeUpdated, changes[0].Kind)
	}
	if changes[0].OldStatus != "Aberta" || changes[0].NewStatus != "Homologada" {
		t.Errorf("Expected old/new status Aberta/Homologada, got %s/%s", changes[0].OldStatus, changes[0].NewStatus)
	}

	b, err := repo.GetByNumber("001/2024")
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != "Homologada" {
		t.Errorf("Expected status 'Homologada', got '%s'", b.Status)
	}
	if !b.CheckedAt.Equal(second) {
		t.Errorf("Expected checked_at %v, got %v", second, b.CheckedAt)
	}
}

func TestApplyChanges_StatusComparisonIsExact(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))
	now := time.Now()

	if _, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "Aberta"},
	}, now); err != nil {
		t.Fatal(err)
	}

	// Case and whitespace differences count as changes; the portal's
	// strings are never normalized.
	changes, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "ABERTA "},
	}, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change for differently-cased status, got %d", len(changes))
	}
}

func TestApplyChanges_RollsBackWholeBatchOnError(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))
	now := time.Now()

	// The empty number violates the CHECK constraint after two valid
	// inserts; none of the three may survive.
	_, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "Aberta"},
		{Number: "002/2024", Status: "Aberta"},
		{Number: "", Status: "Aberta"},
	}, now)
	if err == nil {
		t.Fatal("Expected error for invalid batch")
	}

	count, err := repo.GetCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected empty table after rollback, got %d rows", count)
	}
}

func TestListCheckedSince(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))

	old := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	if _, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "Aberta"},
	}, old); err != nil {
		t.Fatal(err)
	}

	recent := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if _, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "002/2024", Status: "Aberta"},
		{Number: "003/2024", Status: "Em andamento"},
	}, recent); err != nil {
		t.Fatal(err)
	}

	biddings, err := repo.ListCheckedSince(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if len(biddings) != 2 {
		t.Fatalf("Expected 2 biddings checked since March, got %d", len(biddings))
	}
	// Newest first
	if biddings[0].Number != "003/2024" {
		t.Errorf("Expected newest bidding first, got '%s'", biddings[0].Number)
	}
}

func TestDeleteAll(t *testing.T) {
	repo := NewBiddingRepository(newTestDB(t))

	if _, err := repo.ApplyChanges([]BiddingUpdate{
		{Number: "001/2024", Status: "Aberta"},
		{Number: "002/2024", Status: "Aberta"},
	}, time.Now()); err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.DeleteAll()
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted)
	}

	count, err := repo.GetCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected empty table, got %d rows", count)
	}
}
