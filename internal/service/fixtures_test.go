package service

import (
	"context"
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	"courtbooking/internal/repository"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var errStoreDown = errors.New("store unavailable")

func testConfig() *config.Config {
	return config.Default()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(t *testing.T, text string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(db.DateLayout, text, testConfig().Location())
	if err != nil {
		t.Fatalf("bad test date %q: %v", text, err)
	}
	return d
}

// faultStore wraps the memory store, counts calls and fails the operations it is
// told to. Keys are "Op" or "Op:Tab".
type faultStore struct {
	*repository.MemoryStore

	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int

	// afterRead, when set, runs after every successful read.
	afterRead func(repository.Range)
}

func newFaultStore() *faultStore {
	return &faultStore{MemoryStore: repository.NewMemoryStore(), fail: map[string]error{}, calls: map[string]int{}}
}

func (f *faultStore) failOn(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[key] = err
}

func (f *faultStore) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *faultStore) check(op, tab string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.calls[op+":"+tab]++
	if err, ok := f.fail[op+":"+tab]; ok {
		return err
	}
	return f.fail[op]
}

func (f *faultStore) ReadRows(ctx context.Context, rng repository.Range) ([][]string, error) {
	if err := f.check("ReadRows", rng.Tab); err != nil {
		return nil, err
	}
	rows, err := f.MemoryStore.ReadRows(ctx, rng)
	if err == nil && f.afterRead != nil {
		f.afterRead(rng)
	}
	return rows, err
}

func (f *faultStore) WriteRows(ctx context.Context, rng repository.Range, rows [][]string) error {
	if err := f.check("WriteRows", rng.Tab); err != nil {
		return err
	}
	return f.MemoryStore.WriteRows(ctx, rng, rows)
}

func (f *faultStore) AppendRow(ctx context.Context, rng repository.Range, row []string) (int, error) {
	if err := f.check("AppendRow", rng.Tab); err != nil {
		return 0, err
	}
	return f.MemoryStore.AppendRow(ctx, rng, row)
}

func (f *faultStore) AppendRows(ctx context.Context, rng repository.Range, rows [][]string) error {
	if err := f.check("AppendRows", rng.Tab); err != nil {
		return err
	}
	return f.MemoryStore.AppendRows(ctx, rng, rows)
}

func (f *faultStore) ClearRows(ctx context.Context, rng repository.Range) error {
	if err := f.check("ClearRows", rng.Tab); err != nil {
		return err
	}
	return f.MemoryStore.ClearRows(ctx, rng)
}

func (f *faultStore) UpdateCell(ctx context.Context, tab string, row, col int, value string) error {
	if err := f.check("UpdateCell", tab); err != nil {
		return err
	}
	return f.MemoryStore.UpdateCell(ctx, tab, row, col, value)
}

func (f *faultStore) EnsureTabsExist(ctx context.Context, names []string) error {
	if err := f.check("EnsureTabsExist", ""); err != nil {
		return err
	}
	return f.MemoryStore.EnsureTabsExist(ctx, names)
}

// fixture is a fully wired set of services over one fault store with header rows
// already in place.
type fixture struct {
	cfg          *config.Config
	store        *faultStore
	reservations *ReservationService
	reconcile    *ReconcileService
	archive      *ArchiveService
	availability *AvailabilityService
	setup        *SetupService
	notifier     *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	store := newFaultStore()
	store.Seed(cfg.BookingsSheet, [][]string{LedgerHeader})
	store.Seed(cfg.RequestsSheet, [][]string{QueueHeader})
	store.Seed(cfg.BookingsArchiveSheet, [][]string{LedgerHeader})
	store.Seed(cfg.RequestsArchiveSheet, [][]string{QueueHeader})
	store.Seed(cfg.DashboardSheet, nil)

	logger := quietLogger()
	notifier := &recordingNotifier{}
	reservations := NewReservationService(cfg, store, logger)
	return &fixture{
		cfg:          cfg,
		store:        store,
		reservations: reservations,
		reconcile:    NewReconcileService(cfg, store, reservations, notifier, logger),
		archive:      NewArchiveService(cfg, store, reservations, logger),
		availability: NewAvailabilityService(cfg, store, reservations, logger),
		setup:        NewSetupService(cfg, store, logger),
		notifier:     notifier,
	}
}

// ledger returns the data rows of the live ledger.
func (f *fixture) ledger() [][]string {
	return f.store.Tab(f.cfg.BookingsSheet)[1:]
}

func (f *fixture) seedLedger(rows ...[]string) {
	f.store.Seed(f.cfg.BookingsSheet, append([][]string{LedgerHeader}, rows...))
}

func (f *fixture) seedRequests(rows ...[]string) {
	f.store.Seed(f.cfg.RequestsSheet, append([][]string{QueueHeader}, rows...))
}

// marker returns the status cell of a request row (1-based position).
func (f *fixture) marker(row int) string {
	rows := f.store.Tab(f.cfg.RequestsSheet)
	if row-1 >= len(rows) || len(rows[row-1]) < entities.RequestMarkerColumn {
		return ""
	}
	return rows[row-1][entities.RequestMarkerColumn-1]
}

func booked(date, slot, court, name string) []string {
	return []string{date, slot, court, name, db.DefaultContact, db.DefaultContact, db.StatusBooked.Text(), "2024-06-01 08:00:00", ""}
}

func cancelled(date, slot, court, name string) []string {
	return []string{date, slot, court, name, db.DefaultContact, db.DefaultContact, db.StatusCancelled.Text(), "2024-06-01 08:00:00", ""}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entities.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n entities.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) notifications() []entities.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Notification(nil), r.sent...)
}
