package report

import (
    "bufio"
    "context"
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5/pgxpool"
)

func TestStore_SaveGetList(t *testing.T) {
    store, db := setupTestStore(t)
    ctx := context.Background()

    run := Build(finishedWorld(t), Meta{Label: "store-test", Seed: 3, Capacity: 4})
    t.Cleanup(func() {
        db.Exec(context.Background(), `DELETE FROM runs WHERE id = $1`, run.ID.String())
    })

    if err := store.SaveRun(ctx, run); err != nil {
        t.Fatalf("save run: %v", err)
    }

    got, err := store.GetRun(ctx, run.ID)
    if err != nil {
        t.Fatalf("get run: %v", err)
    }
    if got.ID != run.ID || got.Label != "store-test" || got.Seed != 3 {
        t.Fatalf("unexpected header: %+v", got.Header)
    }
    if got.Summary != run.Summary {
        t.Fatalf("summary mismatch: %+v vs %+v", got.Summary, run.Summary)
    }
    if len(got.Vehicles) != 1 || len(got.Requests) != 1 {
        t.Fatalf("expected 1 vehicle and 1 request, got %d and %d", len(got.Vehicles), len(got.Requests))
    }
    if got.Requests[0].VehicleID == nil || *got.Requests[0].VehicleID != 0 {
        t.Fatalf("expected vehicle id to round-trip")
    }

    list, err := store.ListRuns(ctx, 50)
    if err != nil {
        t.Fatalf("list runs: %v", err)
    }
    found := false
    for _, h := range list {
        if h.ID == run.ID {
            found = true
        }
    }
    if !found {
        t.Fatalf("expected run %s in list", run.ID)
    }
}

func TestStore_GetMissingRun(t *testing.T) {
    store, _ := setupTestStore(t)
    _, err := store.GetRun(context.Background(), uuid.New())
    if !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
    t.Helper()
    dsn := os.Getenv("SHARESIM_DB_DSN")
    if dsn == "" {
        t.Skip("SHARESIM_DB_DSN not set; skipping integration test")
    }

    ctx := context.Background()
    db, err := pgxpool.New(ctx, dsn)
    if err != nil {
        t.Fatalf("connect db: %v", err)
    }
    t.Cleanup(db.Close)

    if err := applyMigrations(ctx, db); err != nil {
        t.Fatalf("apply migrations: %v", err)
    }
    return NewStore(db), db
}

func applyMigrations(ctx context.Context, db *pgxpool.Pool) error {
    root, err := repoRoot()
    if err != nil {
        return err
    }
    content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
    if err != nil {
        return err
    }
    for _, stmt := range splitSQL(stripSQLComments(string(content))) {
        if _, err := db.Exec(ctx, stmt); err != nil {
            return err
        }
    }
    return nil
}

func repoRoot() (string, error) {
    dir, err := os.Getwd()
    if err != nil {
        return "", err
    }
    for i := 0; i < 6; i++ {
        if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
            return dir, nil
        }
        parent := filepath.Dir(dir)
        if parent == dir {
            break
        }
        dir = parent
    }
    return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
    var b strings.Builder
    scanner := bufio.NewScanner(strings.NewReader(input))
    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line == "" || strings.HasPrefix(line, "--") {
            continue
        }
        b.WriteString(scanner.Text())
        b.WriteString("\n")
    }
    return b.String()
}

func splitSQL(input string) []string {
    var out []string
    for _, p := range strings.Split(input, ";") {
        if stmt := strings.TrimSpace(p); stmt != "" {
            out = append(out, stmt)
        }
    }
    return out
}
