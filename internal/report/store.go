// README: Run report store backed by PostgreSQL.
package report

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
    db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
    return &Store{db: db}
}

// SaveRun writes the run header and every outcome row in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
    summary, err := json.Marshal(run.Summary)
    if err != nil {
        return fmt.Errorf("encode summary: %w", err)
    }

    tx, err := s.db.Begin(ctx)
    if err != nil {
        return err
    }
    defer tx.Rollback(ctx)

    b := &pgx.Batch{}
    b.Queue(`
        INSERT INTO runs (id, label, seed, ticks, fleet, sharing, capacity, summary, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
        run.ID.String(), run.Label, run.Seed, run.Ticks, run.Fleet,
        run.Sharing, run.Capacity, summary, run.CreatedAt,
    )
    for _, v := range run.Vehicles {
        b.Queue(`
            INSERT INTO run_vehicles (run_id, vehicle_id, distance_driven, occupancy_ticks, earnings, base_rate, final_rate)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`,
            run.ID.String(), v.VehicleID, v.DistanceDriven, v.OccupancyTicks, v.Earnings, v.BaseRate, v.FinalRate,
        )
    }
    for _, o := range run.Requests {
        delays := o.Delays
        if delays == nil {
            delays = []int{}
        }
        b.Queue(`
            INSERT INTO run_requests (
                run_id, request_id, status, vehicle_id, request_time,
                waiting, in_vehicle, quoted_time, price, retries, delays
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
            run.ID.String(), o.RequestID, o.Status, o.VehicleID, o.RequestTime,
            o.Waiting, o.InVehicle, o.QuotedTime, o.Price, o.Retries, delays,
        )
    }

    br := tx.SendBatch(ctx, b)
    for i := 0; i < b.Len(); i++ {
        if _, err := br.Exec(); err != nil {
            br.Close()
            return fmt.Errorf("save run %s: %w", run.ID, err)
        }
    }
    if err := br.Close(); err != nil {
        return err
    }
    return tx.Commit(ctx)
}

func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
    row := s.db.QueryRow(ctx, `
        SELECT id, label, seed, ticks, fleet, sharing, capacity, summary, created_at
        FROM runs
        WHERE id = $1`, id.String(),
    )
    h, err := scanHeader(row)
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    run := &Run{Header: *h}

    vrows, err := s.db.Query(ctx, `
        SELECT vehicle_id, distance_driven, occupancy_ticks, earnings, base_rate, final_rate
        FROM run_vehicles
        WHERE run_id = $1
        ORDER BY vehicle_id`, id.String(),
    )
    if err != nil {
        return nil, err
    }
    run.Vehicles, err = pgx.CollectRows(vrows, func(row pgx.CollectableRow) (VehicleOutcome, error) {
        var v VehicleOutcome
        err := row.Scan(&v.VehicleID, &v.DistanceDriven, &v.OccupancyTicks, &v.Earnings, &v.BaseRate, &v.FinalRate)
        return v, err
    })
    if err != nil {
        return nil, err
    }

    rrows, err := s.db.Query(ctx, `
        SELECT request_id, status, vehicle_id, request_time, waiting, in_vehicle,
               quoted_time, price, retries, delays
        FROM run_requests
        WHERE run_id = $1
        ORDER BY request_id`, id.String(),
    )
    if err != nil {
        return nil, err
    }
    run.Requests, err = pgx.CollectRows(rrows, func(row pgx.CollectableRow) (RequestOutcome, error) {
        var o RequestOutcome
        err := row.Scan(
            &o.RequestID, &o.Status, &o.VehicleID, &o.RequestTime, &o.Waiting, &o.InVehicle,
            &o.QuotedTime, &o.Price, &o.Retries, &o.Delays,
        )
        return o, err
    })
    if err != nil {
        return nil, err
    }
    return run, nil
}

// ListRuns returns the most recent run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Header, error) {
    rows, err := s.db.Query(ctx, `
        SELECT id, label, seed, ticks, fleet, sharing, capacity, summary, created_at
        FROM runs
        ORDER BY created_at DESC
        LIMIT $1`, limit,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []Header
    for rows.Next() {
        h, err := scanHeader(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *h)
    }
    return out, rows.Err()
}

func scanHeader(row pgx.Row) (*Header, error) {
    var h Header
    var id string
    var summary []byte
    err := row.Scan(&id, &h.Label, &h.Seed, &h.Ticks, &h.Fleet, &h.Sharing, &h.Capacity, &summary, &h.CreatedAt)
    if err != nil {
        return nil, err
    }
    if h.ID, err = uuid.Parse(id); err != nil {
        return nil, fmt.Errorf("parse run id %q: %w", id, err)
    }
    if err := json.Unmarshal(summary, &h.Summary); err != nil {
        return nil, fmt.Errorf("decode summary of run %s: %w", id, err)
    }
    h.CreatedAt = h.CreatedAt.UTC()
    return &h, nil
}
