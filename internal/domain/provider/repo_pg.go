package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Provider Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const providerCols = `id, name, specialty, active, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO provider (id, name, specialty, active)
		VALUES ($1,$2,$3,$4)`,
		p.ID, p.Name, p.Specialty, p.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.pool.QueryRow(ctx, `SELECT `+providerCols+` FROM provider WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Provider) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE provider SET name=$2, specialty=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Specialty, p.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM provider WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM provider`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+providerCols+` FROM provider ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Availability Repository ===========

type availabilityRepoPG struct{ pool *pgxpool.Pool }

func NewAvailabilityRepoPG(pool *pgxpool.Pool) AvailabilityRepository {
	return &availabilityRepoPG{pool: pool}
}

func (r *availabilityRepoPG) GetWeekly(ctx context.Context, providerID uuid.UUID) (WeeklyAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM provider_availability WHERE provider_id = $1`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weekly := make(WeeklyAvailability)
	for rows.Next() {
		var weekday, startMin, endMin int
		if err := rows.Scan(&weekday, &startMin, &endMin); err != nil {
			return nil, err
		}
		weekly[time.Weekday(weekday)] = DailyAvailability{
			Start: TimeOfDay{Hour: startMin / 60, Minute: startMin % 60},
			End:   TimeOfDay{Hour: endMin / 60, Minute: endMin % 60},
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	breakRows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute, label
		FROM provider_break WHERE provider_id = $1
		ORDER BY weekday, start_minute`, providerID)
	if err != nil {
		return nil, err
	}
	defer breakRows.Close()

	for breakRows.Next() {
		var weekday, startMin, endMin int
		var label string
		if err := breakRows.Scan(&weekday, &startMin, &endMin, &label); err != nil {
			return nil, err
		}
		day, ok := weekly[time.Weekday(weekday)]
		if !ok {
			// Break row for a weekday without a working window; skip it
			// rather than invent availability.
			continue
		}
		day.Breaks = append(day.Breaks, BreakInterval{
			Start: TimeOfDay{Hour: startMin / 60, Minute: startMin % 60},
			End:   TimeOfDay{Hour: endMin / 60, Minute: endMin % 60},
			Label: label,
		})
		weekly[time.Weekday(weekday)] = day
	}
	return weekly, breakRows.Err()
}

func (r *availabilityRepoPG) ReplaceWeekly(ctx context.Context, providerID uuid.UUID, weekly WeeklyAvailability) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM provider_break WHERE provider_id = $1`, providerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM provider_availability WHERE provider_id = $1`, providerID); err != nil {
		return err
	}

	for weekday, day := range weekly {
		if _, err := tx.Exec(ctx, `
			INSERT INTO provider_availability (provider_id, weekday, start_minute, end_minute)
			VALUES ($1,$2,$3,$4)`,
			providerID, int(weekday), day.Start.Minutes(), day.End.Minutes()); err != nil {
			return err
		}
		for _, b := range day.Breaks {
			if _, err := tx.Exec(ctx, `
				INSERT INTO provider_break (provider_id, weekday, start_minute, end_minute, label)
				VALUES ($1,$2,$3,$4,$5)`,
				providerID, int(weekday), b.Start.Minutes(), b.End.Minutes(), b.Label); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
