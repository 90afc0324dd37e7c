package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) AppointmentRepository { return &repoPG{pool: pool} }

const appointmentCols = `id, provider_id, patient_name, start_time, end_time, kind, status,
	min_duration_minutes, max_duration_minutes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ProviderID, &a.PatientName, &a.Span.Start, &a.Span.End,
		&a.Kind, &a.Status, &a.MinDurationMinutes, &a.MaxDurationMinutes,
		&a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, provider_id, patient_name, start_time, end_time,
			kind, status, min_duration_minutes, max_duration_minutes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.ProviderID, a.PatientName, a.Span.Start, a.Span.End,
		a.Kind, a.Status, a.MinDurationMinutes, a.MaxDurationMinutes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointment SET provider_id=$2, patient_name=$3, start_time=$4, end_time=$5,
			kind=$6, status=$7, min_duration_minutes=$8, max_duration_minutes=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ProviderID, a.PatientName, a.Span.Start, a.Span.End,
		a.Kind, a.Status, a.MinDurationMinutes, a.MaxDurationMinutes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE provider_id = $1
		ORDER BY start_time LIMIT $2 OFFSET $3`, providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByProviderAndRange returns bookings intersecting [from, to), the
// snapshot the conflict engine checks against.
func (r *repoPG) ListByProviderAndRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE provider_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time`, providerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
