package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence boundary for bookings. The
// conflict engine itself never touches storage; the service loads a
// provider's bookings through this interface and hands the snapshot to the
// pure check functions.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByProviderAndRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error)
}
