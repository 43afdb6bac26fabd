package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = (*PgRepository)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool, q: pool}
}

const (
	doctorColumns  = `id, name, phone_number, email, password, specialization, experience, rating, availability`
	patientColumns = `id, name, phone_number, email, password, age, medical_history, appointments`
)

// Helpers

func scanDoctor(row pgx.Row) (Doctor, bool, error) {
	var d Doctor
	var availability []byte

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.PhoneNumber,
		&d.Email,
		&d.Password,
		&d.Specialization,
		&d.Experience,
		&d.Rating,
		&availability,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Doctor{}, false, nil
		}
		return Doctor{}, false, err
	}

	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &d.Availability); err != nil {
			return Doctor{}, false, fmt.Errorf("decode availability for %s: %w", d.ID, err)
		}
	}
	return d, true, nil
}

func scanPatient(row pgx.Row) (Patient, bool, error) {
	var p Patient
	var history, appointments []byte

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.PhoneNumber,
		&p.Email,
		&p.Password,
		&p.Age,
		&history,
		&appointments,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Patient{}, false, nil
		}
		return Patient{}, false, err
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.MedicalHistory); err != nil {
			return Patient{}, false, fmt.Errorf("decode medical history for %s: %w", p.ID, err)
		}
	}
	if len(appointments) > 0 {
		if err := json.Unmarshal(appointments, &p.Appointments); err != nil {
			return Patient{}, false, fmt.Errorf("decode appointments for %s: %w", p.ID, err)
		}
	}
	return p, true, nil
}

func (r *PgRepository) queryDoctors(ctx context.Context, sql string, args ...any) ([]Doctor, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, _, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func encodeDoctor(d Doctor) ([]byte, error) {
	availability := d.Availability
	if availability == nil {
		availability = Availability{}
	}
	return json.Marshal(availability)
}

func encodePatient(p Patient) (history, appointments []byte, err error) {
	h := p.MedicalHistory
	if h == nil {
		h = []Specialization{}
	}
	a := p.Appointments
	if a == nil {
		a = []Appointment{}
	}

	if history, err = json.Marshal(h); err != nil {
		return nil, nil, err
	}
	if appointments, err = json.Marshal(a); err != nil {
		return nil, nil, err
	}
	return history, appointments, nil
}

// Interface methods

func (r *PgRepository) GetDoctor(ctx context.Context, id string) (Doctor, bool, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

// GetPatient locks the row when called inside WithinTx so that the
// conflict check and the following replace see the same appointments.
func (r *PgRepository) GetPatient(ctx context.Context, id string) (Patient, bool, error) {
	sql := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id = $1
	`
	if r.inTx {
		sql += ` FOR UPDATE`
	}
	return scanPatient(r.q.QueryRow(ctx, sql, id))
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return r.queryDoctors(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY seq
	`)
}

func (r *PgRepository) ListDoctorsBySpecialization(ctx context.Context, spec Specialization) ([]Doctor, error) {
	return r.queryDoctors(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE specialization = $1
		ORDER BY seq
	`, spec)
}

func (r *PgRepository) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, _, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d Doctor) error {
	availability, err := encodeDoctor(d)
	if err != nil {
		return fmt.Errorf("encode doctor %s: %w", d.ID, err)
	}

	tag, err := r.q.Exec(ctx, `
		INSERT INTO doctors (`+doctorColumns+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO NOTHING
	`, d.ID, d.Name, d.PhoneNumber, d.Email, d.Password, d.Specialization, d.Experience, d.Rating, availability)
	if err != nil {
		return fmt.Errorf("insert doctor %s: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("doctor %s: %w", d.ID, ErrDuplicateID)
	}
	return nil
}

func (r *PgRepository) CreatePatient(ctx context.Context, p Patient) error {
	history, appointments, err := encodePatient(p)
	if err != nil {
		return fmt.Errorf("encode patient %s: %w", p.ID, err)
	}

	tag, err := r.q.Exec(ctx, `
		INSERT INTO patients (`+patientColumns+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.Name, p.PhoneNumber, p.Email, p.Password, p.Age, history, appointments)
	if err != nil {
		return fmt.Errorf("insert patient %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient %s: %w", p.ID, ErrDuplicateID)
	}
	return nil
}

func (r *PgRepository) ReplaceDoctor(ctx context.Context, d Doctor) error {
	availability, err := encodeDoctor(d)
	if err != nil {
		return fmt.Errorf("encode doctor %s: %w", d.ID, err)
	}

	_, err = r.q.Exec(ctx, `
		UPDATE doctors
		SET name = $2,
		    phone_number = $3,
		    email = $4,
		    password = $5,
		    specialization = $6,
		    experience = $7,
		    rating = $8,
		    availability = $9,
		    updated_at = now()
		WHERE id = $1
	`, d.ID, d.Name, d.PhoneNumber, d.Email, d.Password, d.Specialization, d.Experience, d.Rating, availability)
	if err != nil {
		return fmt.Errorf("replace doctor %s: %w", d.ID, err)
	}
	return nil
}

func (r *PgRepository) ReplacePatient(ctx context.Context, p Patient) error {
	history, appointments, err := encodePatient(p)
	if err != nil {
		return fmt.Errorf("encode patient %s: %w", p.ID, err)
	}

	_, err = r.q.Exec(ctx, `
		UPDATE patients
		SET name = $2,
		    phone_number = $3,
		    email = $4,
		    password = $5,
		    age = $6,
		    medical_history = $7,
		    appointments = $8,
		    updated_at = now()
		WHERE id = $1
	`, p.ID, p.Name, p.PhoneNumber, p.Email, p.Password, p.Age, history, appointments)
	if err != nil {
		return fmt.Errorf("replace patient %s: %w", p.ID, err)
	}
	return nil
}

func (r *PgRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PgRepository{pool: r.pool, q: tx, inTx: true})
	})
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
