package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps the directory in process. Records go in and come out
// as copies, so callers can never mutate stored state without a replace.
type MemoryRepository struct {
	mu        sync.RWMutex
	doctors   []Doctor
	doctorIdx map[string]int
	patients  []Patient
	patIdx    map[string]int
	events    []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		doctorIdx: make(map[string]int),
		patIdx:    make(map[string]int),
	}
}

func (r *MemoryRepository) GetDoctor(_ context.Context, id string) (Doctor, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.doctorIdx[id]
	if !ok {
		return Doctor{}, false, nil
	}
	return r.doctors[i].clone(), true, nil
}

func (r *MemoryRepository) GetPatient(_ context.Context, id string) (Patient, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.patIdx[id]
	if !ok {
		return Patient{}, false, nil
	}
	return r.patients[i].clone(), true, nil
}

func (r *MemoryRepository) ListDoctors(_ context.Context) ([]Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, d.clone())
	}
	return out, nil
}

func (r *MemoryRepository) ListDoctorsBySpecialization(_ context.Context, spec Specialization) ([]Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Doctor
	for _, d := range r.doctors {
		if d.Specialization == spec {
			out = append(out, d.clone())
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListPatients(_ context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p.clone())
	}
	return out, nil
}

func (r *MemoryRepository) CreateDoctor(_ context.Context, d Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.doctorIdx[d.ID]; exists {
		return fmt.Errorf("doctor %s: %w", d.ID, ErrDuplicateID)
	}
	r.doctorIdx[d.ID] = len(r.doctors)
	r.doctors = append(r.doctors, d.clone())
	return nil
}

func (r *MemoryRepository) CreatePatient(_ context.Context, p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.patIdx[p.ID]; exists {
		return fmt.Errorf("patient %s: %w", p.ID, ErrDuplicateID)
	}
	r.patIdx[p.ID] = len(r.patients)
	r.patients = append(r.patients, p.clone())
	return nil
}

func (r *MemoryRepository) ReplaceDoctor(_ context.Context, d Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.doctorIdx[d.ID]; ok {
		r.doctors[i] = d.clone()
	}
	return nil
}

func (r *MemoryRepository) ReplacePatient(_ context.Context, p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.patIdx[p.ID]; ok {
		r.patients[i] = p.clone()
	}
	return nil
}

// WithinTx runs fn directly. The scheduling lock provides atomicity, and a
// failed fn may leave earlier replaces applied.
func (r *MemoryRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, r)
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns the recorded event log, oldest first.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]EventLog(nil), r.events...)
}
