package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

var (
	ErrInvalidRole        = errors.New("role must be doctor or patient")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
)

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleDoctor:
		return RoleDoctor, nil
	case RolePatient:
		return RolePatient, nil
	}
	return "", ErrInvalidRole
}

// Authenticator resolves credentials to the id of a doctor or patient.
type Authenticator interface {
	Authenticate(ctx context.Context, phone, password string, role Role) (string, error)
}

// directory is the subset of appointment.Repository the scan needs.
type directory interface {
	ListDoctors(ctx context.Context) ([]appointment.Doctor, error)
	ListPatients(ctx context.Context) ([]appointment.Patient, error)
}

// DirectoryAuthenticator compares the stored plaintext password of every
// record of the role in turn. There is no hashing and no session; it exists
// to keep existing credentials working and is not secure.
type DirectoryAuthenticator struct {
	dir directory
}

func NewDirectoryAuthenticator(dir directory) *DirectoryAuthenticator {
	return &DirectoryAuthenticator{dir: dir}
}

func (a *DirectoryAuthenticator) Authenticate(ctx context.Context, phone, password string, role Role) (string, error) {
	switch role {
	case RoleDoctor:
		doctors, err := a.dir.ListDoctors(ctx)
		if err != nil {
			return "", fmt.Errorf("list doctors: %w", err)
		}
		for _, d := range doctors {
			if d.PhoneNumber == phone && d.Password == password {
				return d.ID, nil
			}
		}
	case RolePatient:
		patients, err := a.dir.ListPatients(ctx)
		if err != nil {
			return "", fmt.Errorf("list patients: %w", err)
		}
		for _, p := range patients {
			if p.PhoneNumber == phone && p.Password == password {
				return p.ID, nil
			}
		}
	default:
		return "", ErrInvalidRole
	}
	return "", ErrInvalidCredentials
}
