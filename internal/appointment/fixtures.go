package appointment

import (
	"context"
	"errors"
	"fmt"
)

const (
	fixtureDoctorPassword  = "doctor123"
	fixturePatientPassword = "patient123"
)

// FixtureDoctors is the built-in directory of ten doctors, two per
// specialization, each with DefaultAvailability.
func FixtureDoctors() []Doctor {
	type row struct {
		id, name, phone, email string
		spec                   Specialization
		experience             int
		rating                 float64
	}
	rows := []row{
		{"D001", "Dr. Rahul Sharma", "9876543210", "rahul.sharma@aiyush.com", SpecializationArthritis, 15, 4.8},
		{"D002", "Dr. Priya Patel", "9876543211", "priya.patel@aiyush.com", SpecializationArthritis, 12, 4.7},
		{"D003", "Dr. Amit Kumar", "9876543212", "amit.kumar@aiyush.com", SpecializationBrain, 20, 4.9},
		{"D004", "Dr. Sneha Reddy", "9876543213", "sneha.reddy@aiyush.com", SpecializationBrain, 18, 4.8},
		{"D005", "Dr. Rajesh Gupta", "9876543214", "rajesh.gupta@aiyush.com", SpecializationTumor, 22, 4.9},
		{"D006", "Dr. Meera Singh", "9876543215", "meera.singh@aiyush.com", SpecializationTumor, 16, 4.7},
		{"D007", "Dr. Vikram Malhotra", "9876543216", "vikram.malhotra@aiyush.com", SpecializationLungCancer, 25, 5.0},
		{"D008", "Dr. Anjali Desai", "9876543217", "anjali.desai@aiyush.com", SpecializationLungCancer, 19, 4.8},
		{"D009", "Dr. Suresh Iyer", "9876543218", "suresh.iyer@aiyush.com", SpecializationDiabeticRetinopathy, 17, 4.6},
		{"D010", "Dr. Kavita Menon", "9876543219", "kavita.menon@aiyush.com", SpecializationDiabeticRetinopathy, 14, 4.7},
	}

	doctors := make([]Doctor, 0, len(rows))
	for _, r := range rows {
		doctors = append(doctors, Doctor{
			ID:             r.id,
			Name:           r.name,
			PhoneNumber:    r.phone,
			Email:          r.email,
			Password:       fixtureDoctorPassword,
			Specialization: r.spec,
			Experience:     r.experience,
			Availability:   DefaultAvailability(),
			Rating:         r.rating,
		})
	}
	return doctors
}

// FixturePatients is the built-in set of five patients without appointments.
func FixturePatients() []Patient {
	return []Patient{
		{ID: "P001", Name: "Raj Malhotra", PhoneNumber: "9898989801", Email: "raj.malhotra@gmail.com",
			Password: fixturePatientPassword, Age: 45, MedicalHistory: []Specialization{SpecializationArthritis}},
		{ID: "P002", Name: "Anita Shah", PhoneNumber: "9898989802", Email: "anita.shah@gmail.com",
			Password: fixturePatientPassword, Age: 35, MedicalHistory: []Specialization{SpecializationBrain}},
		{ID: "P003", Name: "Mohan Kumar", PhoneNumber: "9898989803", Email: "mohan.kumar@gmail.com",
			Password: fixturePatientPassword, Age: 55, MedicalHistory: []Specialization{SpecializationTumor, SpecializationLungCancer}},
		{ID: "P004", Name: "Priya Sharma", PhoneNumber: "9898989804", Email: "priya.sharma@gmail.com",
			Password: fixturePatientPassword, Age: 28, MedicalHistory: []Specialization{SpecializationDiabeticRetinopathy}},
		{ID: "P005", Name: "Sanjay Verma", PhoneNumber: "9898989805", Email: "sanjay.verma@gmail.com",
			Password: fixturePatientPassword, Age: 50, MedicalHistory: []Specialization{SpecializationGoiter}},
	}
}

// SeedFixtures inserts the fixture directory. Records that already exist are
// skipped, so seeding is repeatable.
func SeedFixtures(ctx context.Context, repo Repository) error {
	for _, d := range FixtureDoctors() {
		if err := repo.CreateDoctor(ctx, d); err != nil && !errors.Is(err, ErrDuplicateID) {
			return fmt.Errorf("seed doctor %s: %w", d.ID, err)
		}
	}
	for _, p := range FixturePatients() {
		if err := repo.CreatePatient(ctx, p); err != nil && !errors.Is(err, ErrDuplicateID) {
			return fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
	}
	return nil
}
