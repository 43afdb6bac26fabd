package records

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/clinic-appointment-engine/internal/appointment"
)

var ErrUnknownKind = errors.New("unknown health record kind")

type Kind string

const (
	KindLabResults    Kind = "lab-results"
	KindVaccinations  Kind = "vaccinations"
	KindPrescriptions Kind = "prescriptions"
	KindMedicalBills  Kind = "medical-bills"
)

var Kinds = []Kind{KindLabResults, KindVaccinations, KindPrescriptions, KindMedicalBills}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type LabParameter struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	IsNormal       bool   `json:"is_normal"`
}

type LabResult struct {
	ID        string         `json:"id"`
	TestName  string         `json:"test_name"`
	Date      time.Time      `json:"date"`
	Category  string         `json:"category"`
	Results   []LabParameter `json:"results"`
	DoctorID  string         `json:"doctor_id"`
	ReportURL string         `json:"report_url,omitempty"`
	Status    string         `json:"status"`
}

type Vaccination struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Date        time.Time  `json:"date"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
	Provider    string     `json:"provider"`
	BatchNumber string     `json:"batch_number,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type Medication struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage"`
	Frequency    string   `json:"frequency"`
	Timing       []string `json:"timing"`
	Instructions string   `json:"instructions,omitempty"`
}

type Prescription struct {
	ID           string       `json:"id"`
	Medications  []Medication `json:"medications"`
	DoctorID     string       `json:"doctor_id"`
	Date         time.Time    `json:"date"`
	DurationDays int          `json:"duration_days"`
	Notes        string       `json:"notes,omitempty"`
	Status       string       `json:"status"`
}

type BillItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
}

type InsuranceClaim struct {
	ID                 string     `json:"id"`
	InsuranceProvider  string     `json:"insurance_provider"`
	PolicyNumber       string     `json:"policy_number"`
	ClaimAmount        float64    `json:"claim_amount"`
	Status             string     `json:"status"`
	SubmissionDate     time.Time  `json:"submission_date"`
	ApprovalDate       *time.Time `json:"approval_date,omitempty"`
	CoveragePercentage float64    `json:"coverage_percentage"`
}

type MedicalBill struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Amount          float64         `json:"amount"`
	Category        string          `json:"category"`
	Status          string          `json:"status"`
	InsuranceClaim  *InsuranceClaim `json:"insurance_claim,omitempty"`
	ItemizedCharges []BillItem      `json:"itemized_charges"`
	DoctorID        string          `json:"doctor_id,omitempty"`
}

// HealthRecords is the read-only record set of one patient.
type HealthRecords struct {
	LabResults    []LabResult
	Vaccinations  []Vaccination
	Prescriptions []Prescription
	MedicalBills  []MedicalBill
}

// Store hands out sample health records. A patient's records are generated
// on first access and then returned unchanged for the life of the store.
type Store struct {
	now func() time.Time

	mu      sync.Mutex
	records map[string]*HealthRecords
}

func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:     now,
		records: make(map[string]*HealthRecords),
	}
}

// Get returns the records of the given kind as a JSON-ready slice.
func (s *Store) Get(patient appointment.Patient, kind Kind) (any, error) {
	r := s.For(patient)
	switch kind {
	case KindLabResults:
		return r.LabResults, nil
	case KindVaccinations:
		return r.Vaccinations, nil
	case KindPrescriptions:
		return r.Prescriptions, nil
	case KindMedicalBills:
		return r.MedicalBills, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (s *Store) For(patient appointment.Patient) HealthRecords {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[patient.ID]; ok {
		return *r
	}
	r := generate(patient, s.now())
	s.records[patient.ID] = r
	return *r
}

// generate builds the sample set. The faker is seeded from the patient id so
// the same patient gets the same values across restarts; dates are relative
// to now.
func generate(patient appointment.Patient, now time.Time) *HealthRecords {
	faker := gofakeit.New(seedFor(patient.ID))
	primary, secondary := treatingDoctors(patient)
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	daysAhead := func(n int) *time.Time {
		t := now.AddDate(0, 0, n)
		return &t
	}

	wbc := float64(faker.Number(40, 120)) / 10
	cholesterol := faker.Number(150, 240)
	labs := []LabResult{
		{
			ID: "LR001", TestName: "Complete Blood Count", Date: daysAgo(7), Category: "blood_test",
			Results: []LabParameter{
				{ID: "P1", Name: "Hemoglobin", Value: fmt.Sprintf("%.1f", float64(faker.Number(135, 175))/10), Unit: "g/dL", ReferenceRange: "13.5-17.5", IsNormal: true},
				{ID: "P2", Name: "WBC Count", Value: fmt.Sprintf("%.1f", wbc), Unit: "K/µL", ReferenceRange: "4.5-11.0", IsNormal: wbc >= 4.5 && wbc <= 11.0},
				{ID: "P3", Name: "Platelets", Value: fmt.Sprintf("%d", faker.Number(150, 450)), Unit: "K/µL", ReferenceRange: "150-450", IsNormal: true},
			},
			DoctorID: primary, ReportURL: "report1.pdf", Status: "completed",
		},
		{
			ID: "LR002", TestName: "Lipid Profile", Date: daysAgo(14), Category: "blood_test",
			Results: []LabParameter{
				{ID: "P4", Name: "Total Cholesterol", Value: fmt.Sprintf("%d", cholesterol), Unit: "mg/dL", ReferenceRange: "<200", IsNormal: cholesterol < 200},
				{ID: "P5", Name: "HDL", Value: fmt.Sprintf("%d", faker.Number(40, 70)), Unit: "mg/dL", ReferenceRange: ">40", IsNormal: true},
			},
			DoctorID: secondary, ReportURL: "report2.pdf", Status: labStatus(cholesterol < 200),
		},
	}

	provider := faker.Company() + " Hospital"
	vaccinations := []Vaccination{
		{ID: "V001", Name: "COVID-19 Booster", Date: daysAgo(90), DueDate: daysAhead(275), Status: "completed",
			Provider: provider, BatchNumber: "BT" + faker.DigitN(6), Notes: "Booster shot"},
		{ID: "V002", Name: "Influenza", Date: daysAgo(180), DueDate: daysAhead(185), Status: "upcoming",
			Provider: provider, BatchNumber: "FL" + faker.DigitN(6), Notes: "Annual flu shot"},
	}

	prescriptions := []Prescription{
		{
			ID: "PR001", DoctorID: primary, Date: daysAgo(5), DurationDays: 7, Notes: "Complete the full course", Status: "active",
			Medications: []Medication{
				{ID: "M001", Name: "Amoxicillin", Dosage: "500mg", Frequency: "Twice daily", Timing: []string{"Morning", "Night"}, Instructions: "Take with food"},
			},
		},
		{
			ID: "PR002", DoctorID: secondary, Date: daysAgo(15), DurationDays: 5, Status: "completed",
			Medications: []Medication{
				{ID: "M002", Name: "Paracetamol", Dosage: "650mg", Frequency: "As needed", Timing: []string{"When needed"}, Instructions: "Take for fever or pain"},
				{ID: "M003", Name: "Cetirizine", Dosage: "10mg", Frequency: "Once daily", Timing: []string{"Night"}, Instructions: "Take before bedtime"},
			},
		},
	}

	consultation := []BillItem{
		{ID: "BI001", Description: "Consultation Fee", Amount: 1500, Quantity: 1, Category: "consultation"},
		{ID: "BI002", Description: "Blood Test", Amount: float64(faker.Number(5, 15) * 100), Quantity: 1, Category: "laboratory"},
	}
	medication := []BillItem{
		{ID: "BI003", Description: "Antibiotics", Amount: 800, Quantity: 1, Category: "medication"},
		{ID: "BI004", Description: "Pain Medication", Amount: 200, Quantity: 2, Category: "medication"},
	}
	consultationTotal := total(consultation)
	bills := []MedicalBill{
		{
			ID: "B001", Date: daysAgo(10), Amount: consultationTotal, Category: "consultation", Status: "under_insurance",
			ItemizedCharges: consultation, DoctorID: primary,
			InsuranceClaim: &InsuranceClaim{
				ID:                 "IC001",
				InsuranceProvider:  faker.Company(),
				PolicyNumber:       "POL" + faker.DigitN(6),
				ClaimAmount:        consultationTotal * 0.8,
				Status:             "under_review",
				SubmissionDate:     daysAgo(9),
				CoveragePercentage: 80,
			},
		},
		{
			ID: "B002", Date: daysAgo(20), Amount: total(medication), Category: "medication", Status: "paid",
			ItemizedCharges: medication, DoctorID: secondary,
		},
	}

	return &HealthRecords{
		LabResults:    labs,
		Vaccinations:  vaccinations,
		Prescriptions: prescriptions,
		MedicalBills:  bills,
	}
}

// treatingDoctors picks the first two distinct doctors the patient has seen,
// falling back to the first fixture doctors.
func treatingDoctors(patient appointment.Patient) (string, string) {
	ids := []string{}
	for _, a := range patient.Appointments {
		if len(ids) == 2 {
			break
		}
		if len(ids) == 0 || ids[0] != a.DoctorID {
			ids = append(ids, a.DoctorID)
		}
	}
	ids = append(ids, "D001", "D002")
	if ids[1] == ids[0] {
		ids[1] = ids[2]
	}
	return ids[0], ids[1]
}

func labStatus(normal bool) string {
	if normal {
		return "normal"
	}
	return "abnormal"
}

func total(items []BillItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Amount * float64(it.Quantity)
	}
	return sum
}

func seedFor(patientID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(patientID))
	// 0 asks gofakeit for a random seed
	if s := h.Sum64(); s != 0 {
		return s
	}
	return 1
}
