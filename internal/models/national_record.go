package models

import (
	"fmt"
	"strings"
	"time"
)

// RecordState reports whether a national record carries every required section.
type RecordState string

const (
	RecordComplete   RecordState = "COMPLETE"
	RecordIncomplete RecordState = "INCOMPLETE"
)

// EnablementState is the registry's verdict on whether the person may apply.
type EnablementState string

const (
	EnablementEnabled     EnablementState = "ENABLED"
	EnablementNotEnabled  EnablementState = "NOT_ENABLED"
	EnablementConditioned EnablementState = "CONDITIONED"
)

// DocumentType distinguishes national ids from passports.
type DocumentType string

const (
	DocumentCedula   DocumentType = "CEDULA"
	DocumentPassport DocumentType = "PASSPORT"
)

// PopulationType separates applicants still in school from graduates.
type PopulationType string

const (
	PopulationSchoolAge    PopulationType = "SCHOOL_AGE"
	PopulationNonSchoolAge PopulationType = "NON_SCHOOL_AGE"
)

const (
	DefaultNationality = "ECUATORIANA"
	birthDateLayout    = "2006-01-02"
	minPriorGrade      = 0.0
	maxPriorGrade      = 10.0
)

// Incompleteness reasons reported by ValidateCompleteness.
const (
	ReasonMissingIdentity = "missing basic identity data"
	ReasonMissingContact  = "missing contact data"
	ReasonMissingLocation = "missing residence location"
)

// Location is the applicant's residence.
type Location struct {
	Province     string `json:"province"`
	Canton       string `json:"canton"`
	Parish       string `json:"parish"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Street       string `json:"street,omitempty"`
}

// AcademicOrigin describes the secondary school the applicant comes from.
type AcademicOrigin struct {
	Institution     string   `json:"institution"`
	InstitutionType string   `json:"institution_type"`
	Grade           *float64 `json:"grade,omitempty"`
	HonorRoll       bool     `json:"honor_roll"`
}

// Disability holds the health ministry registration, if any.
type Disability struct {
	Card       string `json:"card"`
	Type       string `json:"type"`
	Percentage int    `json:"percentage"`
}

// NationalRecord is the verified registry entry for a person. Identification
// never changes after creation.
type NationalRecord struct {
	Identification     string          `json:"identification"`
	DocumentType       DocumentType    `json:"document_type"`
	FirstNames         string          `json:"first_names"`
	LastNames          string          `json:"last_names"`
	Nationality        string          `json:"nationality"`
	BirthDate          string          `json:"birth_date,omitempty"`
	Sex                string          `json:"sex,omitempty"`
	Gender             string          `json:"gender,omitempty"`
	SelfIdentification string          `json:"self_identification,omitempty"`
	Age                *int            `json:"age,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Email              string          `json:"email,omitempty"`
	Location           Location        `json:"location"`
	Academic           AcademicOrigin  `json:"academic"`
	HomologatedTitle   bool            `json:"homologated_title"`
	Disability         *Disability     `json:"disability,omitempty"`
	PopulationType     PopulationType  `json:"population_type,omitempty"`
	State              RecordState     `json:"state"`
	Enablement         EnablementState `json:"enablement"`
	PreviousSeat       bool            `json:"previous_seat"`
	StateReason        string          `json:"state_reason,omitempty"`
	PopulationNote     string          `json:"population_note,omitempty"`
	PreviousSeatNote   string          `json:"previous_seat_note,omitempty"`
	RegisteredAt       time.Time       `json:"registered_at"`
}

// NewNationalRecord creates an INCOMPLETE record. Identifications made only of
// digits are national ids, anything else is treated as a passport.
func NewNationalRecord(identification, firstNames, lastNames string, now time.Time) (*NationalRecord, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return nil, validationError("identification is required")
	}
	docType := DocumentPassport
	if isDigits(identification) {
		docType = DocumentCedula
	}
	return &NationalRecord{
		Identification: identification,
		DocumentType:   docType,
		FirstNames:     strings.TrimSpace(firstNames),
		LastNames:      strings.TrimSpace(lastNames),
		Nationality:    DefaultNationality,
		State:          RecordIncomplete,
		Enablement:     EnablementNotEnabled,
		RegisteredAt:   now.UTC(),
	}, nil
}

// CompletePersonal records birth date, sex and ethnic self-identification.
func (r *NationalRecord) CompletePersonal(birthDate, sex, selfIdentification string, now time.Time) error {
	dob, err := time.Parse(birthDateLayout, strings.TrimSpace(birthDate))
	if err != nil {
		return validationError("birth date must use YYYY-MM-DD")
	}
	r.BirthDate = dob.Format(birthDateLayout)
	r.Sex = strings.ToUpper(strings.TrimSpace(sex))
	if r.Sex == "HOMBRE" || r.Sex == "MALE" {
		r.Gender = "MASCULINO"
	} else {
		r.Gender = "FEMENINO"
	}
	r.SelfIdentification = strings.ToUpper(strings.TrimSpace(selfIdentification))
	age := AgeAt(dob, now)
	r.Age = &age
	return nil
}

// CompleteLocation records the residence.
func (r *NationalRecord) CompleteLocation(loc Location) {
	r.Location = Location{
		Province:     strings.TrimSpace(loc.Province),
		Canton:       strings.TrimSpace(loc.Canton),
		Parish:       strings.TrimSpace(loc.Parish),
		Neighborhood: strings.TrimSpace(loc.Neighborhood),
		Street:       strings.TrimSpace(loc.Street),
	}
}

// CompleteContact records phone and a lower-cased email.
func (r *NationalRecord) CompleteContact(phone, email string) {
	r.Phone = strings.TrimSpace(phone)
	r.Email = strings.ToLower(strings.TrimSpace(email))
}

// CompleteAcademic records the school of origin. The grade is on a 0-10 scale.
func (r *NationalRecord) CompleteAcademic(institution, institutionType string, grade *float64, honorRoll bool) error {
	if grade != nil && (*grade < minPriorGrade || *grade > maxPriorGrade) {
		return validationError(fmt.Sprintf("prior grade must be between %.0f and %.0f", minPriorGrade, maxPriorGrade))
	}
	r.Academic = AcademicOrigin{
		Institution:     strings.TrimSpace(institution),
		InstitutionType: strings.ToUpper(strings.TrimSpace(institutionType)),
		HonorRoll:       honorRoll,
	}
	if grade != nil {
		g := *grade
		r.Academic.Grade = &g
	}
	// A zero grade means no title yet.
	r.PopulationType = PopulationSchoolAge
	if grade != nil && *grade > 0 {
		r.PopulationType = PopulationNonSchoolAge
	}
	return nil
}

// RegisterDisability records the disability card.
func (r *NationalRecord) RegisterDisability(card, kind string, percentage int) error {
	if percentage < 0 || percentage > 100 {
		return validationError("disability percentage must be between 0 and 100")
	}
	r.Disability = &Disability{
		Card:       strings.TrimSpace(card),
		Type:       strings.ToUpper(strings.TrimSpace(kind)),
		Percentage: percentage,
	}
	return nil
}

// MarkPreviousSeat flags a seat accepted in an earlier period, which conditions
// the record until the academic status is lifted.
func (r *NationalRecord) MarkPreviousSeat(accepted bool, period string) {
	r.PreviousSeat = accepted
	if !accepted {
		r.PreviousSeatNote = ""
		return
	}
	r.Enablement = EnablementConditioned
	r.PreviousSeatNote = fmt.Sprintf("holds an accepted seat in %s; the process is conditioned on lifting the academic status", period)
}

// ValidateCompleteness checks identity, contact, location and academic data in
// that order and stops at the first gap.
func (r *NationalRecord) ValidateCompleteness() bool {
	switch {
	case r.Identification == "" || r.FirstNames == "" || r.LastNames == "":
		return r.markIncomplete(ReasonMissingIdentity)
	case r.Phone == "" || r.Email == "":
		return r.markIncomplete(ReasonMissingContact)
	case r.Location.Province == "":
		return r.markIncomplete(ReasonMissingLocation)
	}

	r.State = RecordComplete
	r.StateReason = ""
	if r.Enablement != EnablementConditioned {
		r.Enablement = EnablementEnabled
	}
	return true
}

func (r *NationalRecord) markIncomplete(reason string) bool {
	r.State = RecordIncomplete
	r.StateReason = reason
	return false
}

// ValidateHomologation reports whether the secondary title is usable. Foreign
// titles need a homologation by the education ministry.
func (r *NationalRecord) ValidateHomologation() bool {
	if r.Nationality == DefaultNationality {
		return r.PriorGrade() > 0
	}
	if r.HomologatedTitle {
		return true
	}
	r.PopulationNote = "foreign title requires homologation by the education ministry"
	return false
}

// IsComplete reports whether the record passed validation.
func (r *NationalRecord) IsComplete() bool {
	return r.State == RecordComplete
}

// PriorGrade returns the academic grade or zero when absent.
func (r *NationalRecord) PriorGrade() float64 {
	if r.Academic.Grade == nil {
		return 0
	}
	return *r.Academic.Grade
}

// FullName joins first and last names.
func (r *NationalRecord) FullName() string {
	return strings.TrimSpace(r.FirstNames + " " + r.LastNames)
}

// AgeAt returns whole years between dob and now. The year only counts once the
// birthday has passed.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
