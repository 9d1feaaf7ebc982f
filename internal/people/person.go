package people

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/core/common/validation"
	personDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/person"
)

const DateLayout = "2006-01-02"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusOnLeave  = "on_leave"
)

const (
	PositionVolunteer = "Volunteer"
	PositionDirector  = "Director"
	PositionAdmin     = "Admin"
)

const (
	MinTimeCommitment = 1
	MaxTimeCommitment = 50
	MaxPhoneLength    = 30
)

var (
	Statuses  = []string{StatusActive, StatusInactive, StatusOnLeave}
	Positions = []string{PositionVolunteer, PositionDirector, PositionAdmin}
)

type Person struct {
	ID             int64
	FullName       string
	AcdcEmail      *string
	PersonalEmail  *string
	Phone          *string
	Department     string
	Subteam        *string
	Position       *string
	Status         string
	TimeCommitment *int
	Timezone       *string
	ReportsTo      *string
	StartDate      time.Time
	EndDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewPerson() *Person {
	return &Person{Status: StatusActive}
}

func (p *Person) FirstName() string {
	parts := strings.Fields(p.FullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func (p *Person) LastName() string {
	parts := strings.Fields(p.FullName)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

func (p *Person) IsActiveMember() bool {
	return p.Status == StatusActive && p.EndDate == nil
}

// Validate checks every field rule against the whole record, so partial
// updates are judged on their result rather than on the changed keys alone.
func (p *Person) Validate() *internal.AppError {
	v := validation.NewValidator()

	v.Field("full_name", p.FullName).Required("Full name cannot be empty.").MaxLength(255)
	v.Field("acdc_email", p.AcdcEmail).Email().MaxLength(254)
	v.Field("personal_email", p.PersonalEmail).Email().MaxLength(254)
	v.Field("phone", p.Phone).MaxLength(MaxPhoneLength)
	v.Field("department", p.Department).Required("This field is required.").MaxLength(255)
	v.Field("subteam", p.Subteam).MaxLength(255)
	v.Field("position", p.Position).OneOf(Positions...)
	v.Field("status", p.Status).Required("This field is required.").OneOf(Statuses...)
	v.Field("time_commitment", p.TimeCommitment).
		IntRange(MinTimeCommitment, MaxTimeCommitment, "Time commitment must be between 1 and 50 hours.")
	v.Field("timezone", p.Timezone).MaxLength(100)
	v.Field("reports_to", p.ReportsTo).MaxLength(255)
	v.Field("start_date", p.StartDate).Required("This field is required.")

	if p.AcdcEmail != nil && p.PersonalEmail != nil && strings.EqualFold(*p.AcdcEmail, *p.PersonalEmail) {
		v.Add("personal_email", "Personal email must be different from ACDC email.", internal.ErrCodeDuplicateEmail)
	}

	if p.EndDate != nil && !p.StartDate.IsZero() && p.EndDate.Before(p.StartDate) {
		v.Add("end_date", "End date cannot be before start date.", internal.ErrCodeDateOrder)
	}

	return v.Validate()
}

func (p *Person) ToResponse() PersonResponse {
	resp := PersonResponse{
		ID:             p.ID,
		FullName:       p.FullName,
		FirstName:      p.FirstName(),
		LastName:       p.LastName(),
		AcdcEmail:      p.AcdcEmail,
		PersonalEmail:  p.PersonalEmail,
		Phone:          p.Phone,
		Department:     p.Department,
		Subteam:        p.Subteam,
		Position:       p.Position,
		Status:         p.Status,
		TimeCommitment: p.TimeCommitment,
		Timezone:       p.Timezone,
		ReportsTo:      p.ReportsTo,
		StartDate:      p.StartDate.Format(DateLayout),
		IsActiveMember: p.IsActiveMember(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.EndDate != nil {
		end := p.EndDate.Format(DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func (p *Person) candidate() MatchCandidate {
	return MatchCandidate{
		ID:         p.ID,
		FullName:   p.FullName,
		AcdcEmail:  p.AcdcEmail,
		Department: p.Department,
		Position:   p.Position,
	}
}

func ToDataModel(p *Person) *personDatamodel.Person {
	return &personDatamodel.Person{
		ID:             p.ID,
		FullName:       p.FullName,
		AcdcEmail:      p.AcdcEmail,
		PersonalEmail:  p.PersonalEmail,
		Phone:          p.Phone,
		Department:     p.Department,
		Subteam:        p.Subteam,
		Position:       p.Position,
		Status:         p.Status,
		TimeCommitment: p.TimeCommitment,
		Timezone:       p.Timezone,
		ReportsTo:      p.ReportsTo,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModel(p *personDatamodel.Person) *Person {
	return &Person{
		ID:             p.ID,
		FullName:       p.FullName,
		AcdcEmail:      p.AcdcEmail,
		PersonalEmail:  p.PersonalEmail,
		Phone:          p.Phone,
		Department:     p.Department,
		Subteam:        p.Subteam,
		Position:       p.Position,
		Status:         p.Status,
		TimeCommitment: p.TimeCommitment,
		Timezone:       p.Timezone,
		ReportsTo:      p.ReportsTo,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModelSlice(people []*personDatamodel.Person) []*Person {
	result := make([]*Person, len(people))
	for i, p := range people {
		result[i] = FromDataModel(p)
	}
	return result
}
