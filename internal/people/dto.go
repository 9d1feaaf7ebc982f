package people

import "time"

type PersonResponse struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	AcdcEmail      *string   `json:"acdc_email"`
	PersonalEmail  *string   `json:"personal_email"`
	Phone          *string   `json:"phone"`
	Department     string    `json:"department"`
	Subteam        *string   `json:"subteam"`
	Position       *string   `json:"position"`
	Status         string    `json:"status"`
	TimeCommitment *int      `json:"time_commitment"`
	Timezone       *string   `json:"timezone"`
	ReportsTo      *string   `json:"reports_to"`
	StartDate      string    `json:"start_date"`
	EndDate        *string   `json:"end_date"`
	IsActiveMember bool      `json:"is_active_member"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MatchCandidate is one of several records sharing a name, returned so the
// caller can retry with the unique email.
type MatchCandidate struct {
	ID         int64   `json:"id"`
	FullName   string  `json:"full_name"`
	AcdcEmail  *string `json:"acdc_email"`
	Department string  `json:"department"`
	Position   *string `json:"position"`
}

type AmbiguousMatchDetails struct {
	Count   int              `json:"count"`
	Matches []MatchCandidate `json:"matches"`
}

type DeletedResponse struct {
	Message string         `json:"message"`
	Person  PersonResponse `json:"person"`
}

type ListQuery struct {
	Search   string
	Ordering string
}

type Filter struct {
	Department string
	Status     string
}

// OrderBy is one validated ordering column.
type OrderBy struct {
	Column string
	Desc   bool
}

type SearchQuery struct {
	Search string
	Order  []OrderBy
}

func ToResponses(people []*Person) []PersonResponse {
	out := make([]PersonResponse, len(people))
	for i, p := range people {
		out[i] = p.ToResponse()
	}
	return out
}
