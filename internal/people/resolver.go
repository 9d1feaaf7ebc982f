package people

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/hr-directory/internal"
	personDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/person"
)

// Identifier names a person by an alternate key. Email takes precedence.
type Identifier struct {
	Email    string
	FullName string
}

func NewIdentifier(email, fullName string) Identifier {
	return Identifier{Email: strings.TrimSpace(email), FullName: strings.TrimSpace(fullName)}
}

func (i Identifier) IsEmpty() bool {
	return i.Email == "" && i.FullName == ""
}

// Finder is the read side the resolver needs.
type Finder interface {
	FindByAcdcEmail(ctx context.Context, email string) ([]*personDatamodel.Person, error)
	FindByFullName(ctx context.Context, fullName string) ([]*personDatamodel.Person, error)
}

// Resolve returns the one person matching id. It never writes.
func Resolve(ctx context.Context, finder Finder, id Identifier) (*Person, error) {
	if id.IsEmpty() {
		return nil, internal.NewValidationError("Either email or full_name parameter is required.", internal.ErrCodeMissingIdentifier)
	}

	var (
		rows []*personDatamodel.Person
		err  error
		key  string
	)
	if id.Email != "" {
		key = fmt.Sprintf("email %q", id.Email)
		rows, err = finder.FindByAcdcEmail(ctx, id.Email)
	} else {
		key = fmt.Sprintf("name %q", id.FullName)
		rows, err = finder.FindByFullName(ctx, id.FullName)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve person by %s: %w", key, err)
	}

	switch len(rows) {
	case 0:
		return nil, internal.NewNotFoundError("No person found with "+key+".", internal.ErrCodePersonNotFound)
	case 1:
		return FromDataModel(rows[0]), nil
	}

	details := AmbiguousMatchDetails{Count: len(rows), Matches: make([]MatchCandidate, len(rows))}
	for i, row := range rows {
		details.Matches[i] = FromDataModel(row).candidate()
	}
	return nil, internal.NewConflictError(
		fmt.Sprintf("Multiple people (%d) found with %s. Please use email instead.", len(rows), key),
		internal.ErrCodeAmbiguousMatch,
	).WithDetails(details)
}
