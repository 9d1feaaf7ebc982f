package people

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-directory/internal"
	personDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/person"
	"github.com/frahmantamala/hr-directory/internal/core/events"
)

const humanResources = "Human Resources"

// orderable maps client ordering names to columns.
var orderable = map[string]string{
	"full_name":  "full_name",
	"start_date": "start_date",
	"department": "department",
	"position":   "position",
	"created_at": "created_at",
}

var defaultOrder = []OrderBy{{Column: "created_at", Desc: true}}

type RepositoryAPI interface {
	Finder
	Transaction(ctx context.Context, fn func(repo RepositoryAPI) error) error
	Create(ctx context.Context, person *personDatamodel.Person) error
	Update(ctx context.Context, person *personDatamodel.Person) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*personDatamodel.Person, error)
	Search(ctx context.Context, q SearchQuery) ([]*personDatamodel.Person, error)
	Filter(ctx context.Context, f Filter, order []OrderBy) ([]*personDatamodel.Person, error)
	FindByDepartmentFold(ctx context.Context, department string, order []OrderBy) ([]*personDatamodel.Person, error)
	EmailTaken(ctx context.Context, column, email string, excludeID int64) (bool, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, in *PersonInput) (*Person, error) {
	if err := in.RequireKeys(requiredOnReplace...); err != nil {
		return nil, err
	}

	p := NewPerson()
	in.ApplyTo(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		if err := checkEmailsAvailable(ctx, repo, p); err != nil {
			return err
		}
		row := ToDataModel(p)
		if err := repo.Create(ctx, row); err != nil {
			return fmt.Errorf("create person: %w", err)
		}
		*p = *FromDataModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person created", "person_id", p.ID)
	s.publish(ctx, EventPersonCreated, p)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Person, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]*Person, error) {
	rows, err := s.repo.Search(ctx, SearchQuery{
		Search: strings.TrimSpace(q.Search),
		Order:  ParseOrdering(q.Ordering),
	})
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return FromDataModelSlice(rows), nil
}

// Update replaces (partial=false) or patches (partial=true) the person with id.
func (s *Service) Update(ctx context.Context, id int64, in *PersonInput, partial bool) (*Person, error) {
	if !partial {
		if err := in.RequireKeys(requiredOnReplace...); err != nil {
			return nil, err
		}
	}

	var updated *Person
	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		row, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = applyUpdate(ctx, repo, FromDataModel(row), in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person updated", "person_id", updated.ID, "partial", partial)
	s.publish(ctx, EventPersonUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	var deleted *Person
	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		row, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deleted = FromDataModel(row)
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "person deleted", "person_id", id)
	s.publish(ctx, EventPersonDeleted, deleted)
	return nil
}

// FilterDirectory matches department and status exactly, ANDed when both are
// given. At least one is required.
func (s *Service) FilterDirectory(ctx context.Context, department, status string) ([]*Person, error) {
	f := Filter{Department: strings.TrimSpace(department), Status: strings.TrimSpace(status)}
	if f.Department == "" && f.Status == "" {
		return nil, internal.NewValidationError(
			"At least one filter parameter (department or status) is required.",
			internal.ErrCodeRequiresFilter,
		)
	}

	rows, err := s.repo.Filter(ctx, f, ParseOrdering(""))
	if err != nil {
		return nil, fmt.Errorf("filter people: %w", err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) ListHumanResources(ctx context.Context) ([]*Person, error) {
	rows, err := s.repo.FindByDepartmentFold(ctx, humanResources, ParseOrdering(""))
	if err != nil {
		return nil, fmt.Errorf("list human resources: %w", err)
	}
	return FromDataModelSlice(rows), nil
}

// ListByDepartment returns an empty list when department is blank.
func (s *Service) ListByDepartment(ctx context.Context, department string) ([]*Person, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return []*Person{}, nil
	}

	rows, err := s.repo.Filter(ctx, Filter{Department: department}, ParseOrdering(""))
	if err != nil {
		return nil, fmt.Errorf("list department %q: %w", department, err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) DeleteByIdentifier(ctx context.Context, id Identifier) (*Person, error) {
	var deleted *Person
	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		p, err := Resolve(ctx, repo, id)
		if err != nil {
			return err
		}
		deleted = p
		return repo.Delete(ctx, p.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person deleted by identifier", "person_id", deleted.ID)
	s.publish(ctx, EventPersonDeleted, deleted)
	return deleted, nil
}

func (s *Service) UpdateByIdentifier(ctx context.Context, id Identifier, in *PersonInput) (*Person, error) {
	var updated *Person
	err := s.repo.Transaction(ctx, func(repo RepositoryAPI) error {
		p, err := Resolve(ctx, repo, id)
		if err != nil {
			return err
		}
		updated, err = applyUpdate(ctx, repo, p, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "person updated by identifier", "person_id", updated.ID)
	s.publish(ctx, EventPersonUpdated, updated)
	return updated, nil
}

// applyUpdate patches p, validates the resulting record and saves it.
func applyUpdate(ctx context.Context, repo RepositoryAPI, p *Person, in *PersonInput) (*Person, error) {
	in.ApplyTo(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkEmailsAvailable(ctx, repo, p); err != nil {
		return nil, err
	}

	row := ToDataModel(p)
	if err := repo.Update(ctx, row); err != nil {
		return nil, fmt.Errorf("update person %d: %w", p.ID, err)
	}
	return FromDataModel(row), nil
}

func checkEmailsAvailable(ctx context.Context, repo RepositoryAPI, p *Person) error {
	var errs []internal.ValidationError
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"acdc_email", p.AcdcEmail},
		{"personal_email", p.PersonalEmail},
	} {
		if field.value == nil {
			continue
		}
		taken, err := repo.EmailTaken(ctx, field.column, *field.value, p.ID)
		if err != nil {
			return fmt.Errorf("check %s uniqueness: %w", field.column, err)
		}
		if taken {
			errs = append(errs, internal.ValidationError{
				Field:   field.column,
				Message: "A person with this " + field.column + " already exists.",
				Code:    string(internal.ErrCodeEmailConflict),
			})
		}
	}

	if len(errs) > 0 {
		return internal.NewConflictError("Email address already in use", internal.ErrCodeEmailConflict).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}
	return nil
}

// ParseOrdering reads "field[,-field]" keeping only known fields. The result
// always ends with id so equal keys sort deterministically.
func ParseOrdering(ordering string) []OrderBy {
	var order []OrderBy
	seen := make(map[string]bool)
	for _, part := range strings.Split(ordering, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		column, ok := orderable[strings.TrimPrefix(part, "-")]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		order = append(order, OrderBy{Column: column, Desc: desc})
	}
	if len(order) == 0 {
		order = append(order, defaultOrder...)
	}
	return append(order, OrderBy{Column: "id", Desc: order[0].Desc})
}

func (s *Service) publish(ctx context.Context, eventType string, p *Person) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, NewPersonEvent(ctx, eventType, p)); err != nil {
		s.logger.WarnContext(ctx, "directory event handler failed", "event_type", eventType, "person_id", p.ID, "error", err)
	}
}
