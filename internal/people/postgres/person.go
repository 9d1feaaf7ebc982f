package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/hr-directory/internal"
	personDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/person"
	"github.com/frahmantamala/hr-directory/internal/people"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// searchColumns are matched case-insensitively by GET /people?search=.
var searchColumns = []string{
	"full_name", "department", "subteam", "position", "status", "acdc_email", "personal_email",
}

var emailColumns = map[string]bool{"acdc_email": true, "personal_email": true}

// PersonRepository implements people.RepositoryAPI using GORM
type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) people.RepositoryAPI {
	return &PersonRepository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
func (r *PersonRepository) Transaction(ctx context.Context, fn func(repo people.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PersonRepository{db: tx})
	})
}

func (r *PersonRepository) Create(ctx context.Context, p *personDatamodel.Person) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PersonRepository) Update(ctx context.Context, p *personDatamodel.Person) error {
	return translateError(r.db.WithContext(ctx).Save(p).Error)
}

func (r *PersonRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&personDatamodel.Person{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrPersonNotFound
	}
	return nil
}

func (r *PersonRepository) GetByID(ctx context.Context, id int64) (*personDatamodel.Person, error) {
	var p personDatamodel.Person
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PersonRepository) Search(ctx context.Context, q people.SearchQuery) ([]*personDatamodel.Person, error) {
	query := r.db.WithContext(ctx).Model(&personDatamodel.Person{})

	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		conds := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			conds[i] = fmt.Sprintf(`LOWER(COALESCE(%s, '')) LIKE ? ESCAPE '\'`, col)
			args[i] = pattern
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	var result []*personDatamodel.Person
	err := applyOrder(query, q.Order).Find(&result).Error
	return result, err
}

func (r *PersonRepository) Filter(ctx context.Context, f people.Filter, order []people.OrderBy) ([]*personDatamodel.Person, error) {
	query := r.db.WithContext(ctx).Model(&personDatamodel.Person{})
	if f.Department != "" {
		query = query.Where("department = ?", f.Department)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var result []*personDatamodel.Person
	err := applyOrder(query, order).Find(&result).Error
	return result, err
}

func (r *PersonRepository) FindByDepartmentFold(ctx context.Context, department string, order []people.OrderBy) ([]*personDatamodel.Person, error) {
	query := r.db.WithContext(ctx).Where("LOWER(department) = LOWER(?)", department)

	var result []*personDatamodel.Person
	err := applyOrder(query, order).Find(&result).Error
	return result, err
}

func (r *PersonRepository) FindByAcdcEmail(ctx context.Context, email string) ([]*personDatamodel.Person, error) {
	var result []*personDatamodel.Person
	err := r.db.WithContext(ctx).
		Where("LOWER(acdc_email) = LOWER(?)", email).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *PersonRepository) FindByFullName(ctx context.Context, fullName string) ([]*personDatamodel.Person, error) {
	var result []*personDatamodel.Person
	err := r.db.WithContext(ctx).
		Where("LOWER(full_name) = LOWER(?)", fullName).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

// EmailTaken reports whether another person already uses email in column.
func (r *PersonRepository) EmailTaken(ctx context.Context, column, email string, excludeID int64) (bool, error) {
	if !emailColumns[column] {
		return false, fmt.Errorf("unknown email column %q", column)
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&personDatamodel.Person{}).
		Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), email).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}

func applyOrder(query *gorm.DB, order []people.OrderBy) *gorm.DB {
	for _, o := range order {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	return query
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// translateError maps unique index violations to the email conflict error.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("Email address already in use", internal.ErrCodeEmailConflict).WithCause(err)
	}
	return err
}
