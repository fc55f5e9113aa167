package student

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"registration-service/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int64) (*Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCNIC(ctx context.Context, cnic string) (bool, error)
	// RunInTx calls fn with a Repository bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

type repository struct {
	db bun.IDB
}

// NewRepository builds a Repository over idb. Query metrics come from the
// hook installed on the bun.DB.
func NewRepository(idb bun.IDB) Repository {
	return &repository{db: idb}
}

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)
	if err != nil {
		if detail, ok := db.UniqueViolation(err); ok {
			return nil, duplicateFromDetail(detail, err)
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	students := make([]Student, 0)
	if err := r.db.NewSelect().Model(&students).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *repository) ExistsByCNIC(ctx context.Context, cnic string) (bool, error) {
	return r.exists(ctx, "cnic", cnic)
}

func (r *repository) exists(ctx context.Context, column, value string) (bool, error) {
	return r.db.NewSelect().
		Model((*Student)(nil)).
		Where("? = ?", bun.Ident(column), value).
		Exists(ctx)
}

func (r *repository) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &repository{db: tx})
	})
}

// duplicateFromDetail maps a unique violation to the conflicting field. The
// detail is a constraint name on PostgreSQL and "table.column" on SQLite.
func duplicateFromDetail(detail string, cause error) error {
	switch {
	case strings.Contains(detail, "cnic"):
		return &DuplicateError{Field: FieldCNIC}
	case strings.Contains(detail, "email"):
		return &DuplicateError{Field: FieldEmail}
	default:
		return cause
	}
}
