package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobtrackr/apiserver/types"
)

const applicationColumns = `id, user_id, job_title, company, location, status, notes, date_applied,
		resume_object_key, resume_filename, resume_content_type, created_at, updated_at`

// ApplicationRepository handles persistence for job applications. Every
// query that touches an existing record carries the single predicate
// (id = $x AND user_id = $y), so a record owned by someone else behaves
// exactly like a record that does not exist.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = $1
		ORDER BY date_applied DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]types.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id, ownerID int) (types.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = $1 AND user_id = $2`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	const query = `
		INSERT INTO applications (user_id, job_title, company, location, status, notes, date_applied, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.UserID,
		app.JobTitle,
		app.Company,
		app.Location,
		app.Status,
		app.Notes,
		app.DateApplied,
		app.CreatedAt,
		app.UpdatedAt,
	).Scan(&app.ID); err != nil {
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app types.Application) (types.Application, error) {
	app.UpdatedAt = time.Now()

	const query = `
		UPDATE applications
		SET job_title = $1,
			company = $2,
			location = $3,
			status = $4,
			notes = $5,
			date_applied = $6,
			updated_at = $7
		WHERE id = $8 AND user_id = $9
		RETURNING ` + applicationColumns
	updated, err := scanApplication(r.db.QueryRowContext(
		ctx,
		query,
		app.JobTitle,
		app.Company,
		app.Location,
		app.Status,
		app.Notes,
		app.DateApplied,
		app.UpdatedAt,
		app.ID,
		app.UserID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return updated, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id, ownerID int) error {
	const query = `DELETE FROM applications WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResume records the object-storage location of an uploaded resume.
func (r *ApplicationRepository) SetResume(ctx context.Context, id, ownerID int, resume types.ResumeAttachment) (types.Application, error) {
	const query = `
		UPDATE applications
		SET resume_object_key = $1,
			resume_filename = $2,
			resume_content_type = $3,
			updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING ` + applicationColumns
	updated, err := scanApplication(r.db.QueryRowContext(
		ctx,
		query,
		resume.ObjectKey,
		resume.Filename,
		resume.ContentType,
		time.Now(),
		id,
		ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return updated, nil
}

// ClearResume detaches the resume from a record.
func (r *ApplicationRepository) ClearResume(ctx context.Context, id, ownerID int) error {
	const query = `
		UPDATE applications
		SET resume_object_key = '',
			resume_filename = '',
			resume_content_type = '',
			updated_at = $1
		WHERE id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (types.Application, error) {
	var app types.Application
	var resume types.ResumeAttachment
	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.JobTitle,
		&app.Company,
		&app.Location,
		&app.Status,
		&app.Notes,
		&app.DateApplied,
		&resume.ObjectKey,
		&resume.Filename,
		&resume.ContentType,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return types.Application{}, err
	}
	if resume.ObjectKey != "" {
		app.Resume = &resume
	}
	return app, nil
}
