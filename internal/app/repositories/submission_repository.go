package repositories

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/db"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/dberrors"
	"github.com/yigit/portfoliohub/internal/pkg/logger"
)

const submissionsTable = "portfolios"

var submissionColumns = []string{
	"id", "student_id", "data", "files", "status", "remark",
	"submitted_at", "faculty_approved_at", "admin_approved_at", "rejected_at", "admin_rejected_at",
	"pdf_url", "created_at", "updated_at",
}

// upsertConflictClause replaces the submitted snapshot and reopens review while
// keeping identity and history timestamps. The previous PDF was rendered from
// the superseded snapshot, so it is cleared.
const upsertConflictClause = "ON CONFLICT (student_id) DO UPDATE SET " +
	"data = EXCLUDED.data, files = EXCLUDED.files, status = EXCLUDED.status, remark = EXCLUDED.remark, " +
	"submitted_at = EXCLUDED.submitted_at, pdf_url = '', updated_at = EXCLUDED.updated_at"

// PostgresSubmissionRepository handles canonical submission database operations
type PostgresSubmissionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSubmissionRepository creates a new PostgresSubmissionRepository
func NewSubmissionRepository(db DBTX) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func encodeSnapshot(sub *models.Submission) (data, files []byte, err error) {
	d := sub.Data
	if d == nil {
		d = map[models.SectionID]json.RawMessage{}
	}
	f := sub.Files
	if f == nil {
		f = map[models.SectionID]models.FileMap{}
	}
	if data, err = json.Marshal(d); err != nil {
		return nil, nil, err
	}
	if files, err = json.Marshal(f); err != nil {
		return nil, nil, err
	}
	return data, files, nil
}

func (r *PostgresSubmissionRepository) upsertQuery(sub *models.Submission) (string, []interface{}, error) {
	data, files, err := encodeSnapshot(sub)
	if err != nil {
		return "", nil, err
	}
	id := sub.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return r.sb.Insert(submissionsTable).
		Columns(submissionColumns...).
		Values(id, sub.StudentID, data, files, string(sub.Status), sub.Remark,
			sub.SubmittedAt, sub.FacultyApprovedAt, sub.AdminApprovedAt, sub.RejectedAt, sub.AdminRejectedAt,
			sub.PDFURL, sub.CreatedAt, sub.UpdatedAt).
		Suffix(upsertConflictClause + " RETURNING " + strings.Join(submissionColumns, ", ")).
		ToSql()
}

// Upsert writes the submitted snapshot for the student and returns the stored row
func (r *PostgresSubmissionRepository) Upsert(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	sql, args, err := r.upsertQuery(sub)
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert submission SQL")
		return nil, dberrors.Wrap("build upsert submission", err)
	}

	stored, err := scanSubmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Str("studentId", sub.StudentID).Msg("Error executing upsert submission query")
		return nil, dberrors.Wrap("upsert submission", err)
	}
	return stored, nil
}

func (r *PostgresSubmissionRepository) getQuery(where squirrel.Sqlizer, forUpdate bool) (string, []interface{}, error) {
	q := r.sb.Select(submissionColumns...).
		From(submissionsTable).
		Where(where).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q.ToSql()
}

func (r *PostgresSubmissionRepository) getOne(ctx context.Context, q pgxQuerier, where squirrel.Sqlizer, forUpdate bool, key string) (*models.Submission, error) {
	sql, args, err := r.getQuery(where, forUpdate)
	if err != nil {
		return nil, dberrors.Wrap("build get submission", err)
	}

	sub, err := scanSubmission(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("portfolio", key)
		}
		logger.Error().Err(err).Str("key", key).Msg("Error scanning submission row")
		return nil, dberrors.Wrap("get submission", err)
	}
	return sub, nil
}

// Get retrieves the student's canonical submission
func (r *PostgresSubmissionRepository) Get(ctx context.Context, studentID string) (*models.Submission, error) {
	return r.getOne(ctx, r.db, squirrel.Eq{"student_id": studentID}, false, studentID)
}

// GetByID retrieves a submission by its portfolio id
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return r.getOne(ctx, r.db, squirrel.Eq{"id": id}, false, id.String())
}

func (r *PostgresSubmissionRepository) updateQuery(sub *models.Submission) (string, []interface{}, error) {
	return r.sb.Update(submissionsTable).
		SetMap(map[string]interface{}{
			"status":              string(sub.Status),
			"remark":              sub.Remark,
			"submitted_at":        sub.SubmittedAt,
			"faculty_approved_at": sub.FacultyApprovedAt,
			"admin_approved_at":   sub.AdminApprovedAt,
			"rejected_at":         sub.RejectedAt,
			"admin_rejected_at":   sub.AdminRejectedAt,
			"pdf_url":             sub.PDFURL,
			"updated_at":          sub.UpdatedAt,
		}).
		Where(squirrel.Eq{"student_id": sub.StudentID}).
		ToSql()
}

// Update locks the student's row for the duration of fn and writes back the review fields
func (r *PostgresSubmissionRepository) Update(ctx context.Context, studentID string, fn UpdateFn) (*models.Submission, error) {
	var result *models.Submission
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := r.getOne(ctx, tx, squirrel.Eq{"student_id": studentID}, true, studentID)
		if err != nil {
			return err
		}

		if err := fn(sub); err != nil {
			return err
		}

		sql, args, err := r.updateQuery(sub)
		if err != nil {
			return dberrors.Wrap("build update submission", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Str("studentId", studentID).Msg("Error executing update submission query")
			return dberrors.Wrap("update submission", err)
		}
		result = sub
		return nil
	})
	if err != nil {
		return nil, dberrors.Wrap("update submission", err)
	}
	return result, nil
}

func (r *PostgresSubmissionRepository) listQueries(filter SubmissionFilter) (string, []interface{}, string, []interface{}, error) {
	countQ := r.sb.Select("COUNT(*)").From(submissionsTable)
	q := r.sb.Select(submissionColumns...).From(submissionsTable)
	if filter.Status != "" {
		countQ = countQ.Where(squirrel.Eq{"status": string(filter.Status)})
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return "", nil, "", nil, err
	}

	q = q.OrderBy("submitted_at DESC NULLS LAST", "student_id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	listSQL, listArgs, err := q.ToSql()
	if err != nil {
		return "", nil, "", nil, err
	}
	return listSQL, listArgs, countSQL, countArgs, nil
}

// List returns one page of submissions and the total number matching the filter
func (r *PostgresSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, int64, error) {
	listSQL, listArgs, countSQL, countArgs, err := r.listQueries(filter)
	if err != nil {
		return nil, 0, dberrors.Wrap("build list submissions", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting submissions")
		return nil, 0, dberrors.Wrap("count submissions", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list submissions query")
		return nil, 0, dberrors.Wrap("list submissions", err)
	}
	defer rows.Close()

	subs := []*models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, dberrors.Wrap("scan submission", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberrors.Wrap("iterate submissions", err)
	}
	return subs, total, nil
}

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	sub := &models.Submission{}
	var status string
	var data map[models.SectionID]json.RawMessage
	var files map[models.SectionID]models.FileMap
	var submittedAt, facultyApprovedAt, adminApprovedAt, rejectedAt, adminRejectedAt *time.Time

	err := row.Scan(&sub.ID, &sub.StudentID, &data, &files, &status, &sub.Remark,
		&submittedAt, &facultyApprovedAt, &adminApprovedAt, &rejectedAt, &adminRejectedAt,
		&sub.PDFURL, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sub.Status = models.Status(status)
	if data == nil {
		data = map[models.SectionID]json.RawMessage{}
	}
	if files == nil {
		files = map[models.SectionID]models.FileMap{}
	}
	sub.Data = data
	sub.Files = files
	sub.SubmittedAt = submittedAt
	sub.FacultyApprovedAt = facultyApprovedAt
	sub.AdminApprovedAt = adminApprovedAt
	sub.RejectedAt = rejectedAt
	sub.AdminRejectedAt = adminRejectedAt
	return sub, nil
}

