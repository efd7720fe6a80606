package repositories

import (
	"context"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/dberrors"
	"github.com/yigit/portfoliohub/internal/pkg/logger"
)

const sectionsTable = "student_sections"

var sectionColumns = []string{"student_id", "section_id", "data", "files", "updated_at"}

// PostgresSectionRepository handles section draft database operations
type PostgresSectionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSectionRepository creates a new PostgresSectionRepository
func NewSectionRepository(db DBTX) *PostgresSectionRepository {
	return &PostgresSectionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PostgresSectionRepository) upsertQuery(rec *models.SectionRecord) (string, []interface{}, error) {
	files := rec.Files
	if files == nil {
		files = models.FileMap{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return "", nil, err
	}
	return r.sb.Insert(sectionsTable).
		Columns(sectionColumns...).
		Values(rec.StudentID, string(rec.SectionID), []byte(rec.Data), filesJSON, rec.UpdatedAt).
		Suffix("ON CONFLICT (student_id, section_id) DO UPDATE SET data = EXCLUDED.data, files = EXCLUDED.files, updated_at = EXCLUDED.updated_at").
		ToSql()
}

// Upsert inserts or fully replaces a section draft
func (r *PostgresSectionRepository) Upsert(ctx context.Context, rec *models.SectionRecord) error {
	sql, args, err := r.upsertQuery(rec)
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert section SQL")
		return dberrors.Wrap("build upsert section", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).
			Str("studentId", rec.StudentID).
			Str("sectionId", string(rec.SectionID)).
			Msg("Error executing upsert section query")
		return dberrors.Wrap("upsert section", err)
	}
	return nil
}

func (r *PostgresSectionRepository) getQuery(studentID string, sectionID models.SectionID) (string, []interface{}, error) {
	return r.sb.Select(sectionColumns...).
		From(sectionsTable).
		Where(squirrel.Eq{"student_id": studentID, "section_id": string(sectionID)}).
		Limit(1).
		ToSql()
}

// Get retrieves one section draft, or nil when absent
func (r *PostgresSectionRepository) Get(ctx context.Context, studentID string, sectionID models.SectionID) (*models.SectionRecord, error) {
	sql, args, err := r.getQuery(studentID, sectionID)
	if err != nil {
		return nil, dberrors.Wrap("build get section", err)
	}

	rec, err := scanSection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		logger.Error().Err(err).Str("studentId", studentID).Str("sectionId", string(sectionID)).Msg("Error scanning section row")
		return nil, dberrors.Wrap("get section", err)
	}
	return rec, nil
}

func (r *PostgresSectionRepository) listQuery(studentID string) (string, []interface{}, error) {
	return r.sb.Select(sectionColumns...).
		From(sectionsTable).
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("section_id ASC").
		ToSql()
}

// List retrieves every draft of a student
func (r *PostgresSectionRepository) List(ctx context.Context, studentID string) ([]*models.SectionRecord, error) {
	sql, args, err := r.listQuery(studentID)
	if err != nil {
		return nil, dberrors.Wrap("build list sections", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentId", studentID).Msg("Error executing list sections query")
		return nil, dberrors.Wrap("list sections", err)
	}
	defer rows.Close()

	records := []*models.SectionRecord{}
	for rows.Next() {
		rec, err := scanSection(rows)
		if err != nil {
			return nil, dberrors.Wrap("scan section", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Wrap("iterate sections", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSection(row rowScanner) (*models.SectionRecord, error) {
	rec := &models.SectionRecord{}
	var sectionID string
	var data []byte
	var files models.FileMap
	if err := row.Scan(&rec.StudentID, &sectionID, &data, &files, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.SectionID = models.SectionID(sectionID)
	rec.Data = json.RawMessage(data)
	if files == nil {
		files = models.FileMap{}
	}
	rec.Files = files
	return rec, nil
}
