package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-resume-matcher/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type analysisRepo struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates a new analysis history repository
func NewAnalysisRepository(db *pgxpool.Pool) domain.AnalysisRepository {
	return &analysisRepo{db: db}
}

const analysisColumns = `id, resume_hash, job_description_hash, keywords, sections, overall_score, source, created_at`

func (r *analysisRepo) Save(ctx context.Context, record *domain.AnalysisRecord) error {
	sections, err := json.Marshal(record.Sections)
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	query := `INSERT INTO resume_analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		record.ID, record.ResumeHash, record.JobDescriptionHash,
		pq.Array(record.Keywords), string(sections),
		record.OverallScore, string(record.Source), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM resume_analyses WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return rec, nil
}

func (r *analysisRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.AnalysisRecord, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM resume_analyses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	query := `SELECT ` + analysisColumns + ` FROM resume_analyses
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AnalysisRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func scanRecord(row pgx.Row) (*domain.AnalysisRecord, error) {
	var (
		rec      domain.AnalysisRecord
		keywords []string
		sections []byte
		source   string
	)
	err := row.Scan(
		&rec.ID, &rec.ResumeHash, &rec.JobDescriptionHash,
		pq.Array(&keywords), &sections,
		&rec.OverallScore, &source, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sections, &rec.Sections); err != nil {
		return nil, fmt.Errorf("failed to decode sections: %w", err)
	}
	if keywords == nil {
		keywords = []string{}
	}
	rec.Keywords = keywords
	rec.Source = domain.AnalysisSource(source)
	return &rec, nil
}
