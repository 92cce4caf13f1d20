package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// candidateFilterClauses turns a filter into WHERE clauses shared by the
// page query and its count query.
func candidateFilterClauses(f domain.CandidateFilter) sq.And {
	clauses := sq.And{}

	if f.Stage != nil {
		clauses = append(clauses, sq.Eq{"stage": *f.Stage})
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(search)
		clauses = append(clauses, sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"position": pattern},
			sq.Expr("? = ANY(skills)", search),
		})
	}

	if len(f.Skills) > 0 {
		clauses = append(clauses, sq.Expr("skills && ?", f.Skills))
	}

	if position := strings.TrimSpace(f.Position); position != "" {
		clauses = append(clauses, sq.ILike{"position": likePattern(position)})
	}

	return clauses
}

// List retrieves one page of candidates, most recently updated first, and the
// total number of matches.
func (r *CandidateRepository) List(ctx context.Context, f domain.CandidateFilter) ([]*domain.Candidate, int, error) {
	where := candidateFilterClauses(f)

	qb := psql.Select(candidateColumns...).From("candidates")
	countQb := psql.Select("COUNT(*)").From("candidates")
	if len(where) > 0 {
		qb = qb.Where(where)
		countQb = countQb.Where(where)
	}

	qb = qb.OrderBy("updated_at DESC", "id ASC")
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
		if f.Page > 1 {
			qb = qb.Offset(uint64((f.Page - 1) * f.Limit))
		}
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query for candidates: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query candidates: %w", err)
	}

	candidates, err := scanCandidates(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query for candidates: %w", err)
	}

	var total int
	if err := r.q(ctx).QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	return candidates, total, nil
}

// CountByStage returns the number of candidates in every pipeline stage,
// including stages with no candidates, in pipeline order.
func (r *CandidateRepository) CountByStage(ctx context.Context) ([]domain.StageCount, int, error) {
	query, args, err := psql.
		Select("stage", "COUNT(*)").
		From("candidates").
		GroupBy("stage").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build CountByStage query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query stage counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Stage]int, len(domain.Stages))
	for rows.Next() {
		var stage domain.Stage
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, 0, fmt.Errorf("scan stage count: %w", err)
		}
		counts[stage] = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}

	total := 0
	result := make([]domain.StageCount, len(domain.Stages))
	for i, s := range domain.Stages {
		result[i] = domain.StageCount{Stage: s, Count: counts[s]}
		total += counts[s]
	}
	return result, total, nil
}

// RecentlyUpdated returns the most recently updated candidates.
func (r *CandidateRepository) RecentlyUpdated(ctx context.Context, limit int) ([]*domain.Candidate, error) {
	query, args, err := psql.
		Select(candidateColumns...).
		From("candidates").
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build RecentlyUpdated query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent candidates: %w", err)
	}

	return scanCandidates(rows)
}
