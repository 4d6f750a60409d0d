package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

// NextID computes max(numeric suffix)+1 for seq and verifies the result is
// still free. A taken id is reported as an allocation conflict and never
// retried here.
func (r *Repository) NextID(ctx context.Context, seq domain.Sequence) (string, error) {
	if !seq.Known() {
		return "", fmt.Errorf("unknown id sequence %s.%s", seq.Table, seq.Column)
	}

	maxSuffix, err := r.maxSuffix(ctx, seq)
	if err != nil {
		return "", err
	}
	id := seq.Format(maxSuffix + 1)

	if err := r.ensureFree(ctx, seq, id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) maxSuffix(ctx context.Context, seq domain.Sequence) (uint64, error) {
	db := r.db.WithContext(ctx)

	type suffixRow struct {
		MaxSuffix sql.NullInt64
	}
	var row suffixRow
	if err := db.Raw(maxSuffixQuery(db.Dialector.Name(), seq), seq.Prefix).Scan(&row).Error; err != nil {
		return 0, classify(err)
	}
	if !row.MaxSuffix.Valid || row.MaxSuffix.Int64 < 0 {
		return 0, nil
	}
	return uint64(row.MaxSuffix.Int64), nil
}

func (r *Repository) ensureFree(ctx context.Context, seq domain.Sequence, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Table(seq.Table).Where(seq.Column+" = ?", id).Count(&count).Error; err != nil {
		return classify(err)
	}
	if count > 0 {
		return domain.Conflict(seq.Table, id)
	}
	return nil
}

// maxSuffixQuery ignores ids whose suffix is empty or not all digits.
func maxSuffixQuery(dialect string, seq domain.Sequence) string {
	start := len(seq.Prefix) + 1
	if dialect == DriverPostgres {
		return fmt.Sprintf(
			`SELECT MAX(CAST(SUBSTR(%[1]s, %[3]d) AS BIGINT)) AS max_suffix FROM %[2]s
			 WHERE SUBSTR(%[1]s, 1, %[4]d) = ? AND SUBSTR(%[1]s, %[3]d) ~ '^[0-9]+$'`,
			seq.Column, seq.Table, start, len(seq.Prefix))
	}
	return fmt.Sprintf(
		`SELECT MAX(CAST(SUBSTR(%[1]s, %[3]d) AS INTEGER)) AS max_suffix FROM %[2]s
		 WHERE SUBSTR(%[1]s, 1, %[4]d) = ? AND SUBSTR(%[1]s, %[3]d) <> '' AND SUBSTR(%[1]s, %[3]d) NOT GLOB '*[^0-9]*'`,
		seq.Column, seq.Table, start, len(seq.Prefix))
}
