package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, external_id, title, synopsis, performers, producer,
    intro_images_json, status, tags_json, ai_keywords_json,
    pending_foreign_tags_json, need_review, error_message, created_at, updated_at`

// NewItem describes a record to ingest from the external catalog.
type NewItem struct {
	ExternalID  string
	Title       string
	Synopsis    string
	Performers  string
	Producer    string
	IntroImages []string
}

// Add inserts a new pending catalog item. Records whose external ID is
// already present are skipped and reported via the second return value so
// repeated ingests stay idempotent.
func (s *Store) Add(ctx context.Context, record NewItem) (*Item, bool, error) {
	ctx = ensureContext(ctx)

	externalID := strings.TrimSpace(record.ExternalID)
	if externalID != "" {
		existing, err := s.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	images, err := marshalStrings(record.IntroImages)
	if err != nil {
		return nil, false, fmt.Errorf("marshal intro images: %w", err)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO catalog_items (
            external_id, title, synopsis, performers, producer,
            intro_images_json, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		externalID,
		strings.TrimSpace(record.Title),
		record.Synopsis,
		record.Performers,
		strings.TrimSpace(record.Producer),
		images,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Update persists the mutable fields of an item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("nil item")
	}
	ctx = ensureContext(ctx)

	tags, err := marshalStrings(item.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	keywords, err := marshalStrings(item.AIKeywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	foreign, err := marshalStrings(item.PendingForeignTags)
	if err != nil {
		return fmt.Errorf("marshal pending foreign tags: %w", err)
	}

	item.UpdatedAt = time.Now().UTC()
	_, err = s.execWithRetry(
		ctx,
		`UPDATE catalog_items SET
            status = ?, tags_json = ?, ai_keywords_json = ?,
            pending_foreign_tags_json = ?, need_review = ?,
            error_message = ?, updated_at = ?
        WHERE id = ?`,
		item.Status,
		tags,
		keywords,
		foreign,
		boolToInt(item.NeedReview),
		item.ErrorMessage,
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// GetByID fetches a catalog item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM catalog_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetByExternalID fetches a catalog item by its external catalog identifier.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*Item, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+itemColumns+` FROM catalog_items WHERE external_id = ?`,
		strings.TrimSpace(externalID),
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by external id: %w", err)
	}
	return item, nil
}

// NextUntagged returns up to limit pending items in insertion order; a
// limit of zero or less returns all of them. The pending-status selection
// is the caller-side idempotence boundary: items that already carry tags
// are never re-selected.
func (s *Store) NextUntagged(ctx context.Context, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+itemColumns+` FROM catalog_items WHERE status = ? ORDER BY id ASC LIMIT ?`,
		StatusPending,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select untagged: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListByStatus returns all items with the given statuses, newest first. An
// empty status list returns everything.
func (s *Store) ListByStatus(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Stats returns item counts grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT status, COUNT(1) FROM catalog_items GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

// Health aggregates the stats into a summary.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	summary := HealthSummary{
		Pending: stats[StatusPending],
		Tagging: stats[StatusTagging],
		Tagged:  stats[StatusTagged],
		Review:  stats[StatusReview],
		Failed:  stats[StatusFailed],
	}
	for _, count := range stats {
		summary.Total += count
	}
	return summary, nil
}

// RetryFailed resets failed items to pending so the next run picks them up.
// Returns the number of items reset.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE catalog_items SET status = ?, error_message = '', updated_at = ? WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed: %w", err)
	}
	return res.RowsAffected()
}

// ResetStale moves items stuck in the transient tagging state back to
// pending, for recovery after an interrupted run.
func (s *Store) ResetStale(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE catalog_items SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusTagging,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stale: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every catalog item and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM catalog_items`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item        Item
		status      string
		images      string
		tags        string
		keywords    string
		foreign     string
		needReview  int
		createdText string
		updatedText string
	)
	err := row.Scan(
		&item.ID,
		&item.ExternalID,
		&item.Title,
		&item.Synopsis,
		&item.Performers,
		&item.Producer,
		&images,
		&status,
		&tags,
		&keywords,
		&foreign,
		&needReview,
		&item.ErrorMessage,
		&createdText,
		&updatedText,
	)
	if err != nil {
		return nil, err
	}

	item.Status = Status(status)
	item.NeedReview = needReview != 0
	if item.IntroImages, err = unmarshalStrings(images); err != nil {
		return nil, fmt.Errorf("decode intro images: %w", err)
	}
	if item.Tags, err = unmarshalStrings(tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if item.AIKeywords, err = unmarshalStrings(keywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	if item.PendingForeignTags, err = unmarshalStrings(foreign); err != nil {
		return nil, fmt.Errorf("decode pending foreign tags: %w", err)
	}
	if item.CreatedAt, err = parseTimestamp(createdText); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTimestamp(updatedText); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(data string) ([]string, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
