package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"atelier/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToFloatPtr converts sql.NullFloat64 to *float64
func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		v := nf.Float64
		return &v
	}
	return nil
}

// floatPtrToNull converts *float64 to sql.NullFloat64
func floatPtrToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// ============================================================================
// Time Helpers
// ============================================================================

// Timestamps are stored as RFC 3339 text so they sort lexically
func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a map to nullable JSON string.
// Returns empty NullString for nil or empty maps.
func marshalToNull(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Error Helpers
// ============================================================================

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// writeError maps constraint failures onto domain errors
func writeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w", op, domain.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("failed to %s: referenced entity missing: %w", op, domain.ErrInvalid)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the blocks table:
// 1. Add field to blockRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update blockColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Block
// 5. Update blockArgs() if column should be writable
// 6. Add the column to the schema in sqlite.go migrate()
// 7. Update relevant tests
//
// CRITICAL: Column order must match between:
// - blockColumns constant
// - scanArgs() return slice
// - blockArgs() and the INSERT column list
//
// Same pattern applies to links.

// ============================================================================
// Block Row Scanner
// ============================================================================

const blockColumns = `id, space_id, x, y, x_global, y_global, shape, color, width, height, title, created_at, updated_at`

// blockRow holds all columns from a block query for scanning
type blockRow struct {
	ID        string
	SpaceID   string
	X, Y      float64
	XGlobal   sql.NullFloat64
	YGlobal   sql.NullFloat64
	Shape     string
	Color     string
	Width     float64
	Height    float64
	Title     sql.NullString
	CreatedAt string
	UpdatedAt string
}

func (r *blockRow) scanArgs() []any {
	return []any{
		&r.ID, &r.SpaceID, &r.X, &r.Y, &r.XGlobal, &r.YGlobal,
		&r.Shape, &r.Color, &r.Width, &r.Height, &r.Title,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *blockRow) toDomain() domain.Block {
	return domain.Block{
		ID:        r.ID,
		SpaceID:   r.SpaceID,
		X:         r.X,
		Y:         r.Y,
		XGlobal:   nullToFloatPtr(r.XGlobal),
		YGlobal:   nullToFloatPtr(r.YGlobal),
		Shape:     domain.Shape(r.Shape),
		Color:     domain.Color(r.Color),
		Width:     r.Width,
		Height:    r.Height,
		Title:     nullToString(r.Title),
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

func blockArgs(b *domain.Block) []any {
	return []any{
		b.ID, b.SpaceID, b.X, b.Y, floatPtrToNull(b.XGlobal), floatPtrToNull(b.YGlobal),
		string(b.Shape), string(b.Color), b.Width, b.Height, stringToNull(b.Title),
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	}
}

// ============================================================================
// Link Row Scanner
// ============================================================================

const linkColumns = `id, space_id, source_id, target_id, type, weight, validation, created_at`

type linkRow struct {
	ID         string
	SpaceID    sql.NullString
	SourceID   string
	TargetID   string
	Type       string
	Weight     float64
	Validation string
	CreatedAt  string
}

func (r *linkRow) scanArgs() []any {
	return []any{&r.ID, &r.SpaceID, &r.SourceID, &r.TargetID, &r.Type, &r.Weight, &r.Validation, &r.CreatedAt}
}

func (r *linkRow) toDomain() domain.Link {
	return domain.Link{
		ID:         r.ID,
		SpaceID:    nullToString(r.SpaceID),
		SourceID:   r.SourceID,
		TargetID:   r.TargetID,
		Type:       domain.LinkType(r.Type),
		Weight:     r.Weight,
		Validation: domain.Validation(r.Validation),
		CreatedAt:  parseTime(r.CreatedAt),
	}
}

func linkArgs(l *domain.Link) []any {
	return []any{
		l.ID, stringToNull(l.SpaceID), l.SourceID, l.TargetID,
		string(l.Type), l.Weight, string(l.Validation), formatTime(l.CreatedAt),
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(s scanner) (domain.Block, error) {
	var row blockRow
	if err := s.Scan(row.scanArgs()...); err != nil {
		return domain.Block{}, err
	}
	return row.toDomain(), nil
}

func scanLink(s scanner) (domain.Link, error) {
	var row linkRow
	if err := s.Scan(row.scanArgs()...); err != nil {
		return domain.Link{}, err
	}
	return row.toDomain(), nil
}
