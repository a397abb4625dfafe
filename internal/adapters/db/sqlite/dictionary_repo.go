package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"yagt/internal/domain"
)

// DictionaryRepo stores the local engine's user dictionary.
type DictionaryRepo struct{ *Repo }

func NewDictionaryRepo(db *sql.DB) *DictionaryRepo { return &DictionaryRepo{NewRepo(db)} }

// Lookup returns nil, nil when no entry exists.
func (r *DictionaryRepo) Lookup(ctx context.Context, src, tgtLang string) (*domain.DictionaryEntry, error) {
	q := r.SQ.Select("id", "source_text", "tgt_lang", "translation").
		From("dictionary").
		Where(sq.Eq{"source_text": src, "tgt_lang": tgtLang}).
		Limit(1)
	sqlStr, args, _ := q.ToSql()
	var e domain.DictionaryEntry
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&e.ID, &e.SourceText, &e.TgtLang, &e.Translation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *DictionaryRepo) Put(ctx context.Context, entry *domain.DictionaryEntry) error {
	q := r.SQ.Insert("dictionary").
		Columns("source_text", "tgt_lang", "translation").
		Values(entry.SourceText, entry.TgtLang, entry.Translation).
		Suffix("ON CONFLICT(source_text, tgt_lang) DO UPDATE SET translation=excluded.translation")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DictionaryRepo) List(ctx context.Context, tgtLang string, limit int) ([]*domain.DictionaryEntry, error) {
	q := r.SQ.Select("id", "source_text", "tgt_lang", "translation").From("dictionary").OrderBy("id")
	if tgtLang != "" {
		q = q.Where(sq.Eq{"tgt_lang": tgtLang})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.DictionaryEntry
	for rows.Next() {
		var e domain.DictionaryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.TgtLang, &e.Translation); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
