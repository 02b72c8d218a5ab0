package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"paramforge/internal/box"
	"paramforge/internal/class"
	"paramforge/internal/codec"
	"paramforge/internal/param"
)

// Row is a stored instance.
type Row struct {
	ID        string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Box       *box.Box
}

type Store struct {
	db  *sql.DB
	d   *box.Dispatch
	log *slog.Logger
}

func NewStore(db *sql.DB, d *box.Dispatch, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, d: d, log: log}
}

// Migrate creates the schema and instance tables of every final class.
func (s *Store) Migrate(ctx context.Context) error {
	ddl, err := GenerateDDL(s.d.Registry())
	if err != nil {
		return err
	}
	return ApplyDDL(ctx, s.db, ddl, s.log)
}

// Save upserts an instance.
func (s *Store) Save(ctx context.Context, id string, version int64, updatedAt time.Time, b *box.Box) error {
	c := b.Class()
	body, err := codec.Encode(b)
	if err != nil {
		return err
	}
	cols := []string{"id", "version", "updated_at", "body"}
	args := []any{id, version, updatedAt, body}
	for _, a := range Persistent(c) {
		v, err := b.Table().GetAttr(a)
		if err != nil {
			return err
		}
		arg, err := columnValue(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c.Name(), a.Name(), err)
		}
		cols = append(cols, Column(a))
		args = append(args, arg)
	}

	idents := make([]string, len(cols))
	marks := make([]string, len(cols))
	var sets []string
	for i, col := range cols {
		idents[i] = sqlIdent(col)
		marks[i] = fmt.Sprintf("$%d", i+1)
		if col != "id" {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", idents[i], idents[i]))
		}
	}
	q := fmt.Sprintf("insert into %s (%s) values (%s) on conflict (\"id\") do update set %s",
		qualified(c), strings.Join(idents, ", "), strings.Join(marks, ", "), strings.Join(sets, ", "))

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save %s %s: %w", c.Name(), id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, classID uint16, id string) error {
	c, err := s.d.Registry().ClassByID(classID)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`delete from %s where "id" = $1`, qualified(c))
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", c.Name(), id, err)
	}
	return nil
}

// LoadAll reads every stored instance of every final class.
func (s *Store) LoadAll(ctx context.Context) ([]Row, error) {
	var out []Row
	for _, c := range s.d.Registry().Finals() {
		rows, err := s.load(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (s *Store) load(ctx context.Context, c *class.Class) ([]Row, error) {
	q := fmt.Sprintf(`select "id", "version", "created_at", "updated_at", "body" from %s order by "id"`, qualified(c))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Name(), err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var body []byte
		if err := rows.Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt, &body); err != nil {
			return nil, err
		}
		r.Box, err = codec.Decode(s.d, body)
		if err != nil {
			return nil, fmt.Errorf("load %s %s: %w", c.Name(), r.ID, err)
		}
		if r.Box.ClassID() != c.ID() {
			return nil, param.NewError(param.KindWrongClass, "table", Table(c), "id", r.ID, "got", r.Box.Class().Name())
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// columnValue converts a value to its mirror column argument.
func columnValue(v param.Value) (any, error) {
	switch v := v.(type) {
	case param.Int:
		return int32(v), nil
	case param.Int64:
		return int64(v), nil
	case param.Float:
		return float64(v), nil
	case param.Bool:
		return bool(v), nil
	case param.String:
		return string(v), nil
	case param.LocalizedString:
		return string(v), nil
	case param.Guid:
		return uuid.UUID(v).String(), nil
	case param.ClassRef:
		return int32(v), nil
	case param.BitSetFilter:
		return strconv.FormatUint(uint64(v), 10), nil
	default:
		raw, err := param.MarshalValue(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
}
