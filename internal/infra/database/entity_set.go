package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DioGolang/GoPeople/internal/domain/entity"
)

var errRowVanished = errors.New("row no longer exists")

type trackedSet interface {
	// reset forgets every tracked instance and every staged change.
	reset()
	// settle clears staging bookkeeping after a successful commit.
	settle()
}

// EntitySet is the tracked collection of one entity type inside a Context.
// It keeps an identity map so that at most one instance per key is live.
type EntitySet[T any] struct {
	uow     *Context
	table   Table[T]
	tracked map[int64]*T
	removed map[int64]struct{}
	added   []*T
	inserts map[*T]*pendingChange
}

// SetFor returns the set registered for table on c, creating it on first use.
// Every call with the same table name yields the same set.
func SetFor[T any](c *Context, table Table[T]) *EntitySet[T] {
	if s, ok := c.sets[table.Name]; ok {
		return s.(*EntitySet[T])
	}
	s := &EntitySet[T]{
		uow:     c,
		table:   table,
		tracked: make(map[int64]*T),
		removed: make(map[int64]struct{}),
		inserts: make(map[*T]*pendingChange),
	}
	c.sets[table.Name] = s
	return s
}

func (s *EntitySet[T]) reset() {
	s.tracked = make(map[int64]*T)
	s.settle()
}

func (s *EntitySet[T]) settle() {
	s.removed = make(map[int64]struct{})
	s.inserts = make(map[*T]*pendingChange)
	s.added = nil
}

// Add stages e for insertion. The key is assigned by the store on commit;
// until then e is visible to Query and Where but not to Find.
func (s *EntitySet[T]) Add(ctx context.Context, e *T) error {
	if err := s.uow.checkOpen(); err != nil {
		return err
	}
	if _, staged := s.inserts[e]; staged {
		return nil
	}
	s.stageInsert(ctx, e)
	return nil
}

// Update overwrites the tracked instance with e's fields. When nothing with
// e's key is tracked or stored, e is staged as a new row instead.
func (s *EntitySet[T]) Update(ctx context.Context, e *T) error {
	if err := s.uow.checkOpen(); err != nil {
		return err
	}
	if _, staged := s.inserts[e]; staged {
		return nil
	}

	if id := s.table.KeyOf(e); id != 0 {
		if staged := s.stagedAdd(id); staged != nil {
			*staged = *e
			return nil
		}
		current, err := s.Find(ctx, id)
		switch {
		case err == nil:
			if current != e {
				*current = *e
			}
			s.stageUpdate(ctx, id, current)
			return nil
		case !errors.Is(err, entity.ErrNotFound):
			return err
		}
	}

	s.stageInsert(ctx, e)
	return nil
}

// Remove resolves the tracked instance for e's key and stages its deletion.
// Fields of e other than the key are ignored.
func (s *EntitySet[T]) Remove(ctx context.Context, e *T) error {
	if err := s.uow.checkOpen(); err != nil {
		return err
	}

	id := s.table.KeyOf(e)
	if id == 0 {
		if s.unstageInsert(e) {
			return nil
		}
		return entity.ErrIDIsRequired
	}
	if s.unstageInsert(s.stagedAdd(id)) {
		return nil
	}

	if _, err := s.Find(ctx, id); err != nil {
		return err
	}
	s.removed[id] = struct{}{}

	query := s.table.deleteSQL(s.uow.dialect)
	s.uow.stage(ctx, &pendingChange{
		op:    "delete",
		table: s.table.Name,
		key:   id,
		exec: func(ctx context.Context, tx *sql.Tx) (int64, func(), error) {
			n, err := execAffected(ctx, tx, query, id)
			if err != nil {
				return 0, nil, err
			}
			return n, func() { delete(s.tracked, id) }, nil
		},
	})
	return nil
}

// Find returns the instance with the given key, loading and tracking it when
// it is not tracked yet.
func (s *EntitySet[T]) Find(ctx context.Context, id int64) (*T, error) {
	if err := s.uow.checkOpen(); err != nil {
		return nil, err
	}
	if _, gone := s.removed[id]; gone {
		return nil, fmt.Errorf("%s %d: %w", s.table.Name, id, entity.ErrNotFound)
	}
	if e, ok := s.tracked[id]; ok {
		return e, nil
	}

	var e *T
	err := s.uow.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		e, err = s.table.Scan(conn.QueryRowContext(ctx, s.table.selectByKeySQL(s.uow.dialect), id))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", s.table.Name, id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", s.table.Name, id, err)
	}
	s.tracked[id] = e
	return e, nil
}

// Query materialises the set: stored rows in key order, with tracked
// instances standing in for their rows and staged removals left out,
// followed by staged inserts in staging order.
func (s *EntitySet[T]) Query(ctx context.Context) ([]*T, error) {
	if err := s.uow.checkOpen(); err != nil {
		return nil, err
	}

	var out []*T
	err := s.uow.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		out, err = s.load(ctx, conn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return append(out, s.added...), nil
}

func (s *EntitySet[T]) load(ctx context.Context, conn *sql.Conn) ([]*T, error) {
	rows, err := conn.QueryContext(ctx, s.table.selectAllSQL())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table.Name, err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		e, err := s.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table.Name, err)
		}
		id := s.table.KeyOf(e)
		if _, gone := s.removed[id]; gone {
			continue
		}
		if current, ok := s.tracked[id]; ok {
			out = append(out, current)
			continue
		}
		s.tracked[id] = e
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table.Name, err)
	}
	return out, nil
}

// Where evaluates predicate locally over Query's result. A nil predicate
// matches everything.
func (s *EntitySet[T]) Where(ctx context.Context, predicate func(T) bool) ([]*T, error) {
	all, err := s.Query(ctx)
	if err != nil {
		return nil, err
	}
	if predicate == nil {
		return all, nil
	}

	out := make([]*T, 0, len(all))
	for _, e := range all {
		if predicate(*e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Tracked reports how many instances the identity map currently holds.
func (s *EntitySet[T]) Tracked() int {
	return len(s.tracked)
}

func (s *EntitySet[T]) stageInsert(ctx context.Context, e *T) {
	query := s.table.insertSQL(s.uow.dialect)
	change := &pendingChange{
		op:    "insert",
		table: s.table.Name,
		exec: func(ctx context.Context, tx *sql.Tx) (int64, func(), error) {
			var id int64
			if err := tx.QueryRowContext(ctx, query, s.table.Values(e)...).Scan(&id); err != nil {
				return 0, nil, err
			}
			return 1, func() {
				s.table.SetKey(e, id)
				s.tracked[id] = e
			}, nil
		},
	}
	s.added = append(s.added, e)
	s.inserts[e] = change
	s.uow.stage(ctx, change)
}

// values are read when the commit runs, so later edits to the tracked
// instance are flushed too
func (s *EntitySet[T]) stageUpdate(ctx context.Context, id int64, current *T) {
	query := s.table.updateSQL(s.uow.dialect)
	s.uow.stage(ctx, &pendingChange{
		op:    "update",
		table: s.table.Name,
		key:   id,
		exec: func(ctx context.Context, tx *sql.Tx) (int64, func(), error) {
			args := append(s.table.Values(current), id)
			n, err := execAffected(ctx, tx, query, args...)
			return n, nil, err
		},
	})
}

// stagedAdd returns the pending insert carrying key id. Only an upsert of an
// unknown key stages an insert with a non-zero key.
func (s *EntitySet[T]) stagedAdd(id int64) *T {
	for _, a := range s.added {
		if s.table.KeyOf(a) == id {
			return a
		}
	}
	return nil
}

func (s *EntitySet[T]) unstageInsert(e *T) bool {
	if e == nil {
		return false
	}
	change, ok := s.inserts[e]
	if !ok {
		return false
	}
	change.cancelled = true
	delete(s.inserts, e)
	for i, a := range s.added {
		if a == e {
			s.added = append(s.added[:i], s.added[i+1:]...)
			break
		}
	}
	return true
}

func execAffected(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errRowVanished
	}
	return n, nil
}
