package database

import (
	"strings"

	"github.com/DioGolang/GoPeople/internal/domain/entity"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Table describes how one entity type maps onto its table. Columns excludes
// the key column; Values must return them in the same order.
type Table[T any] struct {
	Name    string
	Key     string
	Columns []string
	KeyOf   func(e *T) int64
	SetKey  func(e *T, id int64)
	Values  func(e *T) []any
	Scan    func(row rowScanner) (*T, error)
}

func (t Table[T]) selectList() string {
	return t.Key + ", " + strings.Join(t.Columns, ", ")
}

func (t Table[T]) selectAllSQL() string {
	return "SELECT " + t.selectList() + " FROM " + t.Name + " ORDER BY " + t.Key
}

func (t Table[T]) selectByKeySQL(d Dialect) string {
	return "SELECT " + t.selectList() + " FROM " + t.Name + " WHERE " + t.Key + " = " + d.Placeholder(1)
}

func (t Table[T]) insertSQL(d Dialect) string {
	marks := make([]string, len(t.Columns))
	for i := range t.Columns {
		marks[i] = d.Placeholder(i + 1)
	}
	return "INSERT INTO " + t.Name + " (" + strings.Join(t.Columns, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ") RETURNING " + t.Key
}

func (t Table[T]) updateSQL(d Dialect) string {
	sets := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		sets[i] = c + " = " + d.Placeholder(i+1)
	}
	return "UPDATE " + t.Name + " SET " + strings.Join(sets, ", ") +
		" WHERE " + t.Key + " = " + d.Placeholder(len(t.Columns)+1)
}

func (t Table[T]) deleteSQL(d Dialect) string {
	return "DELETE FROM " + t.Name + " WHERE " + t.Key + " = " + d.Placeholder(1)
}

var PersonTable = Table[entity.Person]{
	Name:    "person",
	Key:     "id",
	Columns: []string{"name"},
	KeyOf:   func(p *entity.Person) int64 { return p.ID },
	SetKey:  func(p *entity.Person, id int64) { p.ID = id },
	Values:  func(p *entity.Person) []any { return []any{p.Name} },
	Scan: func(row rowScanner) (*entity.Person, error) {
		var p entity.Person
		if err := row.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		return &p, nil
	},
}
