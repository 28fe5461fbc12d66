package entity

// NameMaxLength bounds the name column in every store dialect.
const NameMaxLength = 100

// Person is the persisted aggregate. ID stays zero until the first commit
// assigns it and never changes afterward.
type Person struct {
	ID   int64
	Name string
}

func (p *Person) IsTransient() bool {
	return p.ID == 0
}
