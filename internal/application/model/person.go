package model

// PersonModel is the shape callers of the person service see. It mirrors
// entity.Person field for field but is never shared with it by reference.
type PersonModel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
