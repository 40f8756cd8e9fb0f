// movie-service/internal/domain/movie.go
package domain

import (
	"time"
)

// Movie is the persisted movie record.
type Movie struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Year      *int      `json:"year,omitempty" db:"year"`
	Director  *string   `json:"director,omitempty" db:"director"`
	Rating    *float64  `json:"rating,omitempty" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Clone returns a deep copy, so stores can hand out records without sharing
// the optional field pointers.
func (m *Movie) Clone() *Movie {
	if m == nil {
		return nil
	}
	c := *m
	c.Year = clonePtr(m.Year)
	c.Director = clonePtr(m.Director)
	c.Rating = clonePtr(m.Rating)
	return &c
}

// MovieFields is the request body accepted by create and update. Fields that
// are absent from the JSON stay unset; JSON null sets a field with a nil value.
// id and timestamps are not part of the body and are ignored if a client sends them.
type MovieFields struct {
	Title    Field[string]  `json:"title"`
	Year     Field[int]     `json:"year"`
	Director Field[string]  `json:"director"`
	Rating   Field[float64] `json:"rating"`
}

// Empty reports whether no field was supplied.
func (f MovieFields) Empty() bool {
	return !f.Title.Set && !f.Year.Set && !f.Director.Set && !f.Rating.Set
}

// NewMovie builds an unsaved record from the supplied fields. The store fills
// in the ID and both timestamps.
func (f MovieFields) NewMovie() *Movie {
	m := &Movie{}
	f.ApplyTo(m)
	return m
}

// ApplyTo merges the supplied fields into m. Unset fields are left alone.
func (f MovieFields) ApplyTo(m *Movie) {
	if f.Title.Set {
		m.Title = f.Title.Or("")
	}
	if f.Year.Set {
		m.Year = clonePtr(f.Year.Value)
	}
	if f.Director.Set {
		m.Director = clonePtr(f.Director.Value)
	}
	if f.Rating.Set {
		m.Rating = clonePtr(f.Rating.Value)
	}
}

// Now is the timestamp source for records, truncated to the millisecond
// resolution that document stores keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
