// Package competence edits the competences embedded in a membership. Each
// write is a compare-and-swap on the membership's competences version.
package competence

import (
	"slices"

	"github.com/google/uuid"

	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
)

const (
	MessageAdded   = "competence-added"
	MessageUpdated = "competence-updated"
	MessageDeleted = "competence-deleted"
)

type Competence = membershipDatamodel.Competence

// Set is the competences of one membership at a given version.
type Set struct {
	MemberID int64
	Version  int64
	Items    []Competence
}

func NewCompetence(title, description string, documents []string) Competence {
	return Competence{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Documents:   documents,
	}
}

// Locate returns the index of the element addressed by id, or by the legacy
// position when id is empty. found is false for an unknown id; inBounds is
// false for a position outside the list.
func (s *Set) Locate(id string, index *int) (i int, found, inBounds bool) {
	if id != "" {
		i = slices.IndexFunc(s.Items, func(c Competence) bool { return c.ID == id })
		return i, i >= 0, i >= 0
	}
	if index == nil || *index < 0 || *index >= len(s.Items) {
		return -1, true, false
	}
	return *index, true, true
}

// Append returns a copy of the items with c added at the end.
func (s *Set) Append(c Competence) []Competence {
	out := make([]Competence, 0, len(s.Items)+1)
	out = append(out, s.Items...)
	return append(out, c)
}

// Replace returns a copy of the items with position i replaced by c. The
// element keeps its id.
func (s *Set) Replace(i int, c Competence) []Competence {
	out := slices.Clone(s.Items)
	c.ID = out[i].ID
	out[i] = c
	return out
}

// Remove returns a copy of the items without position i.
func (s *Set) Remove(i int) []Competence {
	out := make([]Competence, 0, len(s.Items)-1)
	out = append(out, s.Items[:i]...)
	return append(out, s.Items[i+1:]...)
}

// withIDs gives ids to elements stored before ids existed.
func withIDs(items []Competence) []Competence {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].Documents == nil {
			items[i].Documents = []string{}
		}
	}
	return items
}
