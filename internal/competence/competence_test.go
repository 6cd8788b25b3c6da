package competence_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/mastersight/internal/competence"
)

var _ = Describe("Set", func() {
	var set *competence.Set

	BeforeEach(func() {
		set = &competence.Set{Items: []competence.Competence{
			{ID: "a", Title: "Go"},
			{ID: "b", Title: "SQL"},
		}}
	})

	DescribeTable("Locate",
		func(id string, index *int, wantIndex int, wantFound, wantInBounds bool) {
			i, found, inBounds := set.Locate(id, index)
			Expect(found).To(Equal(wantFound))
			Expect(inBounds).To(Equal(wantInBounds))
			if wantFound && wantInBounds {
				Expect(i).To(Equal(wantIndex))
			}
		},
		Entry("by id", "b", nil, 1, true, true),
		Entry("unknown id", "zzz", nil, -1, false, false),
		Entry("by index", "", intPtr(0), 0, true, true),
		Entry("negative index", "", intPtr(-1), -1, true, false),
		Entry("index equal to length", "", intPtr(2), -1, true, false),
		Entry("id wins over index", "a", intPtr(1), 0, true, true),
	)

	It("never mutates the stored items", func() {
		added := set.Append(competence.NewCompetence("Rust", "", nil))
		replaced := set.Replace(0, competence.Competence{Title: "Golang"})
		removed := set.Remove(0)

		Expect(added).To(HaveLen(3))
		Expect(replaced[0].ID).To(Equal("a"))
		Expect(replaced[0].Title).To(Equal("Golang"))
		Expect(removed).To(HaveLen(1))
		Expect(removed[0].ID).To(Equal("b"))

		Expect(set.Items).To(HaveLen(2))
		Expect(set.Items[0].Title).To(Equal("Go"))
	})

	It("gives new competences distinct ids", func() {
		a := competence.NewCompetence("x", "", nil)
		b := competence.NewCompetence("x", "", nil)
		Expect(a.ID).NotTo(BeEmpty())
		Expect(a.ID).NotTo(Equal(b.ID))
	})
})

func intPtr(v int) *int {
	return &v
}
