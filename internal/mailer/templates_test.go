package mailer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/mastersight/internal/mailer"
)

var _ = Describe("Renderer", func() {
	var renderer *mailer.Renderer

	BeforeEach(func() {
		var err error
		renderer, err = mailer.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects unknown kinds", func() {
		_, _, err := renderer.Render(mailer.Kind("newsletter"), nil)
		Expect(err).To(HaveOccurred())
	})

	It("escapes user supplied values", func() {
		_, body, err := renderer.Render(mailer.KindMemberInvited, struct {
			Name, InviterName, CompanyName, Link string
		}{"<b>Ana</b>", "Bruno", "Acme", "http://app/dashboard/invites"})
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(ContainSubstring("&lt;b&gt;Ana&lt;/b&gt;"))
		Expect(body).NotTo(ContainSubstring("<b>Ana</b>"))
	})
})
