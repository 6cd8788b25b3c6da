package feedback_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/mastersight/internal/feedback"
)

var _ = Describe("Score", func() {
	DescribeTable("decoding",
		func(raw string, expected feedback.Score) {
			var s feedback.Score
			Expect(json.Unmarshal([]byte(raw), &s)).To(Succeed())
			Expect(s).To(Equal(expected))
		},
		Entry("number", `7`, feedback.Score{Value: 7, Set: true, Valid: true}),
		Entry("numeric string", `"10"`, feedback.Score{Value: 10, Set: true, Valid: true}),
		Entry("padded string", `" 3 "`, feedback.Score{Value: 3, Set: true, Valid: true}),
		Entry("zero", `0`, feedback.Score{Value: 0, Set: true, Valid: true}),
		Entry("null", `null`, feedback.Score{}),
		Entry("word", `"great"`, feedback.Score{Set: true}),
		Entry("fraction", `7.5`, feedback.Score{Set: true}),
	)
})
