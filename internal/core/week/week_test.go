package week_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet/internal/core/week"
)

func TestWeek(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Week Suite")
}

var _ = Describe("Week", func() {
	Describe("Current", func() {
		DescribeTable("counts started seven-day blocks since January 1st",
			func(at time.Time, expected string) {
				Expect(week.Current(at)).To(Equal(expected))
			},
			Entry("first instant of the year", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W00"),
			Entry("one millisecond in", time.Date(2024, 1, 1, 0, 0, 0, int(time.Millisecond), time.UTC), "2024-W01"),
			Entry("end of the first block", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "2024-W01"),
			Entry("start of the second block", time.Date(2024, 1, 8, 0, 0, 1, 0, time.UTC), "2024-W02"),
			Entry("early march", time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), "2024-W10"),
			Entry("last day of a leap year", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), "2024-W53"),
		)
	})

	Describe("Valid", func() {
		It("accepts well formed identifiers", func() {
			Expect(week.Valid("2024-W10")).To(BeTrue())
			Expect(week.Valid("2024-W00")).To(BeTrue())
		})

		It("rejects anything else", func() {
			Expect(week.Valid("")).To(BeFalse())
			Expect(week.Valid("2024-10")).To(BeFalse())
			Expect(week.Valid("2024-W1")).To(BeFalse())
			Expect(week.Valid("24-W10")).To(BeFalse())
			Expect(week.Valid("2024-W10 ")).To(BeFalse())
		})
	})

	Describe("InRange", func() {
		It("is inclusive on both ends", func() {
			Expect(week.InRange("2024-W10", "2024-W10", "2024-W10")).To(BeTrue())
			Expect(week.InRange("2024-W09", "2024-W10", "2024-W12")).To(BeFalse())
			Expect(week.InRange("2024-W13", "2024-W10", "2024-W12")).To(BeFalse())
		})

		It("treats empty bounds as unbounded", func() {
			Expect(week.InRange("1999-W01", "", "2024-W12")).To(BeTrue())
			Expect(week.InRange("2099-W52", "2024-W10", "")).To(BeTrue())
			Expect(week.InRange("2024-W10", "", "")).To(BeTrue())
		})

		It("compares across years lexicographically", func() {
			Expect(week.InRange("2025-W01", "2024-W50", "2025-W02")).To(BeTrue())
		})
	})
})
