package validation_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("Validation", func() {
	Describe("ValidateEntryInput", func() {
		It("accepts a complete entry", func() {
			Expect(validation.ValidateEntryInput("p1", 8, "2024-W10", "")).To(BeNil())
		})

		It("requires a project", func() {
			err := validation.ValidateEntryInput("", 8, "2024-W10", "")
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeProjectRequired))
			Expect(err.StatusCode).To(Equal(400))
		})

		DescribeTable("rejects non-positive hours",
			func(hours float64) {
				err := validation.ValidateEntryInput("p1", hours, "2024-W10", "")
				Expect(err).NotTo(BeNil())
				Expect(err.Code).To(Equal(internal.ErrCodeInvalidHours))
			},
			Entry("zero", 0.0),
			Entry("negative", -2.5),
		)

		It("rejects a malformed week", func() {
			err := validation.ValidateEntryInput("p1", 8, "2024-10", "")
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeInvalidWeek))
		})

		It("reports every failing field and leads with the first", func() {
			err := validation.ValidateEntryInput("", 0, "", "")
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))
			Expect(err.Error()).To(Equal("Selecciona un proyecto"))

			details, ok := err.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(3))
		})
	})

	Describe("ValidateProjectName", func() {
		It("rejects blank names", func() {
			err := validation.ValidateProjectName("   ")
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeProjectNameRequired))
		})
	})

	Describe("ValidateWeekRange", func() {
		It("allows open bounds", func() {
			Expect(validation.ValidateWeekRange("", "")).To(BeNil())
			Expect(validation.ValidateWeekRange("2024-W01", "")).To(BeNil())
		})

		It("rejects a bad bound", func() {
			Expect(validation.ValidateWeekRange("2024-W01", "W05")).NotTo(BeNil())
		})
	})

	Describe("ValidateStatusFilter", func() {
		It("accepts known statuses and all", func() {
			Expect(validation.ValidateStatusFilter("all")).To(BeNil())
			Expect(validation.ValidateStatusFilter("pending")).To(BeNil())
			Expect(validation.ValidateStatusFilter("")).To(BeNil())
		})

		It("rejects anything else", func() {
			err := validation.ValidateStatusFilter("done")
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeInvalidStatus))
		})
	})
})
