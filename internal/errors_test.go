package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/hr-directory/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("matches sentinels through wrapping", func() {
		err := fmt.Errorf("load person: %w", internal.ErrPersonNotFound)

		Expect(errors.Is(err, internal.ErrPersonNotFound)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeFalse())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("matches fresh errors with the same type and code", func() {
		err := internal.NewNotFoundError("gone", internal.ErrCodePersonNotFound)
		Expect(errors.Is(err, internal.ErrPersonNotFound)).To(BeTrue())
	})

	It("does not treat plain errors as app errors", func() {
		_, ok := internal.IsAppError(errors.New("boom"))
		Expect(ok).To(BeFalse())
	})

	It("renders the error envelope", func() {
		err := internal.NewValidationFieldErrors([]internal.ValidationError{
			{Field: "full_name", Message: "This field is required.", Code: string(internal.ErrCodeRequired)},
			{Field: "start_date", Message: "Enter a valid date.", Code: string(internal.ErrCodeInvalidDate)},
		})

		status, body := err.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusBadRequest))

		raw, marshalErr := json.Marshal(body)
		Expect(marshalErr).NotTo(HaveOccurred())

		var decoded struct {
			Error struct {
				Type    string `json:"type"`
				Code    string `json:"code"`
				Details struct {
					Errors []internal.ValidationError `json:"errors"`
					Fields map[string]string          `json:"fields"`
				} `json:"details"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded.Error.Type).To(Equal(string(internal.ErrorTypeValidation)))
		Expect(decoded.Error.Details.Errors).To(HaveLen(2))
		Expect(decoded.Error.Details.Fields).To(HaveKeyWithValue("full_name", "This field is required."))
		Expect(decoded.Error.Details.Fields).To(HaveKeyWithValue("start_date", "Enter a valid date."))
	})

	It("uses the first validation message as its error string", func() {
		err := internal.NewValidationFieldError("email", "Enter a valid email address.", internal.ErrCodeInvalidEmail)
		Expect(err.Error()).To(Equal("Enter a valid email address."))
		Expect(err.GetDetailedMessage()).To(Equal("email: Enter a valid email address."))
	})

	It("hides the cause from clients but keeps it for logs", func() {
		cause := errors.New("pq: connection reset")
		err := internal.NewInternalError("Internal server error", cause)

		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("connection reset"))

		raw, marshalErr := json.Marshal(err)
		Expect(marshalErr).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("connection reset"))
	})
})
