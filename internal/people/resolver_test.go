package people_test

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/hr-directory/internal"
	personDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/person"
	"github.com/frahmantamala/hr-directory/internal/people"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeFinder struct {
	rows       []*personDatamodel.Person
	err        error
	emailCalls []string
	nameCalls  []string
}

func (f *fakeFinder) FindByAcdcEmail(_ context.Context, email string) ([]*personDatamodel.Person, error) {
	f.emailCalls = append(f.emailCalls, email)
	if f.err != nil {
		return nil, f.err
	}
	var out []*personDatamodel.Person
	for _, r := range f.rows {
		if r.AcdcEmail != nil && strings.EqualFold(*r.AcdcEmail, email) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFinder) FindByFullName(_ context.Context, name string) ([]*personDatamodel.Person, error) {
	f.nameCalls = append(f.nameCalls, name)
	if f.err != nil {
		return nil, f.err
	}
	var out []*personDatamodel.Person
	for _, r := range f.rows {
		if strings.EqualFold(r.FullName, name) {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ = Describe("Resolve", func() {
	var (
		ctx    context.Context
		finder *fakeFinder
	)

	BeforeEach(func() {
		ctx = context.Background()
		finder = &fakeFinder{rows: []*personDatamodel.Person{
			{ID: 1, FullName: "John Smith", AcdcEmail: strPtr("john.a@acdc.org"), Department: "Engineering"},
			{ID: 2, FullName: "john smith", AcdcEmail: strPtr("john.b@acdc.org"), Department: "Design"},
			{ID: 3, FullName: "Jane Doe", AcdcEmail: strPtr("jane@acdc.org"), Department: "Engineering"},
		}}
	})

	It("requires an email or a full name", func() {
		_, err := people.Resolve(ctx, finder, people.NewIdentifier("  ", ""))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeMissingIdentifier))
		Expect(appErr.StatusCode).To(Equal(400))
	})

	It("uses only the email when both keys are supplied", func() {
		p, err := people.Resolve(ctx, finder, people.NewIdentifier("JANE@acdc.org", "John Smith"))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.ID).To(Equal(int64(3)))
		Expect(finder.emailCalls).To(Equal([]string{"JANE@acdc.org"}))
		Expect(finder.nameCalls).To(BeEmpty())
	})

	It("returns 404 when the email matches nobody, without trying the name", func() {
		_, err := people.Resolve(ctx, finder, people.NewIdentifier("ghost@acdc.org", "Jane Doe"))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodePersonNotFound))
		Expect(appErr.Message).To(ContainSubstring("ghost@acdc.org"))
		Expect(finder.nameCalls).To(BeEmpty())
	})

	It("resolves a unique name case-insensitively", func() {
		p, err := people.Resolve(ctx, finder, people.NewIdentifier("", "JANE DOE"))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.FullName).To(Equal("Jane Doe"))
	})

	It("lists every candidate when the name is ambiguous", func() {
		_, err := people.Resolve(ctx, finder, people.NewIdentifier("", "John Smith"))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(409))
		Expect(appErr.Code).To(Equal(internal.ErrCodeAmbiguousMatch))
		Expect(appErr.Message).To(ContainSubstring("Multiple people (2)"))

		details, ok := appErr.Details.(people.AmbiguousMatchDetails)
		Expect(ok).To(BeTrue())
		Expect(details.Count).To(Equal(2))
		Expect(details.Matches).To(HaveLen(2))
		Expect(details.Matches[0].ID).To(Equal(int64(1)))
		Expect(*details.Matches[1].AcdcEmail).To(Equal("john.b@acdc.org"))
	})

	It("wraps lookup failures", func() {
		boom := errors.New("connection reset")
		finder.err = boom
		_, err := people.Resolve(ctx, finder, people.NewIdentifier("", "Jane Doe"))
		Expect(err).To(MatchError(boom))
		_, isAppErr := internal.IsAppError(err)
		Expect(isAppErr).To(BeFalse())
	})
})
