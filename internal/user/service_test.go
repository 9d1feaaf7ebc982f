package user_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	userDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-directory/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type memoryRepository struct {
	users  map[int64]*userDatamodel.User
	groups map[int64][]string
	known  map[string]bool
	nextID int64
	err    error
	// createErr fails only inserts, after the existence checks passed
	createErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users:  make(map[int64]*userDatamodel.User),
		groups: make(map[int64][]string),
		known:  make(map[string]bool),
	}
}

func (m *memoryRepository) Create(_ context.Context, u *userDatamodel.User, role *string) error {
	if m.err != nil {
		return m.err
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	u.ID = m.nextID
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().Add(time.Duration(m.nextID) * time.Second)
	}
	stored := *u
	m.users[u.ID] = &stored
	if role != nil {
		m.known[*role] = true
		m.groups[u.ID] = append(m.groups[u.ID], *role)
	}
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepository) List(_ context.Context, q user.ListQuery) ([]*userDatamodel.User, error) {
	var out []*userDatamodel.User
	for id := m.nextID; id > 0; id-- {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		if q.IsActive != nil && u.IsActive != *q.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepository) GroupsOf(_ context.Context, ids ...int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	for _, id := range ids {
		if g, ok := m.groups[id]; ok {
			out[id] = append([]string(nil), g...)
		}
	}
	return out, nil
}

func (m *memoryRepository) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return internal.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryRepository) ReplaceRole(_ context.Context, id int64, role *string) error {
	var kept []string
	for _, g := range m.groups[id] {
		if !auth.IsRoleGroup(g) {
			kept = append(kept, g)
		}
	}
	if role != nil {
		kept = append(kept, *role)
	}
	m.groups[id] = kept
	return nil
}

func (m *memoryRepository) EnsureGroups(_ context.Context, names []string) (int, error) {
	created := 0
	for _, n := range names {
		if !m.known[n] {
			m.known[n] = true
			created++
		}
	}
	return created, nil
}

func validRegistration() user.RegisterDTO {
	return user.RegisterDTO{
		Username:  "jdoe",
		Email:     "jdoe@acdc.org",
		Password:  "s3cure-pass",
		Password2: "s3cure-pass",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func appErrorOf(err error) *internal.AppError {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected an AppError, got %v", err)
	return appErr
}

func fieldsOf(err error) map[string]string {
	details, ok := appErrorOf(err).Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	return details.Fields()
}

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		repo    *memoryRepository
		service *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMemoryRepository()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, bcrypt.MinCost, slogger)
	})

	Describe("Register", func() {
		It("creates an active account with a hashed password and optional role", func() {
			dto := validRegistration()
			role := auth.GroupReadWrite
			dto.Role = &role

			u, err := service.Register(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.IsSuperuser).To(BeFalse())
			Expect(u.PasswordHash).NotTo(Equal(dto.Password))
			Expect(auth.VerifyPassword(u.PasswordHash, dto.Password)).To(Succeed())
			Expect(u.Groups).To(Equal([]string{auth.GroupReadWrite}))
			Expect(u.Role()).To(Equal(auth.GroupReadWrite))
		})

		It("treats a blank role as no role", func() {
			dto := validRegistration()
			blank := "  "
			dto.Role = &blank

			u, err := service.Register(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role()).To(Equal(auth.RoleNone))
			Expect(u.ToResponse().Groups).To(BeEmpty())
		})

		DescribeTable("rejects invalid registrations",
			func(mutate func(*user.RegisterDTO), field, message string) {
				dto := validRegistration()
				mutate(&dto)

				_, err := service.Register(ctx, dto)
				Expect(err).To(HaveOccurred())
				Expect(appErrorOf(err).StatusCode).To(Equal(400))
				Expect(fieldsOf(err)).To(HaveKeyWithValue(field, message))
				Expect(repo.users).To(BeEmpty())
			},
			Entry("username with spaces", func(d *user.RegisterDTO) { d.Username = "j doe" },
				"username", "Username cannot contain spaces."),
			Entry("short username", func(d *user.RegisterDTO) { d.Username = "jd" },
				"username", "Username must be at least 3 characters long."),
			Entry("bad email", func(d *user.RegisterDTO) { d.Email = "nope" },
				"email", "Enter a valid email address."),
			Entry("short password", func(d *user.RegisterDTO) { d.Password, d.Password2 = "abc12", "abc12" },
				"password", "This password is too short. It must contain at least 8 characters."),
			Entry("numeric password", func(d *user.RegisterDTO) { d.Password, d.Password2 = "12345678", "12345678" },
				"password", "This password is entirely numeric."),
			Entry("mismatched passwords", func(d *user.RegisterDTO) { d.Password2 = "something-else" },
				"password", "Password fields didn't match."),
			Entry("missing first name", func(d *user.RegisterDTO) { d.FirstName = " " },
				"first_name", "This field is required."),
			Entry("unknown role", func(d *user.RegisterDTO) { r := "HR_God"; d.Role = &r },
				"role", `"HR_God" is not a valid choice.`),
		)

		It("returns 409 for a taken username", func() {
			_, err := service.Register(ctx, validRegistration())
			Expect(err).NotTo(HaveOccurred())

			dto := validRegistration()
			dto.Email = "other@acdc.org"
			_, err = service.Register(ctx, dto)
			appErr := appErrorOf(err)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUsernameTaken))
		})

		It("returns 409 for an email taken in another case", func() {
			_, err := service.Register(ctx, validRegistration())
			Expect(err).NotTo(HaveOccurred())

			dto := validRegistration()
			dto.Username = "jdoe2"
			dto.Email = "JDOE@acdc.org"
			_, err = service.Register(ctx, dto)
			appErr := appErrorOf(err)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailConflict))
			Expect(fieldsOf(err)).To(HaveKey("email"))
		})

		It("keeps the conflict when a concurrent registration wins the insert", func() {
			repo.createErr = user.NewConflictError(user.EmailTaken)

			_, err := service.Register(ctx, validRegistration())
			appErr := appErrorOf(err)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailConflict))
			Expect(fieldsOf(err)).To(HaveKey("email"))
		})

		It("surfaces repository failures as plain errors", func() {
			repo.err = errors.New("disk full")
			_, err := service.Register(ctx, validRegistration())
			Expect(err).To(MatchError(ContainSubstring("disk full")))
		})
	})

	Describe("ChangePassword", func() {
		var id int64

		BeforeEach(func() {
			u, err := service.Register(ctx, validRegistration())
			Expect(err).NotTo(HaveOccurred())
			id = u.ID
		})

		It("changes the password when the old one matches", func() {
			err := service.ChangePassword(ctx, id, user.ChangePasswordDTO{
				OldPassword: "s3cure-pass", NewPassword: "n3w-secret", NewPassword2: "n3w-secret",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.VerifyPassword(repo.users[id].PasswordHash, "n3w-secret")).To(Succeed())
		})

		It("rejects a wrong old password", func() {
			err := service.ChangePassword(ctx, id, user.ChangePasswordDTO{
				OldPassword: "wrong-pass", NewPassword: "n3w-secret", NewPassword2: "n3w-secret",
			})
			Expect(fieldsOf(err)).To(HaveKeyWithValue("old_password", "Old password is not correct"))
			Expect(auth.VerifyPassword(repo.users[id].PasswordHash, "s3cure-pass")).To(Succeed())
		})

		It("rejects mismatched new passwords", func() {
			err := service.ChangePassword(ctx, id, user.ChangePasswordDTO{
				OldPassword: "s3cure-pass", NewPassword: "n3w-secret", NewPassword2: "n3w-secreT",
			})
			Expect(fieldsOf(err)).To(HaveKeyWithValue("new_password", "New password fields didn't match."))
		})

		It("rejects weak new passwords", func() {
			err := service.ChangePassword(ctx, id, user.ChangePasswordDTO{
				OldPassword: "s3cure-pass", NewPassword: "99999999", NewPassword2: "99999999",
			})
			Expect(fieldsOf(err)).To(HaveKeyWithValue("new_password", "This password is entirely numeric."))
		})
	})

	Describe("ListUsers", func() {
		BeforeEach(func() {
			for _, name := range []string{"alice", "bob", "carol"} {
				dto := validRegistration()
				dto.Username = name
				dto.Email = name + "@acdc.org"
				_, err := service.Register(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}
			repo.users[2].IsActive = false
		})

		It("lists newest first", func() {
			users, err := service.ListUsers(ctx, user.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(3))
			Expect(users[0].Username).To(Equal("carol"))
			Expect(users[2].Username).To(Equal("alice"))
		})

		It("filters by active flag", func() {
			inactive := false
			users, err := service.ListUsers(ctx, user.ListQuery{IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Username).To(Equal("bob"))
		})
	})

	Describe("AssignRole", func() {
		var targetID int64

		BeforeEach(func() {
			dto := validRegistration()
			readOnly := auth.GroupReadOnly
			dto.Role = &readOnly
			u, err := service.Register(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			targetID = u.ID
			repo.groups[targetID] = append(repo.groups[targetID], "Newsletter")
		})

		It("replaces the HR role and keeps other groups", func() {
			full := auth.GroupFullAccess
			u, err := service.AssignRole(ctx, 99, targetID, user.AssignRoleDTO{Role: &full})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role()).To(Equal(auth.GroupFullAccess))
			Expect(u.Groups).To(ConsistOf("Newsletter", auth.GroupFullAccess))
		})

		It("clears the role with null", func() {
			u, err := service.AssignRole(ctx, 99, targetID, user.AssignRoleDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role()).To(Equal(auth.RoleNone))
		})

		It("forbids changing your own role", func() {
			full := auth.GroupFullAccess
			_, err := service.AssignRole(ctx, targetID, targetID, user.AssignRoleDTO{Role: &full})
			appErr := appErrorOf(err)
			Expect(appErr.StatusCode).To(Equal(403))
			Expect(appErr.Code).To(Equal(internal.ErrCodeSelfModification))
			Expect(repo.groups[targetID]).To(ContainElement(auth.GroupReadOnly))
		})

		It("rejects unknown roles", func() {
			bogus := "HR_Everything"
			_, err := service.AssignRole(ctx, 99, targetID, user.AssignRoleDTO{Role: &bogus})
			Expect(fieldsOf(err)).To(HaveKey("role"))
		})

		It("returns 404 for unknown users", func() {
			_, err := service.AssignRole(ctx, 99, 12345, user.AssignRoleDTO{})
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("bootstrap helpers", func() {
		It("creates only the missing role groups", func() {
			repo.known[auth.GroupReadOnly] = true
			created, err := service.EnsureRoleGroups(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(2))

			created, err = service.EnsureRoleGroups(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeZero())
		})

		It("creates a superuser once", func() {
			created, err := service.EnsureSuperuser(ctx, "root", "root@acdc.org", "r00t-password")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(repo.users[1].IsSuperuser).To(BeTrue())
			Expect(repo.users[1].IsStaff).To(BeTrue())

			created, err = service.EnsureSuperuser(ctx, "root", "root@acdc.org", "r00t-password")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
		})

		DescribeTable("requires a usable superuser identity",
			func(username, email, field string) {
				_, err := service.EnsureSuperuser(ctx, username, email, "r00t-password")
				Expect(appErrorOf(err).StatusCode).To(Equal(400))
				Expect(fieldsOf(err)).To(HaveKey(field))
				Expect(repo.users).To(BeEmpty())
			},
			Entry("missing email", "root", "", "email"),
			Entry("malformed email", "root", "root-at-acdc", "email"),
			Entry("missing username", " ", "root@acdc.org", "username"),
		)

		It("reports a taken email instead of failing on insert", func() {
			created, err := service.EnsureSuperuser(ctx, "root", "root@acdc.org", "r00t-password")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			_, err = service.EnsureSuperuser(ctx, "admin", "ROOT@acdc.org", "r00t-password")
			appErr := appErrorOf(err)
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailConflict))
			Expect(repo.users).To(HaveLen(1))
		})

		It("refuses a weak superuser password", func() {
			_, err := service.EnsureSuperuser(ctx, "root", "root@acdc.org", "short")
			Expect(fieldsOf(err)).To(HaveKey("password"))
			Expect(repo.users).To(BeEmpty())
		})
	})
})
