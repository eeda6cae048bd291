package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

// DuplicateKeyError reports a unique-key collision detected inside a write
// transaction, carrying the offending field and value.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("a user with %s %q already exists", e.Field, e.Value)
}

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// CreateUserWithProfile creates a User and its role profile (one of sp/stp
		// may be nil) as one atomic unit: on any failure no record survives.
		// A secondary unique-key collision surfaces as *DuplicateKeyError.
		CreateUserWithProfile(ctx context.Context, usr User, sp *StudentProfile, stp *StaffProfile) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		GetStudentProfile(ctx context.Context, userID string) (StudentProfile, error)
		GetStaffProfile(ctx context.Context, userID string) (StaffProfile, error)
		// StudentRosterBySection maps roll numbers to student user IDs for a section.
		StudentRosterBySection(ctx context.Context, sectionID string) (map[string]string, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) Repo() Repository { return svc.repo }

func (svc *Service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr, "")
	return usr, nil
}

// Provision atomically creates a User plus its role profile with a generated
// initial password. The caller owns any notification about the credentials.
func (svc *Service) Provision(ctx context.Context, usr User, sp *StudentProfile, stp *StaffProfile) (User, string, error) {
	now := time.Now().UTC()
	usr.CreatedAt = now
	usr.UpdatedAt = now
	usr.SetActive(true)

	pwd := core.RandomString(12)
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, "", errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUserWithProfile(ctx, usr, sp, stp)
	if err != nil {
		return User{}, "", err
	}
	return usr, pwd, nil
}

// WelcomeMessage builds the welcome email for a freshly created account.
// pwd is only set for provisioned accounts whose initial password was generated.
func WelcomeMessage(usr User, pwd string) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + core.Conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct {
			Name     string
			Username string
			Password string
		}{usr.Name, usr.Username, pwd},
	}
}

func (svc *Service) sendWelcomeEmail(usr User, pwd string) {
	if usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(WelcomeMessage(usr, pwd))
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: []string{uname}})
}

func (svc *Service) GetStudentProfile(ctx context.Context, userID string) (StudentProfile, error) {
	return svc.repo.GetStudentProfile(ctx, userID)
}

func (svc *Service) GetStaffProfile(ctx context.Context, userID string) (StaffProfile, error) {
	return svc.repo.GetStaffProfile(ctx, userID)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// RequestPasswordReset emails a password reset link to the user, if they exist.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return nil // do not leak account existence
		}
		return err
	}

	token := makeToken(usr)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{usr.Name, EncodeUID(usr), token},
	})
	return nil
}

// ConfirmPasswordReset verifies the reset token and sets the new password.
func (svc *Service) ConfirmPasswordReset(ctx context.Context, rp ResetUserPassword) (User, error) {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}
