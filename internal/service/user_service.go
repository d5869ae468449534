package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"picvault/internal/audit"
	"picvault/internal/auth"
	"picvault/internal/domain"
	"picvault/internal/errcode"
	"picvault/internal/repository"
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

const passwordSymbols = ".@$!%*#_~?&^"

// RegisterInput carries a registration request.
type RegisterInput struct {
	UserName    string
	PhoneNumber string
	Password    string
	Remark      string
}

// UserPatch lists exactly the fields an authorized edit may touch. Zero
// values mean "leave unchanged"; Disabled is honored for admins only.
type UserPatch struct {
	ID       int64
	UserName string
	Password string
	Disabled *bool
}

// UserService describes user lifecycle and session operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput, ip string) (*domain.User, error)
	Login(ctx context.Context, phone, password, ip string) (*domain.User, string, time.Time, error)
	Logout(ctx context.Context, user *domain.User, ip string) error
	ValidateSession(ctx context.Context, token string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, nameLike string, pageNum, pageSize int) ([]domain.User, domain.Page, error)
	Update(ctx context.Context, actor *domain.User, patch UserPatch, ip string) (*domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	tokens   *auth.Manager
	recorder *audit.Recorder
}

func NewUserService(users repository.UserRepository, tokens *auth.Manager, recorder *audit.Recorder) UserService {
	return &userService{
		users:    users,
		tokens:   tokens,
		recorder: recorder,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput, ip string) (*domain.User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := validateUserName(in.UserName); err != nil {
		return nil, err
	}
	if err := validatePhone(in.PhoneNumber); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if existing, err := s.users.GetByUserName(ctx, in.UserName); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errcode.ErrUserNameExists
	}
	if existing, err := s.users.GetByPhone(ctx, in.PhoneNumber); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errcode.ErrPhoneExists
	}

	salt := auth.NewSalt()
	user := &domain.User{
		UserName:     in.UserName,
		PhoneNumber:  in.PhoneNumber,
		Salt:         salt,
		PasswordHash: auth.HashPassword(in.Password, salt),
		Role:         domain.RoleDefault,
		Remark:       in.Remark,
	}

	// The very first account becomes the admin and is pinned to id 1.
	admin, err := s.users.GetByID(ctx, 1)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		user.ID = 1
		user.Role = domain.RoleAdmin
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errcode.ErrUserNameExists
		}
		return nil, err
	}

	s.recorder.UserCreated(user, ip)
	return user, nil
}

func (s *userService) Login(ctx context.Context, phone, password, ip string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, password, user.Salt) {
		return nil, "", time.Time{}, errcode.ErrUserValidate
	}
	if user.Disabled {
		return nil, "", time.Time{}, errcode.ErrAccountDisabled
	}

	now := time.Now().UTC()
	token, expiresAt, err := s.tokens.Issue(user, now)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	// Overwriting current_token is the single-session mechanism: any
	// previously issued credential stops validating, expired or not.
	// Concurrent logins race and the last write wins.
	if err := s.users.SetCurrentToken(ctx, user.ID, token, &now); err != nil {
		return nil, "", time.Time{}, err
	}
	user.CurrentToken = token
	user.LastLoginTime = now

	s.recorder.UserLogin(user, ip)
	return user, token, expiresAt, nil
}

func (s *userService) Logout(ctx context.Context, user *domain.User, ip string) error {
	if err := s.users.SetCurrentToken(ctx, user.ID, "", nil); err != nil {
		return err
	}
	user.CurrentToken = ""
	s.recorder.UserLogout(user, ip)
	return nil
}

// ValidateSession resolves a bearer credential to its user record. The
// credential must verify cryptographically, the user must still exist and be
// enabled, and the credential must equal the stored current_token; anything
// older has been superseded by a newer login or cleared by logout.
func (s *userService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, errcode.ErrUnauthorized.WithDetail("token expired")
		}
		return nil, errcode.ErrUnauthorized.WithDetail("invalid token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errcode.ErrUnauthorized.WithDetail("user no longer exists")
	}
	if user.Disabled {
		return nil, errcode.ErrAccountDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(user.CurrentToken)) != 1 {
		return nil, errcode.ErrSessionSuperseded
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errcode.ErrNotFound
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, nameLike string, pageNum, pageSize int) ([]domain.User, domain.Page, error) {
	return s.users.List(ctx, nameLike, pageNum, pageSize)
}

func (s *userService) Update(ctx context.Context, actor *domain.User, patch UserPatch, ip string) (*domain.User, error) {
	if !actor.IsAdmin() && patch.ID != actor.ID {
		return nil, errcode.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, patch.ID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errcode.ErrNotFound
	}

	if patch.UserName != "" && patch.UserName != target.UserName {
		if err := validateUserName(patch.UserName); err != nil {
			return nil, err
		}
		target.UserName = patch.UserName
	}
	if patch.Password != "" {
		if err := validatePassword(patch.Password); err != nil {
			return nil, err
		}
		target.Salt = auth.NewSalt()
		target.PasswordHash = auth.HashPassword(patch.Password, target.Salt)
	}
	if patch.Disabled != nil && actor.IsAdmin() {
		target.Disabled = *patch.Disabled
	}

	if err := s.users.Update(ctx, target); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errcode.ErrUserNameExists
		}
		return nil, err
	}

	note := "account edited"
	if actor.ID != target.ID {
		note = "account edited by admin"
	}
	s.recorder.UserUpdated(actor, target, ip, note)
	return target, nil
}

func validateUserName(name string) error {
	if name == "" || len([]rune(name)) > 35 {
		return errcode.ErrInvalidArgument.WithDetail("username must be 1-35 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return errcode.ErrInvalidArgument.WithDetail("invalid phone number")
	}
	return nil
}

// validatePassword enforces 8-20 characters with at least one digit, one
// lower and one upper case letter; only letters, digits and .@$!%*#_~?&^
// are allowed.
func validatePassword(password string) error {
	detail := "password must be 8-20 characters and contain upper and lower case letters and digits"
	if len(password) < 8 || len(password) > 20 {
		return errcode.ErrInvalidArgument.WithDetail(detail)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return errcode.ErrInvalidArgument.WithDetail(detail)
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errcode.ErrInvalidArgument.WithDetail(detail)
	}
	return nil
}
