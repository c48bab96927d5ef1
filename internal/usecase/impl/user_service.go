package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "librarian/internal/delivery/context"
	"librarian/internal/domain/entity"
	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/domain/password"
	"librarian/internal/domain/repository"
	"librarian/internal/domain/service"
	"librarian/internal/errors"
	"librarian/internal/usecase"

	"go.uber.org/fx"
)

// timingPassword is hashed once so that logins for unknown emails still
// pay for one bcrypt comparison.
const timingPassword = "timing-equalizer-Password1!"

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	metrics      service.LedgerMetrics
	logger       *slog.Logger
	dummyHash    string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Metrics      service.LedgerMetrics
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	dummyHash, err := params.Hasher.Hash(timingPassword)
	if err != nil {
		params.Logger.Warn("Failed to prepare timing hash", slog.Any("error", err))
	}

	return &userService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		metrics:      params.Metrics,
		logger:       params.Logger,
		dummyHash:    dummyHash,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// checkPassword converts the first policy violation into a validation error
// carrying the fix the caller should apply.
func checkPassword(plain string) error {
	if v := password.Validate(plain); v != nil {
		return domainerrors.ErrPasswordStrength.
			WithMessage(v.Message).
			WithDetails(string(v.Rule)).
			WithSuggestion(v.Suggestion)
	}

	return nil
}

// RegisterUser validates the password policy before touching storage, then
// creates the account with the librarian role.
func (srv *userService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*entity.Profile, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, domainerrors.ErrRequiredFieldsMissing.WithDetails("name and email are required")
	}

	if err := checkPassword(input.Password); err != nil {
		srv.log(ctx).Info("Registration rejected by password policy", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	_, err := srv.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domainerrors.ErrUserAlreadyExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, errors.Wrap(err, "failed to check email uniqueness")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         entity.RoleLibrarian,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID))

	return user.Profile(), nil
}

// Login answers unknown emails and wrong passwords identically; only the
// log line records which one happened.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrRequiredFieldsMissing.WithDetails("email and password are required")
	}

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to find user for login")
		}

		srv.hasher.Check(input.Password, srv.dummyHash)
		srv.log(ctx).Info("Login rejected", slog.String("email", email), slog.String("reason", "unknown email"))
		srv.metrics.LoginAttempt(service.LoginRejected)

		return nil, domainerrors.ErrInvalidCredentials
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.Any("userID", user.ID), slog.String("reason", "password mismatch"))
		srv.metrics.LoginAttempt(service.LoginRejected)

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.tokenService.Issue(user.ID, []string{user.Role.String()})
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage(err.Error())
	}

	srv.metrics.LoginAttempt(service.LoginSucceeded)

	return &usecase.LoginOutput{
		Token:     token,
		ExpiresIn: int64(srv.tokenService.TTL().Seconds()),
		User:      user.Profile(),
	}, nil
}

func (srv *userService) GetUser(ctx context.Context, id string) (*entity.Profile, error) {
	user, err := srv.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return user.Profile(), nil
}

func (srv *userService) ListUsers(ctx context.Context) ([]*entity.Profile, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	if len(users) == 0 {
		return nil, domainerrors.ErrUserNotFound.WithMessage("no users registered")
	}

	profiles := make([]*entity.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}

	return profiles, nil
}

// EditUser applies the non-nil fields. A new password goes through the
// policy and is re-hashed; a new email must not belong to another user.
func (srv *userService) EditUser(ctx context.Context, id string, input *usecase.EditUserInput) (*entity.Profile, error) {
	user, err := srv.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("name must not be empty")
		}
		user.Name = name
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("email must not be empty")
		}
		if email != user.Email {
			other, err := srv.userRepo.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, domainerrors.ErrUserAlreadyExists
			case err != nil && !errors.Is(err, repository.ErrUserNotFound):
				return nil, errors.Wrap(err, "failed to check email uniqueness")
			}
			user.Email = email
		}
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, domainerrors.ErrValidationFailed.
				WithMessage("unknown role").
				WithSuggestion("use admin or librarian")
		}
		user.Role = *input.Role
	}

	if input.Password != nil {
		if err := checkPassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := srv.hasher.Hash(*input.Password)
		if err != nil {
			return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
		}
		user.PasswordHash = hash
	}

	if err := srv.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, domainerrors.ErrUserAlreadyExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to update user")
	}

	return user.Profile(), nil
}

func (srv *userService) DeleteUser(ctx context.Context, id string) error {
	user, err := srv.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := srv.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}

		return errors.Wrap(err, "failed to delete user")
	}

	srv.log(ctx).Info("User deleted", slog.Any("userID", user.ID))

	return nil
}

func (srv *userService) findUser(ctx context.Context, rawID string) (*entity.User, error) {
	id, err := parseUserID(rawID)
	if err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}
