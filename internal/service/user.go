package service

import (
	"AssetVault/internal/apperr"
	"AssetVault/internal/dto"
	"AssetVault/model"
	"AssetVault/utils"
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// UserStore is the user half of the ledger.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type UserService struct {
	users    UserStore
	tokens   *utils.TokenManager
	activity activityRecorder
	logger   *slog.Logger
}

func NewUserService(users UserStore, tokens *utils.TokenManager, activity ActivityStore, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		tokens:   tokens,
		activity: activityRecorder{store: activity, logger: logger},
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register hashes the password and creates a user with role "user".
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	return s.create(ctx, req, model.RoleUser)
}

func (s *UserService) create(ctx context.Context, req dto.RegisterRequest, role string) (*model.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password failed", err)
	}
	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Wrap(apperr.Conflict, "email already exists", err)
		}
		return nil, apperr.Wrap(apperr.StorageUnavailable, "ledger unavailable", err)
	}
	s.activity.record(ctx, model.EventRegister, user.ID, nil, "registered "+user.Email)
	return user, nil
}

// Login checks the credentials and issues a bearer token carrying {id, role}.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.New(apperr.InvalidLogin, "invalid credentials")
		}
		return "", nil, apperr.Wrap(apperr.StorageUnavailable, "ledger unavailable", err)
	}
	if !utils.CheckPwd(req.Password, user.Password) {
		return "", nil, apperr.New(apperr.InvalidLogin, "invalid credentials")
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Internal, "issue token failed", err)
	}
	s.activity.record(ctx, model.EventLogin, user.ID, nil, "logged in")
	return token, user, nil
}

// Profile returns the caller's user record.
func (s *UserService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, apperr.Wrap(apperr.StorageUnavailable, "ledger unavailable", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageUnavailable, "ledger unavailable", err)
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap administrator when no user has that email yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := s.create(ctx, dto.RegisterRequest{Name: "admin", Email: email, Password: password}, model.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", slog.String("email", normalizeEmail(email)))
	return nil
}
