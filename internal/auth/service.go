package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/internal/profiles"
	pkgauth "github.com/krishimitra/marketplace-backend/pkg/auth"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service handles signup and login for both marketplace roles.
type Service interface {
	RegisterFarmer(ctx context.Context, req RegisterFarmerRequest) (*AuthResponse, error)
	RegisterDealer(ctx context.Context, req RegisterDealerRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Profiles    profiles.Repository
	Tx          txRunner
	JWTConfig   config.JWTConfig
	PasswordCfg config.PasswordConfig
}

type service struct {
	profiles    profiles.Repository
	tx          txRunner
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		profiles:    params.Profiles,
		tx:          params.Tx,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordCfg,
		now:         time.Now,
	}, nil
}

func (s *service) RegisterFarmer(ctx context.Context, req RegisterFarmerRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" || strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, phone and password are required")
	}
	if !isPhone(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be a 10-digit number")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	email := profiles.SyntheticEmail(phone)
	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)

		if err := s.ensureEmailFree(ctx, repo, email); err != nil {
			return err
		}

		created, err := repo.CreateUser(ctx, &models.User{
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  name,
			Role:         enums.ActorRoleFarmer,
			IsActive:     true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created

		err = repo.CreateFarmerProfile(ctx, &models.FarmerProfile{
			UserID: created.ID,
			Name:   name,
			Phone:  phone,
			Aadhar: strings.TrimSpace(req.Aadhar),
			State:  strings.TrimSpace(req.State),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create farmer profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

func (s *service) RegisterDealer(ctx context.Context, req RegisterDealerRequest) (*AuthResponse, error) {
	businessName := strings.TrimSpace(req.BusinessName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if businessName == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name, email and password are required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)

		if err := s.ensureEmailFree(ctx, repo, email); err != nil {
			return err
		}

		created, err := repo.CreateUser(ctx, &models.User{
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  businessName,
			Role:         enums.ActorRoleDealer,
			IsActive:     true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created

		err = repo.CreateDealerProfile(ctx, &models.DealerProfile{
			UserID:       created.ID,
			BusinessName: businessName,
			ContactName:  strings.TrimSpace(req.ContactName),
			BusinessType: strings.TrimSpace(req.BusinessType),
			Email:        email,
			Phone:        strings.TrimSpace(req.Phone),
			State:        strings.TrimSpace(req.State),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create dealer profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		if phone := strings.TrimSpace(req.Phone); isPhone(phone) {
			email = profiles.SyntheticEmail(phone)
		}
	}
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credentials are required")
	}

	user, err := s.profiles.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	match, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if err := s.profiles.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	return s.issueSession(user)
}

func (s *service) ensureEmailFree(ctx context.Context, repo profiles.Repository, email string) error {
	if _, err := repo.FindUserByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "account already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check account email")
	}
	return nil
}

func (s *service) issueSession(user *models.User) (*AuthResponse, error) {
	now := s.now().UTC()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID:      user.ID,
		Role:        user.Role,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User: SessionUser{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
	}, nil
}

func isPhone(value string) bool {
	if len(value) != 10 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
