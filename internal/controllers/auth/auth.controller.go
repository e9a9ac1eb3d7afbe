package authController

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"riego/internal/database"
	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const (
	RESOURCE = "cuenta"

	ErrMsgShortUsername     = "El nombre de usuario debe tener al menos 3 caracteres."
	ErrMsgInvalidEmail      = "Introduzca una dirección de correo válida."
	ErrMsgDuplicateUsername = "Ya existe un usuario con este nombre."
	ErrMsgDuplicateEmail    = "Ya existe un usuario con este correo."
	ErrMsgUnknownEmail      = "No existe un usuario con este correo."

	MSG_RESET_SENT       = "Correo enviado"
	MSG_PASSWORD_CHANGED = "Contraseña cambiada correctamente"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetData struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

type PasswordResetResponse struct {
	Message string            `json:"message"`
	Data    PasswordResetData `json:"data"`
}

type SetPasswordRequest struct {
	UID       string `json:"uid"`
	Token     string `json:"token"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthControllerInterface interface {
	Register(ctx context.Context, request RegisterRequest) (*UserProfile, error)
	Login(ctx context.Context, request LoginRequest) (*services.TokenPair, error)
	Refresh(ctx context.Context, request RefreshRequest) (*RefreshResponse, error)
	RequestPasswordReset(ctx context.Context, request PasswordResetRequest) (*PasswordResetResponse, error)
	SetPassword(ctx context.Context, request SetPasswordRequest) (*MessageResponse, error)
	Profile(ctx context.Context, userID int) (*UserProfile, error)
}

type AuthController struct {
	userRepo    repositories.UserRepository
	tokens      *services.TokenService
	transaction *services.TransactionService
	metrics     *services.MetricsService
	db          database.DB
	now         func() time.Time
	log         logger.Logger
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		userRepo:    repos.User,
		tokens:      services.Token,
		transaction: services.Transaction,
		metrics:     services.Metrics,
		db:          db,
		now:         time.Now,
		log:         logger.New("authController"),
	}
}

func (c *AuthController) validateRegistration(
	ctx context.Context,
	tx *gorm.DB,
	request RegisterRequest,
) error {
	verr := ValidatePasswordPair(request.Password, request.Password2)

	if !ValidateUsername(request.Username) {
		verr.Add("username", ErrMsgShortUsername)
	} else if exists, err := c.userRepo.UsernameExists(ctx, tx, request.Username); err != nil {
		return err
	} else if exists {
		verr.Add("username", ErrMsgDuplicateUsername)
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(request.Email)); err != nil {
		verr.Add("email", ErrMsgInvalidEmail)
	} else if exists, err := c.userRepo.EmailExists(ctx, tx, request.Email); err != nil {
		return err
	} else if exists {
		verr.Add("email", ErrMsgDuplicateEmail)
	}

	return verr.OrNil()
}

func (c *AuthController) Register(ctx context.Context, request RegisterRequest) (*UserProfile, error) {
	log := c.log.Function("Register")

	user := &User{
		Username: strings.TrimSpace(request.Username),
		Email:    strings.TrimSpace(request.Email),
		IsActive: true,
	}

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.validateRegistration(ctx, tx, request); err != nil {
			return err
		}
		if err := user.SetPassword(request.Password); err != nil {
			return err
		}
		return c.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, log.Err("failed to register user", err))
	}

	log.Info("User registered", "userID", user.ID)
	profile := user.ToProfile()
	return &profile, nil
}

// Login checks the credentials of an active user and issues a token pair.
// Every failure is reported as ErrUnauthorized.
func (c *AuthController) Login(ctx context.Context, request LoginRequest) (*services.TokenPair, error) {
	log := c.log.Function("Login")

	var pair services.TokenPair
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		user, err := c.userRepo.GetByUsername(ctx, tx, request.Username)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.ErrUnauthorized
			}
			return err
		}

		if !user.IsActive || !user.CheckPassword(request.Password) {
			return types.ErrUnauthorized
		}

		user.MarkLogin(c.now().UTC())
		if err := c.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}

		pair, err = c.tokens.IssuePair(user)
		return err
	})
	if err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			log.Warn("Rejected login", "username", request.Username)
			return nil, err
		}
		return nil, log.Err("failed to log in", err)
	}

	return &pair, nil
}

func (c *AuthController) Refresh(ctx context.Context, request RefreshRequest) (*RefreshResponse, error) {
	if strings.TrimSpace(request.Refresh) == "" {
		return nil, types.FieldError("refresh", types.MSG_REQUIRED)
	}

	access, err := c.tokens.Refresh(request.Refresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	return &RefreshResponse{Access: access}, nil
}

// RequestPasswordReset returns the reset credentials instead of mailing them.
func (c *AuthController) RequestPasswordReset(
	ctx context.Context,
	request PasswordResetRequest,
) (*PasswordResetResponse, error) {
	log := c.log.Function("RequestPasswordReset")

	user, err := c.userRepo.GetByEmail(ctx, c.transaction.DB(ctx), request.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, c.metrics.TrackValidation(RESOURCE, types.FieldError("email", ErrMsgUnknownEmail))
		}
		return nil, err
	}

	uid, token, err := c.tokens.IssuePasswordReset(user)
	if err != nil {
		return nil, log.Err("failed to issue reset token", err, "userID", user.ID)
	}

	log.Info("Password reset requested", "userID", user.ID)
	return &PasswordResetResponse{
		Message: MSG_RESET_SENT,
		Data:    PasswordResetData{UID: uid, Token: token},
	}, nil
}

// SetPassword completes a reset. Bad uids and stale, tampered or reused
// tokens all surface as ErrInvalidToken and leave the password untouched.
func (c *AuthController) SetPassword(
	ctx context.Context,
	request SetPasswordRequest,
) (*MessageResponse, error) {
	log := c.log.Function("SetPassword")

	if verr := ValidatePasswordPair(request.Password, request.Password2); verr.HasErrors() {
		return nil, c.metrics.TrackValidation(RESOURCE, verr)
	}

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		userID, err := services.DecodeUID(request.UID)
		if err != nil {
			return err
		}

		user, err := c.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("%w: unknown user", types.ErrInvalidToken)
			}
			return err
		}

		if err := c.tokens.VerifyPasswordReset(user, request.Token); err != nil {
			return err
		}

		if err := user.SetPassword(request.Password); err != nil {
			return err
		}
		return c.userRepo.Update(ctx, tx, user)
	})
	if err != nil {
		return nil, log.Err("failed to set password", err)
	}

	return &MessageResponse{Message: MSG_PASSWORD_CHANGED}, nil
}

func (c *AuthController) Profile(ctx context.Context, userID int) (*UserProfile, error) {
	user, err := c.userRepo.GetByID(ctx, c.transaction.DB(ctx), userID)
	if err != nil {
		return nil, err
	}
	profile := user.ToProfile()
	return &profile, nil
}
