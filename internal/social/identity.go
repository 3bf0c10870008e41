package social

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
)

// Register creates a user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, uow UnitOfWork, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, apperr.New(apperr.Invalid, "Name is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.New(apperr.Invalid, "Email is not valid")
	}
	if len(password) < minPasswordLen {
		return nil, apperr.Newf(apperr.Invalid, "Password must be at least %d characters", minPasswordLen)
	}

	existing, err := uow.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := uow.Users().Create(ctx, u); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, uow UnitOfWork, email, password string) (*models.User, error) {
	u, err := uow.Users().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, uow UnitOfWork, id uint) (*models.User, error) {
	return uow.Users().ByID(ctx, id)
}

func (s *Service) FindUserByEmail(ctx context.Context, uow UnitOfWork, email string) (*models.User, error) {
	u, err := uow.Users().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// SetTimezone stores an IANA zone name; an empty name resets to UTC.
func (s *Service) SetTimezone(ctx context.Context, uow UnitOfWork, userID uint, tz string) (*models.User, error) {
	u, err := uow.Users().ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tz = strings.TrimSpace(tz)
	if tz == "" {
		u.Timezone = nil
	} else {
		// "Local" would make feeds follow the server's zone.
		if _, err := time.LoadLocation(tz); err != nil || tz == "Local" {
			return nil, apperr.Newf(apperr.Invalid, "Unknown timezone %q", tz)
		}
		u.Timezone = &tz
	}
	if err := uow.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, uow UnitOfWork, userID uint, current, next string) error {
	u, err := uow.Users().ByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(current)) != nil {
		return ErrWrongPassword
	}
	if len(next) < minPasswordLen {
		return apperr.Newf(apperr.Invalid, "Password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return uow.Users().Save(ctx, u)
}

// CalendarToken returns the user's feed token, issuing one on first use.
func (s *Service) CalendarToken(ctx context.Context, uow UnitOfWork, userID uint) (string, error) {
	u, err := uow.Users().ByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.CalendarToken != nil && *u.CalendarToken != "" {
		return *u.CalendarToken, nil
	}
	return s.issueCalendarToken(ctx, uow, u)
}

// RotateCalendarToken invalidates the current feed URL.
func (s *Service) RotateCalendarToken(ctx context.Context, uow UnitOfWork, userID uint) (string, error) {
	u, err := uow.Users().ByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.issueCalendarToken(ctx, uow, u)
}

func (s *Service) issueCalendarToken(ctx context.Context, uow UnitOfWork, u *models.User) (string, error) {
	token, err := s.tokens.CalendarToken()
	if err != nil {
		return "", fmt.Errorf("generate calendar token: %w", err)
	}
	u.CalendarToken = &token
	if err := uow.Users().Save(ctx, u); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) UserByCalendarToken(ctx context.Context, uow UnitOfWork, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrCalendarMissing
	}
	u, err := uow.Users().FindByCalendarToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrCalendarMissing
	}
	return u, nil
}

// DeleteAccount removes the user together with everything that references it.
func (s *Service) DeleteAccount(ctx context.Context, uow UnitOfWork, userID uint) error {
	if _, err := uow.Users().ByID(ctx, userID); err != nil {
		return err
	}
	return uow.Users().Delete(ctx, userID)
}

// Location resolves the user's stored timezone, falling back to UTC.
func Location(u *models.User) *time.Location {
	if u == nil || u.Timezone == nil || *u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(*u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
