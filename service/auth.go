package service

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/mishastik78/yamdb-final/models"
	"github.com/mishastik78/yamdb-final/store"
	"github.com/mishastik78/yamdb-final/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the persistence layer the handshake needs.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	SetConfirmationCode(ctx context.Context, id primitive.ObjectID, hash string) error
	ClearConfirmationCode(ctx context.Context, id primitive.ObjectID) error
}

type TokenIssuer interface {
	Issue(userID primitive.ObjectID) (refresh, access string, err error)
}

// AuthService runs the passwordless handshake: a code lands in the mailbox,
// the code comes back in exchange for a token pair.
type AuthService struct {
	Users  UserStore
	Tokens TokenIssuer
	Mailer Mailer
	// FailSilently restores the legacy behavior of reporting success even
	// when the confirmation email cannot be sent.
	FailSilently bool
	// ReusableCodes keeps a code valid after a successful exchange instead
	// of clearing it (legacy behavior).
	ReusableCodes bool
}

// RequestCode finds or creates the user for the email, stores a fresh
// confirmation code (overwriting any previous one) and mails the code.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return validation("enter a valid email address.")
	}
	email = strings.ToLower(addr.Address)

	user, err := s.Users.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		user = &models.User{
			Email:     email,
			Username:  email,
			Role:      models.RoleUser,
			CreatedAt: time.Now(),
		}
		id, err := s.Users.CreateUser(ctx, user)
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			// A concurrent first-contact request won the insert; use its user.
			user, err = s.Users.UserByEmail(ctx, email)
			if err != nil {
				return err
			}
			if user == nil {
				return store.ErrDuplicateEmail
			}
		case err != nil:
			return err
		default:
			user.ID = id
		}
	}

	code := utils.NewConfirmationCode(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Users.SetConfirmationCode(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	if err := s.Mailer.SendConfirmationCode(email, code); err != nil {
		if s.FailSilently {
			log.Printf("auth: confirmation code send to %s failed: %v", email, err)
			return nil
		}
		return dispatch("failed to send confirmation code")
	}
	return nil
}

// ExchangeCode trades a confirmation code for a (refresh, access) token
// pair. The stored hash matches only the exact code that was issued; any
// difference in case or whitespace fails.
func (s *AuthService) ExchangeCode(ctx context.Context, email, code string) (refresh, access string, err error) {
	user, err := s.Users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", notFound("user not found.")
	}
	if user.ConfirmationCode == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(code)) != nil {
		return "", "", authFailed("User and confirmation_code not recognized.")
	}

	refresh, access, err = s.Tokens.Issue(user.ID)
	if err != nil {
		return "", "", err
	}
	if !s.ReusableCodes {
		if err := s.Users.ClearConfirmationCode(ctx, user.ID); err != nil {
			log.Printf("auth: clearing confirmation code for %s failed: %v", user.Email, err)
		}
	}
	return refresh, access, nil
}
