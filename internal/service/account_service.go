package service

import (
	"context"
	"mime/multipart"
	"strings"

	"incognitor/internal/auth"
	"incognitor/internal/models"
	"incognitor/internal/repository"
	"incognitor/internal/search"
	"incognitor/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxIdentifierLength = 255
	minPasswordLength   = 2
	tokenName           = "auth_token"
	peoplePageSize      = 5
)

// AccountService handles registration, sessions and profile management.
type AccountService struct {
	db     *gorm.DB
	users  repository.UserRepository
	tokens repository.TokenRepository
	store  *storage.LocalStore
	events *search.Publisher
}

type RegisterInput struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

type LoginInput struct {
	Identifier string
	Password   string
}

type UpdateProfileInput struct {
	UserID   uint
	Username string
	Email    string
	Avatar   *multipart.FileHeader
}

type ForgotPasswordInput struct {
	Identifier string
	Password   string
}

func NewAccountService(db *gorm.DB, users repository.UserRepository, tokens repository.TokenRepository, store *storage.LocalStore, events *search.Publisher) *AccountService {
	return &AccountService{db: db, users: users, tokens: tokens, store: store, events: events}
}

// Register creates the user and its first token in one transaction, so a
// failed token insert leaves no orphan user row.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	fields := map[string]string{}
	if in.Username == "" {
		fields["username"] = "The username field is required."
	} else if len(in.Username) > maxIdentifierLength {
		fields["username"] = "The username may not be greater than 255 characters."
	}
	if in.Email == "" {
		fields["email"] = "The email field is required."
	} else if !strings.Contains(in.Email, "@") || len(in.Email) > maxIdentifierLength {
		fields["email"] = "The email must be a valid email address."
	}
	if in.Password == "" {
		fields["password"] = "The password field is required."
	} else if len(in.Password) < minPasswordLength {
		fields["password"] = "The password must be at least 2 characters."
	} else if in.Password != in.PasswordConfirmation {
		fields["password"] = "The password confirmation does not match."
	}
	if len(fields) > 0 {
		return nil, "", models.NewFieldValidationError("Validation error", fields)
	}

	if taken, err := s.users.EmailTaken(ctx, in.Email, 0); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", models.NewFieldValidationError("Validation error", map[string]string{
			"email": "The email has already been taken.",
		})
	}
	if taken, err := s.users.UsernameTaken(ctx, in.Username, 0); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", models.NewFieldValidationError("Validation error", map[string]string{
			"username": "The username has already been taken.",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}

	var plain string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		var err error
		plain, err = auth.Issue(ctx, s.tokens.WithTx(tx), user.ID, tokenName)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	s.events.Publish(search.Event{Action: search.ActionPut, Kind: search.KindUser, ID: user.ID})
	return user, plain, nil
}

// Login resolves the identifier as email or username. An unknown
// identifier is a 404 and a bad password a 401, matching the behavior
// clients already depend on.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if in.Password == "" || len(in.Password) < minPasswordLength {
		return nil, "", models.NewFieldValidationError("Validation error", map[string]string{
			"password": "The password field is required.",
		})
	}

	user, err := s.users.GetByIdentifier(ctx, in.Identifier)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", models.NewNotFoundError("User", in.Identifier)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, "", models.NewUnauthorizedError("Password does not match our records.")
	}

	plain, err := auth.Issue(ctx, s.tokens, user.ID, tokenName)
	if err != nil {
		return nil, "", err
	}
	return user, plain, nil
}

// Logout revokes every token for the user, ending all sessions at once.
func (s *AccountService) Logout(ctx context.Context, userID uint) error {
	return s.tokens.DeleteAllForUser(ctx, userID)
}

func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies a partial update. The email uniqueness check
// excludes the caller's own row so resubmitting an unchanged email passes.
func (s *AccountService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		if len(in.Username) > maxIdentifierLength {
			return nil, models.NewFieldValidationError("Validation error", map[string]string{
				"username": "The username may not be greater than 255 characters.",
			})
		}
		user.Username = in.Username
	}
	if in.Email != "" {
		if !strings.Contains(in.Email, "@") || len(in.Email) > maxIdentifierLength {
			return nil, models.NewFieldValidationError("Validation error", map[string]string{
				"email": "The email must be a valid email address.",
			})
		}
		taken, err := s.users.EmailTaken(ctx, in.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewFieldValidationError("Validation error", map[string]string{
				"email": "The email has already been taken.",
			})
		}
		user.Email = in.Email
	}
	if in.Avatar != nil && s.store != nil {
		path, err := s.store.SaveUpload(in.Avatar)
		if err != nil {
			return nil, err
		}
		user.Avatar = path
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.events.Publish(search.Event{Action: search.ActionPut, Kind: search.KindUser, ID: user.ID})
	return user, nil
}

// ForgotPassword sets the new password directly. There is no reset-token
// or email round trip; the endpoint is rate limited instead.
func (s *AccountService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	if len(in.Password) < 8 {
		return models.NewFieldValidationError("Validation error", map[string]string{
			"password": "The password must be at least 8 characters.",
		})
	}

	user, err := s.users.GetByIdentifier(ctx, in.Identifier)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", in.Identifier)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	return s.users.Update(ctx, user)
}

// People lists users newest first, five per page.
func (s *AccountService) People(ctx context.Context, page int) ([]models.User, PageMeta, error) {
	if page < 1 {
		page = 1
	}
	users, total, err := s.users.ListPage(ctx, page, peoplePageSize)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return users, pageMeta(page, peoplePageSize, total), nil
}
