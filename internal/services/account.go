package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/pdf"
	"github.com/corequote/corequote/internal/storage"
	"github.com/corequote/corequote/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

// LogoUpload is a logo file posted with the company profile form.
type LogoUpload struct {
	Filename string
	Data     []byte
}

// AccountService manages users, passwords and company profiles.
type AccountService struct {
	db    *gorm.DB
	store storage.Storage
}

func NewAccountService(db *gorm.DB, store storage.Storage) *AccountService {
	return &AccountService{db: db, store: store}
}

// Register creates a user from the signup form.
func (s *AccountService) Register(ctx context.Context, in forms.SignupInput) (*models.User, error) {
	if v := in.Validate(); v != nil {
		return nil, invalid(v)
	}
	if err := s.checkEmail(ctx, in.Email, 0); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Email: in.Email, Name: in.Name, Password: string(hash)}
	if err := s.db.WithContext(ctx).Omit("CompanyProfile").Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, invalid(validation.Violations{"email": "email_taken"})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate returns the user for a matching email and password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AccountService) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Exists reports whether a user row still exists for a session.
func (s *AccountService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		log.Printf("session check for user %d: %v", id, err)
		return false
	}
	return n > 0
}

// UpdateAccount changes the user's name and email.
func (s *AccountService) UpdateAccount(ctx context.Context, userID uint, in forms.AccountInput) (*models.User, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, v := in.Validate()
	if v != nil {
		return nil, invalid(v)
	}
	if err := s.checkEmail(ctx, next.Email, userID); err != nil {
		return nil, err
	}
	user.Name, user.Email = next.Name, next.Email
	if err := s.db.WithContext(ctx).Model(user).Select("name", "email").Updates(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, invalid(validation.Violations{"email": "email_taken"})
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return user, nil
}

func (s *AccountService) checkEmail(ctx context.Context, email string, exceptID uint) error {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("lower(email) = lower(?)", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return invalid(validation.Violations{"email": "email_taken"})
	}
	return nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, in forms.PasswordChangeInput) error {
	if v := in.Validate(); v != nil {
		return invalid(v)
	}
	user, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Current)) != nil {
		return invalid(validation.Violations{"current_password": "wrong_password"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), passwordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password", string(hash)).Error
}

// CompanyProfile returns the user's profile, or an unsaved empty one.
func (s *AccountService) CompanyProfile(ctx context.Context, userID uint) (*models.CompanyProfile, error) {
	var p models.CompanyProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CompanyProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveCompanyProfile stores the identity fields and, when given, replaces
// the logo. clearLogo removes the current logo.
func (s *AccountService) SaveCompanyProfile(ctx context.Context, userID uint, in forms.CompanyProfileInput, logo *LogoUpload, clearLogo bool) (*models.CompanyProfile, error) {
	next, v := in.Validate()
	if v == nil {
		v = make(validation.Violations)
	}
	if logo != nil && pdf.CheckLogo(logo.Data) != nil {
		v.Add("logo", "invalid_image")
	}
	if !v.Empty() {
		return nil, invalid(v)
	}

	p, err := s.CompanyProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldLogo := p.Logo
	p.LegalName, p.TaxID, p.TaxAddress = next.LegalName, next.TaxID, next.TaxAddress
	p.ContactEmail, p.ContactPhone = next.ContactEmail, next.ContactPhone

	switch {
	case logo != nil:
		key := models.LogoKey(userID, logo.Filename)
		if err := s.store.Put(ctx, key, storage.ContentType(key), bytes.NewReader(logo.Data)); err != nil {
			return nil, fmt.Errorf("store logo: %w", err)
		}
		p.Logo = key
	case clearLogo:
		p.Logo = ""
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("save company profile: %w", err)
	}
	if oldLogo != "" && oldLogo != p.Logo {
		if err := s.store.Delete(ctx, oldLogo); err != nil {
			log.Printf("company profile %d: remove old logo %s: %v", p.ID, oldLogo, err)
		}
	}
	return p, nil
}

// Logo returns the stored logo bytes and content type.
func (s *AccountService) Logo(ctx context.Context, userID uint) ([]byte, string, error) {
	p, err := s.CompanyProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if p.Logo == "" {
		return nil, "", ErrNotFound
	}
	data, err := storage.ReadAll(ctx, s.store, p.Logo)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return data, storage.ContentType(p.Logo), nil
}
