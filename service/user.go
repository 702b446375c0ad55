package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskflow/dao/model"
	"taskflow/errs"
	"taskflow/logutils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const searchLimit = 10

type UserService struct {
	db         *gorm.DB
	bcryptCost int
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=1,max=128"`
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=128"`
	Image      *string `json:"image" validate:"omitempty,max=512"`
	Bio        *string `json:"bio" validate:"omitempty,max=1000"`
	Title      *string `json:"title" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

type SearchInput struct {
	Query string `form:"query" json:"query" validate:"required,min=1"`
}

// Profile is the caller's own view of their account.
type Profile struct {
	model.User
	model.UserAttribute
	Counts ProfileCounts `json:"counts"`
}

type ProfileCounts struct {
	CreatedProjects    int64 `json:"createdProjects"`
	ProjectMemberships int64 `json:"projectMemberships"`
	CreatedTasks       int64 `json:"createdTasks"`
	AssignedTasks      int64 `json:"assignedTasks"`
}

// Register creates the user and its credential. Emails are unique.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Name: in.Name, Email: normalizeEmail(in.Email)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return errs.New(errs.KindConflict, "user with this email already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.New(errs.KindConflict, "user with this email already exists")
			}
			return fmt.Errorf("create user: %w", err)
		}
		cred := model.UserCredential{UserID: user.ID, PasswordHash: string(hash)}
		if err := tx.Create(&cred).Error; err != nil {
			return fmt.Errorf("create credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logutils.Log.WithField("user", user.ID).Info("user registered")
	return &user, nil
}

// Login checks the password. An unknown email and a wrong password fail the
// same way.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*model.User, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Credential").
		Where("email = ?", normalizeEmail(in.Email)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Credential == nil {
		return nil, errs.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Credential.PasswordHash), []byte(in.Password)); err != nil {
		return nil, errs.ErrUnauthenticated
	}
	return &user, nil
}

// Get loads a user by id; used to resolve the bearer of a token.
func (s *UserService) Get(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Take(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: *user, UserAttribute: user.Attributes.Data()}

	db := s.db.WithContext(ctx)
	counts := []struct {
		dst   *int64
		table any
		where string
	}{
		{&p.Counts.CreatedProjects, &model.Project{}, "created_by_id = ?"},
		{&p.Counts.ProjectMemberships, &model.ProjectMembership{}, "user_id = ?"},
		{&p.Counts.CreatedTasks, &model.Task{}, "created_by_id = ?"},
		{&p.Counts.AssignedTasks, &model.Task{}, "assigned_to_id = ?"},
	}
	for _, c := range counts {
		if err := db.Model(c.table).Where(c.where, userID).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}
	return p, nil
}

// UpdateProfile changes the non-nil fields of the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*Profile, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Take(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrUserNotFound
			}
			return err
		}
		attrs := user.Attributes.Data()
		if in.Bio != nil {
			attrs.Bio = in.Bio
		}
		if in.Title != nil {
			attrs.Title = in.Title
		}
		if in.Department != nil {
			attrs.Department = in.Department
		}
		updates := map[string]any{"attributes": datatypes.NewJSONType(attrs)}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Image != nil {
			updates["image"] = *in.Image
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// Search matches name or email, case-insensitively, and returns at most ten
// users.
func (s *UserService) Search(ctx context.Context, in SearchInput) ([]model.User, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(strings.ToLower(in.Query)) + "%"
	var users []model.User
	err := s.db.WithContext(ctx).
		Select(model.UserSummaryColumns).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("name ASC").Order("id ASC").
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
