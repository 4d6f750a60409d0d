package application

import (
	"context"
	"errors"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

const bootstrapAdminRoleID = 1

type LoginInput struct {
	Username string `json:"Username" validate:"notblank"`
	Password string `json:"Password" validate:"required"`
}

type LoginResult struct {
	AccessToken string
	User        domain.User
}

type UserInput struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Username  string `json:"username" validate:"notblank"`
	Password  string `json:"password"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"required"`
	RoleID    int    `json:"roleId" validate:"required,gte=1"`
}

type ProfileInput struct {
	Username string `json:"username" validate:"notblank"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// BootstrapAdmin creates the first administrator when user_nt is empty.
func (s *InventoryService) BootstrapAdmin(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return domain.Validation("bootstrap admin username and password are required")
	}

	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		count, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		id, err := allocate(ctx, tx, domain.UserSeq)
		if err != nil {
			return err
		}
		if err := tx.CreateUser(ctx, domain.User{
			UserID:       id,
			Username:     strings.TrimSpace(username),
			PasswordHash: hash,
			Name:         "Administrator",
			RoleID:       bootstrapAdminRoleID,
		}); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Str("user_id", id).Str("username", username).Msg("bootstrap admin created")
		return nil
	})
}

func (s *InventoryService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if err := check(in); err != nil {
		return LoginResult{}, err
	}

	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.Unauthorized("invalid username or password")
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResult{}, domain.Unauthorized("invalid username or password")
	}

	token, err := newAccessToken()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.repo.SetAccessToken(ctx, u.UserID, token); err != nil {
		return LoginResult{}, err
	}
	u.AccessToken = token
	return LoginResult{AccessToken: token, User: u}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *InventoryService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.Unauthorized("no token provided")
	}
	u, err := s.repo.GetUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, domain.Unauthorized("invalid token")
		}
		return domain.Identity{}, err
	}
	return domain.Identity{User: u}, nil
}

func (s *InventoryService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return profileOf(u), nil
}

// UpdateProfile rewrites the caller's own account. The username must stay
// unique among the other users.
func (s *InventoryService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (domain.Profile, error) {
	if err := check(in); err != nil {
		return domain.Profile{}, err
	}

	var updated domain.User
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		current, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		taken, err := tx.UsernameTaken(ctx, strings.TrimSpace(in.Username), userID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Duplicate("Username already taken")
		}

		updated = current
		updated.Username = strings.TrimSpace(in.Username)
		updated.Name = in.Name
		updated.Email = in.Email
		updated.TelNumber = in.Phone
		withPassword := in.Password != ""
		if withPassword {
			hash, err := hashPassword(in.Password)
			if err != nil {
				return err
			}
			updated.PasswordHash = hash
		}
		if _, err := tx.UpdateUser(ctx, updated, withPassword); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return profileOf(updated), nil
}

func (s *InventoryService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	return s.repo.ListUsers(ctx)
}

func (s *InventoryService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *InventoryService) CreateUser(ctx context.Context, in UserInput) (domain.UserSummary, error) {
	if err := check(in); err != nil {
		return domain.UserSummary{}, err
	}
	if in.Password == "" {
		return domain.UserSummary{}, domain.Validation("password is required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return domain.UserSummary{}, err
	}

	u := domain.User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         fullName(in.FirstName, in.LastName),
		TelNumber:    in.Phone,
		Email:        in.Email,
		RoleID:       in.RoleID,
	}
	err = s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		taken, err := tx.UsernameTaken(ctx, u.Username, "")
		if err != nil {
			return err
		}
		if taken {
			return domain.Duplicate("username %s already exists", u.Username)
		}
		if u.UserID, err = allocate(ctx, tx, domain.UserSeq); err != nil {
			return err
		}
		return tx.CreateUser(ctx, u)
	})
	if err != nil {
		return domain.UserSummary{}, err
	}

	return domain.UserSummary{
		UserID:   u.UserID,
		Username: u.Username,
		Name:     u.Name,
		Phone:    u.TelNumber,
		Email:    u.Email,
		RoleID:   u.RoleID,
		RoleName: s.roleName(ctx, u.RoleID),
	}, nil
}

// UpdateUser rewrites an account. An empty password keeps the stored hash.
func (s *InventoryService) UpdateUser(ctx context.Context, userID string, in UserInput) error {
	if err := check(in); err != nil {
		return err
	}

	u := domain.User{
		UserID:    userID,
		Username:  strings.TrimSpace(in.Username),
		Name:      fullName(in.FirstName, in.LastName),
		TelNumber: in.Phone,
		Email:     in.Email,
		RoleID:    in.RoleID,
	}
	withPassword := in.Password != ""
	if withPassword {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}

	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		taken, err := tx.UsernameTaken(ctx, u.Username, userID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Duplicate("username %s already exists", u.Username)
		}
		ok, err := tx.UpdateUser(ctx, u, withPassword)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("user %s not found", userID)
		}
		return nil
	})
}

func (s *InventoryService) DeleteUser(ctx context.Context, userID string) error {
	ok, err := s.repo.DeleteUser(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("user %s not found", userID)
	}
	return nil
}

func (s *InventoryService) roleName(ctx context.Context, roleID int) string {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("list roles")
		return ""
	}
	for _, r := range roles {
		if r.RoleID == roleID {
			return r.Rolename
		}
	}
	return ""
}

func profileOf(u domain.User) domain.Profile {
	return domain.Profile{
		UserID:   u.UserID,
		Username: u.Username,
		Name:     u.Name,
		Phone:    u.TelNumber,
		Email:    u.Email,
		RoleID:   u.RoleID,
	}
}

func fullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
