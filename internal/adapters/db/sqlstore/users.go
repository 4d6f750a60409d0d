package sqlstore

import (
	"context"
	"database/sql"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (r *Repository) CreateUser(ctx context.Context, value domain.User) error {
	m := UserModel{
		UserID:    value.UserID,
		Username:  value.Username,
		Password:  value.PasswordHash,
		Name:      value.Name,
		TelNumber: value.TelNumber,
		Email:     value.Email,
		RoleID:    value.RoleID,
	}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) UpdateUser(ctx context.Context, value domain.User, withPassword bool) (bool, error) {
	updates := map[string]any{
		"username":   value.Username,
		"name":       value.Name,
		"tel_number": value.TelNumber,
		"email":      value.Email,
	}
	if value.RoleID != 0 {
		updates["role_id"] = value.RoleID
	}
	if withPassword {
		updates["password"] = value.PasswordHash
	}
	res := r.db.WithContext(ctx).Model(&UserModel{}).Where("user_id = ?", value.UserID).Updates(updates)
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteUser(ctx context.Context, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&UserModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return domain.User{}, notFound(err, "user %s not found", userID)
	}
	return m.toDomain(), nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return domain.User{}, notFound(err, "user %s not found", username)
	}
	return m.toDomain(), nil
}

func (r *Repository) GetUserByToken(ctx context.Context, token string) (domain.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("access_token = ?", token).First(&m).Error; err != nil {
		return domain.User{}, notFound(err, "user not found")
	}
	return m.toDomain(), nil
}

func (r *Repository) SetAccessToken(ctx context.Context, userID, token string) error {
	return classify(r.db.WithContext(ctx).Model(&UserModel{}).
		Where("user_id = ?", userID).
		Update("access_token", sql.NullString{String: token, Valid: token != ""}).Error)
}

func (r *Repository) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	if excludeUserID == "" {
		return exists(ctx, r.db, &UserModel{}, "username = ?", username)
	}
	return exists(ctx, r.db, &UserModel{}, "username = ? AND user_id <> ?", username, excludeUserID)
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	type row struct {
		UserID    string
		Username  string
		Name      string
		TelNumber string
		Email     string
		RoleID    int
		Rolename  sql.NullString
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.user_id, u.username, u.name, u.tel_number, u.email, u.role_id, ro.rolename
		FROM user_nt u
		LEFT JOIN role ro ON u.role_id = ro.role_id
		ORDER BY u.user_id`).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}

	result := make([]domain.UserSummary, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.UserSummary{
			UserID:   rr.UserID,
			Username: rr.Username,
			Name:     rr.Name,
			Phone:    rr.TelNumber,
			Email:    rr.Email,
			RoleID:   rr.RoleID,
			RoleName: rr.Rolename.String,
		})
	}
	return result, nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows := make([]RoleModel, 0)
	if err := r.db.WithContext(ctx).Order("role_id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.Role, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.Role{RoleID: m.RoleID, Rolename: m.Rolename})
	}
	return result, nil
}
