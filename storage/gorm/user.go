package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
	stdgorm "gorm.io/gorm"
)

type userRepository struct {
	db *stdgorm.DB
}

func NewUserRepository(db *stdgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func (u *userRepository) Create(ctx context.Context, user *usersvc.User) error {
	result := u.db.WithContext(ctx).Create(user)
	return translate(result.Error)
}

func (u *userRepository) Find(ctx context.Context, id uint64) (usersvc.User, error) {
	var user usersvc.User
	result := u.db.WithContext(ctx).First(&user, id)

	return user, notFound(result.Error, usersvc.ErrUserNotFound)
}

func (u *userRepository) FindBy(ctx context.Context, field usersvc.Field, value string) (usersvc.User, error) {
	switch field {
	case usersvc.ByName, usersvc.ByEmail:
	default:
		return usersvc.User{}, fmt.Errorf("unknown user field %q", field)
	}

	var user usersvc.User
	result := u.db.WithContext(ctx).
		Where(map[string]interface{}{string(field): value}).
		First(&user)

	return user, notFound(result.Error, usersvc.ErrUserNotFound)
}

func (u *userRepository) FindAll(ctx context.Context) ([]usersvc.User, error) {
	var users []usersvc.User
	result := u.db.WithContext(ctx).Order("id").Find(&users)

	return users, result.Error
}

func (u *userRepository) Update(ctx context.Context, user usersvc.User) error {
	result := u.db.WithContext(ctx).Model(&usersvc.User{ID: user.ID}).Updates(
		map[string]interface{}{
			"name":          user.Name,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return usersvc.ErrUserNotFound
	}
	return nil
}

func (u *userRepository) Delete(ctx context.Context, id uint64) error {
	db := u.db.WithContext(ctx)

	result := db.Model(&tasksvc.Task{}).Where("owner_id = ?", id).Update("owner_id", nil)
	if result.Error != nil {
		return result.Error
	}

	result = db.Delete(&usersvc.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usersvc.ErrUserNotFound
	}
	return nil
}

func notFound(err, target error) error {
	if errors.Is(err, stdgorm.ErrRecordNotFound) {
		return target
	}
	return err
}
