package memory

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	defer r.db.lock(ctx)()

	for _, u := range r.db.data.users {
		if u.TelegramID == user.TelegramID {
			return fmt.Errorf("create user: telegram id %d already registered", user.TelegramID)
		}
	}
	user.ID = r.db.nextID()
	user.CreatedAt = r.db.now()
	r.db.data.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	defer r.db.lock(ctx)()

	for _, u := range r.db.data.users {
		if u.TelegramID == telegramID {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	defer r.db.lock(ctx)()

	u, ok := r.db.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	defer r.db.lock(ctx)()

	if _, ok := r.db.data.users[user.ID]; !ok {
		return fmt.Errorf("update user %d: not found", user.ID)
	}
	r.db.data.users[user.ID] = *user
	return nil
}
