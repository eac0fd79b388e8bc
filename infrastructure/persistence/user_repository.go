package persistence

import (
	"context"
	"database/sql"

	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

// UserRepository is the PostgreSQL implementation of IUser.
type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) repository.IUser { return &UserRepository{db: db} }

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing statement")
		return u, err
	}
	defer stmt.Close()
	if err := stmt.QueryRowContext(ctx, id).Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return u, err
	}
	return u, nil
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var u model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.user_name = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing statement")
		return u, err
	}
	defer stmt.Close()
	if err := stmt.QueryRowContext(ctx, userName).Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return u, err
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO public.user (name, user_name, password) VALUES ($1, $2, $3)`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing statement")
		return err
	}
	defer stmt.Close()
	if _, err := stmt.ExecContext(ctx, user.Name, user.UserName, user.Password); err != nil {
		return err
	}
	return nil
}
