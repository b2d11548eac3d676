package users

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// PostgresStore implements the UserStore interface on any bun dialect.
// It does not validate arguments; Service does that before calling it.
type PostgresStore struct {
	db *bun.DB
}

// NewUserStore creates a new user store instance
func NewUserStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// CreateUser inserts a new user; the id is assigned by the database
func (s *PostgresStore) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	userSchema := UserSchema{
		Name: req.Name,
		Age:  req.Age,
	}

	_, err := s.db.NewInsert().
		Model(&userSchema).
		Exec(ctx)
	if err != nil {
		return nil, NewStorageError(OpCreate, err)
	}

	user := UserSchemaToUser(userSchema)
	return &user, nil
}

// ListUsers returns every user in storage order
func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Scan(ctx)
	if err != nil {
		return nil, NewStorageError(OpList, err)
	}

	users := make([]User, 0, len(schemas))
	for _, schema := range schemas {
		users = append(users, UserSchemaToUser(schema))
	}
	return users, nil
}

// UpdateUser overwrites name and age of the user with req.ID.
// A row that exists always counts as affected, even when values are unchanged.
func (s *PostgresStore) UpdateUser(ctx context.Context, req *UpdateUserRequest) error {
	userSchema := UserSchema{
		ID:   req.ID,
		Name: req.Name,
		Age:  req.Age,
	}

	result, err := s.db.NewUpdate().
		Model(&userSchema).
		Column("name", "age").
		WherePK().
		Exec(ctx)
	if err != nil {
		return NewStorageError(OpUpdate, err)
	}

	return checkAffected(OpUpdate, req.ID, result)
}

// DeleteUser removes the user with the given id
func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.NewDelete().
		Model((*UserSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return NewStorageError(OpDelete, err)
	}

	return checkAffected(OpDelete, id, result)
}

func checkAffected(op Operation, id int64, result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewStorageError(op, err)
	}
	if rowsAffected == 0 {
		return NewNotFoundError(op, id)
	}
	return nil
}
