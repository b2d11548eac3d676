package users

import (
	"context"
)

// UserStore defines the interface for user storage operations.
// Implementations report missing rows as ErrorKindNotFound and driver
// failures as ErrorKindStorage.
type UserStore interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, req *UpdateUserRequest) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService defines the interface for user service operations
type UserService interface {
	UserStore
}
