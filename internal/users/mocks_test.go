package users

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockUserService mocks UserService and UserStore
type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*User)
	return user, args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]User)
	return users, args.Error(1)
}

func (m *mockUserService) UpdateUser(ctx context.Context, req *UpdateUserRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockUserService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
