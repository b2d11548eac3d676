package users

import (
	"github.com/uptrace/bun"
)

const (
	MinAge = 0
	MaxAge = 150
)

// User represents a stored user record
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// UpdateUserRequest represents the request to update a user.
// ID must match the id in the request path.
type UpdateUserRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// UserSchema represents the users table
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
	Age  int    `bun:"age,notnull"`
}

func UserSchemaToUser(schema UserSchema) User {
	return User{
		ID:   schema.ID,
		Name: schema.Name,
		Age:  schema.Age,
	}
}
