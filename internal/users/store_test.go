package users

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().Model((*UserSchema)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return db
}

func TestStoreListUsersEmpty(t *testing.T) {
	store := NewUserStore(setupTestDB(t))

	users, err := store.ListUsers(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestStoreCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(setupTestDB(t))

	const n = 5
	for i := 0; i < n; i++ {
		user, err := store.CreateUser(ctx, &CreateUserRequest{Name: fmt.Sprintf("user-%d", i), Age: 20 + i})
		require.NoError(t, err)
		assert.Positive(t, user.ID)
	}

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, n)

	seen := make(map[int64]bool)
	for _, u := range users {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}

func TestStoreUpdateUser(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(setupTestDB(t))

	created, err := store.CreateUser(ctx, &CreateUserRequest{Name: "John Doe", Age: 30})
	require.NoError(t, err)

	err = store.UpdateUser(ctx, &UpdateUserRequest{ID: created.ID, Name: "John Smith", Age: 31})
	require.NoError(t, err)

	// unchanged values still match the row
	err = store.UpdateUser(ctx, &UpdateUserRequest{ID: created.ID, Name: "John Smith", Age: 31})
	require.NoError(t, err)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, User{ID: created.ID, Name: "John Smith", Age: 31}, users[0])
}

func TestStoreUpdateUserNotFound(t *testing.T) {
	store := NewUserStore(setupTestDB(t))

	err := store.UpdateUser(context.Background(), &UpdateUserRequest{ID: 1, Name: "John Doe", Age: 30})

	assert.Equal(t, ErrorKindNotFound, KindOf(err))
}

func TestStoreDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(setupTestDB(t))

	keep, err := store.CreateUser(ctx, &CreateUserRequest{Name: "Keep", Age: 40})
	require.NoError(t, err)
	drop, err := store.CreateUser(ctx, &CreateUserRequest{Name: "Drop", Age: 41})
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, drop.ID))

	err = store.DeleteUser(ctx, drop.ID)
	assert.Equal(t, ErrorKindNotFound, KindOf(err))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, keep.ID, users[0].ID)
}

func TestStoreWrapsStorageFailures(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := NewUserStore(db)
	require.NoError(t, db.Close())

	_, err := store.CreateUser(ctx, &CreateUserRequest{Name: "John", Age: 30})
	assert.Equal(t, ErrorKindStorage, KindOf(err))

	_, err = store.ListUsers(ctx)
	assert.Equal(t, ErrorKindStorage, KindOf(err))

	err = store.UpdateUser(ctx, &UpdateUserRequest{ID: 1, Name: "John", Age: 30})
	assert.Equal(t, ErrorKindStorage, KindOf(err))

	err = store.DeleteUser(ctx, 1)
	assert.Equal(t, ErrorKindStorage, KindOf(err))
}

func TestServiceWithStoreScenario(t *testing.T) {
	ctx := context.Background()
	service := NewUserService(NewUserStore(setupTestDB(t)))

	_, err := service.CreateUser(ctx, &CreateUserRequest{Name: "John Doe", Age: 30})
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, &CreateUserRequest{Name: "X", Age: 151})
	assert.Equal(t, ErrorKindInvalidArgument, KindOf(err))

	err = service.UpdateUser(ctx, &UpdateUserRequest{ID: 1000, Name: "Nobody", Age: 1})
	assert.Equal(t, ErrorKindNotFound, KindOf(err))

	users, err := service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
