package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &models.User{Username: "alice", Email: "alice@example.com", Name: "Alice", Password: "h"}))
	err := repo.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", Name: "Alice", Password: "h"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	taken, err := repo.UsernameOrEmailTaken(ctx, "bob", "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	u, err := repo.GetUserByEmailOrUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = repo.GetUserByID(ctx, 404)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	gopher := createUser(t, db, "gopher")
	named := createUser(t, db, "someone")
	require.NoError(t, db.Model(named).Update("name", "Big GOPHER fan").Error)
	bio := createUser(t, db, "third")
	require.NoError(t, db.Model(bio).Update("bio", "i like gophers").Error)
	createUser(t, db, "unrelated")

	users, total, err := repo.SearchUsers(ctx, "Gopher", page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 3)
	assert.Equal(t, []uint{gopher.ID, named.ID, bio.ID}, []uint{users[0].ID, users[1].ID, users[2].ID})

	users, total, err = repo.SearchUsers(ctx, "gopher", page(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 1)
}

func TestUserRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	createUser(t, db, "plain")
	snake := createUser(t, db, "snake_case")
	require.NoError(t, db.Model(snake).Update("bio", "50% gopher").Error)

	users, total, err := repo.SearchUsers(ctx, "_", page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, snake.ID, users[0].ID)

	_, total, err = repo.SearchUsers(ctx, "%", page(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.SearchUsers(ctx, "p%n", page(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUserRepository_Suggest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	viewer := createUser(t, db, "viewer")
	popular := createUser(t, db, "popular")
	quiet := createUser(t, db, "quiet")
	followed := createUser(t, db, "followed")
	fan1 := createUser(t, db, "fan1")
	fan2 := createUser(t, db, "fan2")

	follow(t, db, viewer.ID, followed.ID, baseTime)
	follow(t, db, fan1.ID, popular.ID, baseTime)
	follow(t, db, fan2.ID, popular.ID, baseTime)
	follow(t, db, fan1.ID, fan2.ID, baseTime)

	users, err := repo.SuggestUsers(ctx, viewer.ID, SuggestionLimit)
	require.NoError(t, err)
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	// popular (2 followers), fan2 (1), then quiet and fan1 by id
	assert.Equal(t, []uint{popular.ID, fan2.ID, quiet.ID, fan1.ID}, ids)

	users, err = repo.SuggestUsers(ctx, viewer.ID, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
