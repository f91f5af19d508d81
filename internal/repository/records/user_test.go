package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	mock_recordstore "github.com/bayoubeans/coffee-orders/internal/recordstore/mocks"
	"github.com/bayoubeans/coffee-orders/internal/repository"
	"github.com/bayoubeans/coffee-orders/internal/repository/records"
)

func TestUserRepo_FetchByName(t *testing.T) {
	ctx := context.Background()

	t.Run("user found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewUserRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.UsersCollection, "bob").
			Return(recordstore.Record{"userName": "bob", "password": "secret"}, nil)

		user, err := repo.FetchByName(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", user.UserName)
		assert.Equal(t, "secret", user.Password)
	})

	t.Run("user not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewUserRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.UsersCollection, "ghost").
			Return(nil, recordstore.ErrNotFound)

		user, err := repo.FetchByName(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, user)
	})
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing admin", func(t *testing.T) {
		store := recordstore.NewMemoryStore()
		repo := records.NewUserRepo(store)

		require.NoError(t, records.SeedAdmin(ctx, repo, "admin", "secret"))

		user, err := repo.FetchByName(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "secret", user.Password)
	})

	t.Run("does not overwrite an existing admin", func(t *testing.T) {
		store := recordstore.NewMemoryStore()
		repo := records.NewUserRepo(store)
		require.NoError(t, repo.CreateUser(ctx, "admin", "original"))

		require.NoError(t, records.SeedAdmin(ctx, repo, "admin", "changed"))

		user, err := repo.FetchByName(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "original", user.Password)
	})

	t.Run("skips when not configured", func(t *testing.T) {
		store := recordstore.NewMemoryStore()
		repo := records.NewUserRepo(store)

		require.NoError(t, records.SeedAdmin(ctx, repo, "", ""))

		recs, err := store.ScanAll(ctx, recordstore.UsersCollection)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}
