package main

import (
	"context"
	"testing"

	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAdmin(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := config.AdminConfig{Name: "Root", Email: "root@example.com", Password: "secret123"}

	require.NoError(t, seedAdmin(context.Background(), store.Users, admin))
	require.NoError(t, seedAdmin(context.Background(), store.Users, admin))

	users, err := store.Users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.True(t, users[0].CheckPassword("secret123"))
}

func TestSeedAdmin_Disabled(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, seedAdmin(context.Background(), store.Users, config.AdminConfig{}))

	users, err := store.Users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	err = seedAdmin(context.Background(), store.Users, config.AdminConfig{Email: "root@example.com"})
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")
}

func TestOpenStore_Memory(t *testing.T) {
	store, err := openStore(&config.Config{Storage: config.StorageMemory})
	require.NoError(t, err)
	assert.NotNil(t, store.Appointments)
}
