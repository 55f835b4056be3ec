package context

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/authkeeper/internal/model"
)

func TestManager_UserRoundTrip(t *testing.T) {
	m := NewManager()
	user := model.User{ID: uuid.New(), Email: "a@x.com"}

	ctx := m.SetUserToContext(context.Background(), user)

	got, ok := m.GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)
}

func TestManager_GetUserFromContext_Missing(t *testing.T) {
	m := NewManager()

	got, ok := m.GetUserFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, model.User{}, got)
}

func TestManager_GetUserFromContext_WrongType(t *testing.T) {
	m := NewManager()
	ctx := context.WithValue(context.Background(), userKey{}, "not a user")

	_, ok := m.GetUserFromContext(ctx)
	assert.False(t, ok)
}
