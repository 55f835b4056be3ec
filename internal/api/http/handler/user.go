package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/model"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userData struct {
	User userResponse `json:"user"`
}

type sessionData struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Confirmed: u.Confirmed(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toSessionData(s model.Session) sessionData {
	return sessionData{User: toUserResponse(s.User), Token: s.Token}
}
