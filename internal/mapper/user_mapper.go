package mapper

import (
	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	var token *entity.GoogleToken
	if u.GoogleRefreshToken != nil {
		token = &entity.GoogleToken{
			RefreshToken: *u.GoogleRefreshToken,
		}
		if u.GoogleAccessToken != nil {
			token.AccessToken = *u.GoogleAccessToken
		}
		if u.GoogleTokenExpiry != nil {
			token.Expiry = *u.GoogleTokenExpiry
		}
	}

	return &entity.User{
		Id:          u.Id,
		GoogleId:    u.GoogleId,
		Email:       u.Email,
		FullName:    u.FullName,
		AvatarURL:   u.AvatarURL,
		Status:      entity.UserStatus(u.Status),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
		GoogleToken: token,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	out := &model.User{
		Id:          u.Id,
		GoogleId:    u.GoogleId,
		Email:       u.Email,
		FullName:    u.FullName,
		AvatarURL:   u.AvatarURL,
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}

	if u.GoogleToken != nil {
		access := u.GoogleToken.AccessToken
		refresh := u.GoogleToken.RefreshToken
		expiry := u.GoogleToken.Expiry
		out.GoogleAccessToken = &access
		out.GoogleRefreshToken = &refresh
		out.GoogleTokenExpiry = &expiry
	}

	return out
}
