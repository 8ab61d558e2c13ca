package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"smart-dpr-be/internal/config"
	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/pkg/logger"
	"smart-dpr-be/internal/pkg/serverutils"
	"smart-dpr-be/internal/repository/contract"
	"smart-dpr-be/internal/repository/specification"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// tokenExpiryBuffer is the validity margin applied before the real expiry: a
// token expiring inside the buffer is treated as expired so a request never
// goes out with a token about to die mid-flight.
const tokenExpiryBuffer = 5 * time.Minute

const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

type IAuthService interface {
	GetLoginURL() (string, error)
	HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error)
	TokenSource(ctx context.Context, userId uuid.UUID) (oauth2.TokenSource, error)
	User(ctx context.Context, userId uuid.UUID) (*entity.User, error)
	Logout(ctx context.Context, userId uuid.UUID) error
}

type authService struct {
	userRepo   contract.UserRepository
	googleConf *oauth2.Config
	httpClient *http.Client
	log        logger.ILogger
	now        func() time.Time
}

func NewAuthService(userRepo contract.UserRepository, cfg *config.Config, log logger.ILogger) IAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/spreadsheets",
			"https://www.googleapis.com/auth/drive.readonly",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"openid",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		userRepo:   userRepo,
		googleConf: conf,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
		now:        time.Now,
	}
}

func (s *authService) GetLoginURL() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)

	// Offline access so Google hands back a refresh token for silent renewal.
	return s.googleConf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

type googleUserInfo struct {
	Id      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *authService) HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusUnauthorized, fmt.Sprintf("code exchange failed: %v", err))
	}

	info, err := s.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindOne(ctx, specification.ByGoogleId{GoogleId: info.Id})
	if err != nil {
		return nil, err
	}

	now := s.now()
	stored := &entity.GoogleToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}

	if user == nil {
		var avatar *string
		if info.Picture != "" {
			avatar = &info.Picture
		}
		user = &entity.User{
			Id:          uuid.New(),
			GoogleId:    info.Id,
			Email:       info.Email,
			FullName:    info.Name,
			AvatarURL:   avatar,
			Status:      entity.UserStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
			LastLoginAt: &now,
			GoogleToken: stored,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		if user.Status == entity.UserStatusBlocked {
			return nil, serverutils.NewAppError(fiber.StatusForbidden, "account is blocked")
		}
		// Google omits the refresh token on repeat consent; keep the old one.
		if stored.RefreshToken == "" && user.GoogleToken != nil {
			stored.RefreshToken = user.GoogleToken.RefreshToken
		}
		user.FullName = info.Name
		user.Email = info.Email
		if info.Picture != "" {
			user.AvatarURL = &info.Picture
		}
		user.GoogleToken = stored
		user.LastLoginAt = &now
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	appToken, err := s.generateJWT(user.Id)
	if err != nil {
		return nil, err
	}

	s.log.Info("AuthService", "User signed in", map[string]interface{}{"user_id": user.Id, "email": user.Email})

	return &dto.LoginResponse{
		Token: appToken,
		User: dto.UserResponse{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		},
	}, nil
}

func (s *authService) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		"https://www.googleapis.com/oauth2/v2/userinfo?access_token="+url.QueryEscape(accessToken), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// TokenSource returns a source holding a currently valid Google access token
// for the user, refreshing and persisting it first when the stored one is
// expired or inside the expiry buffer.
func (s *authService) TokenSource(ctx context.Context, userId uuid.UUID) (oauth2.TokenSource, error) {
	user, err := s.userRepo.FindOne(ctx, specification.ById{Id: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.GoogleToken == nil || user.GoogleToken.RefreshToken == "" {
		return nil, serverutils.NewAppError(fiber.StatusUnauthorized, "no Google credentials on file, sign in again")
	}

	current := &oauth2.Token{
		AccessToken:  user.GoogleToken.AccessToken,
		RefreshToken: user.GoogleToken.RefreshToken,
		Expiry:       user.GoogleToken.Expiry,
	}

	if tokenUsable(current, s.now()) {
		return oauth2.StaticTokenSource(current), nil
	}

	fresh, err := s.googleConf.TokenSource(ctx, current).Token()
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusUnauthorized, fmt.Sprintf("token refresh failed: %v", err))
	}

	user.GoogleToken.AccessToken = fresh.AccessToken
	user.GoogleToken.Expiry = fresh.Expiry
	if fresh.RefreshToken != "" {
		user.GoogleToken.RefreshToken = fresh.RefreshToken
	}
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The refreshed token still serves this request; losing the persisted
		// copy only costs a refresh next time.
		s.log.Warn("AuthService", "Failed persisting refreshed token", map[string]interface{}{"user_id": userId, "error": err.Error()})
	}

	return oauth2.StaticTokenSource(fresh), nil
}

func (s *authService) User(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	return s.userRepo.FindOne(ctx, specification.ById{Id: userId})
}

func (s *authService) Logout(ctx context.Context, userId uuid.UUID) error {
	user, err := s.userRepo.FindOne(ctx, specification.ById{Id: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if user.GoogleToken != nil && user.GoogleToken.AccessToken != "" {
		s.revoke(ctx, user.GoogleToken.AccessToken)
	}

	user.GoogleToken = nil
	user.UpdatedAt = s.now()
	return s.userRepo.Update(ctx, user)
}

// revoke is best-effort: a failed revoke leaves a token Google will expire on
// its own, so it is logged and swallowed.
func (s *authService) revoke(ctx context.Context, accessToken string) {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, "POST", googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("AuthService", "Token revoke failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.log.Warn("AuthService", "Token revoke returned non-200", map[string]interface{}{"status": resp.StatusCode})
	}
}

func (s *authService) generateJWT(userId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"iat":     s.now().Unix(),
		"exp":     s.now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// tokenUsable reports whether the access token can still be sent out without
// a refresh first.
func tokenUsable(token *oauth2.Token, now time.Time) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return false
	}
	return now.Before(token.Expiry.Add(-tokenExpiryBuffer))
}
