package services

import (
	"context"
	"fmt"
	"time"

	"barhop-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtExpDays = 365

// userStore is the user repository as the account service needs it.
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// UserService handles user accounts and JWT auth
type UserService struct {
	users     userStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(users userStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// CreateUserRequest represents a signup request
type CreateUserRequest struct {
	Handle    string `json:"handle"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PushToken string `json:"push_token"`
}

// CreateUserResponse carries the created user and its bearer token
type CreateUserResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// CreateUser registers a new user with a unique handle and returns
// a signed bearer token.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	exists, err := s.users.HandleExists(ctx, req.Handle)
	if err != nil {
		return nil, fmt.Errorf("failed to check handle: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("handle is already taken")
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Handle:    req.Handle,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: time.Now(),
	}
	if req.PushToken != "" {
		user.PushToken = &req.PushToken
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &CreateUserResponse{User: user, Token: token}, nil
}

// UpdatePushToken registers or clears the user's push token.
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}
