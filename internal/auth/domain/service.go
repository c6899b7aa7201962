package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
)

type Service interface {
	// Register creates a company and its owner account in one transaction.
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Authenticate resolves a bearer token into the active user it was issued to.
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	Me(ctx context.Context) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type RegisterRequest struct {
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	CompanyPhone   string `json:"company_phone"`
	GSTNumber      string `json:"gst_number"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	Password       string `json:"password"`
}

type RegisterResult struct {
	Company companydomain.Company `json:"company"`
	User    User                  `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Principal is the authenticated caller behind a request.
type Principal struct {
	UserID    snowflake.ID
	CompanyID snowflake.ID
	Role      Role
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrEmailTaken         = errors.New("email_already_registered")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserNotFound       = errors.New("user_not_found")
)
