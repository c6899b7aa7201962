package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/internal/auth/domain"
	"github.com/smallbiznis/vyapar/internal/auth/password"
	"github.com/smallbiznis/vyapar/internal/auth/token"
	"github.com/smallbiznis/vyapar/internal/clock"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	CompanySvc companydomain.Service
	Issuer     *token.Issuer
	AuditSvc   auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	companySvc companydomain.Service
	issuer     *token.Issuer
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		companySvc: p.CompanySvc,
		issuer:     p.Issuer,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, domain.ErrInvalidName
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, domain.ErrWeakPassword
	}
	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var result domain.RegisterResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}

		company, err := s.companySvc.Create(ctx, tx, companydomain.CreateCompanyRequest{
			Name:      req.CompanyName,
			Address:   req.CompanyAddress,
			Phone:     req.CompanyPhone,
			GSTNumber: req.GSTNumber,
		})
		if err != nil {
			return err
		}

		user := s.newUser(company.ID, email, fullName, hashed, domain.RoleOwner)
		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrEmailTaken
			}
			return err
		}

		result = domain.RegisterResult{Company: company, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("company registered",
		zap.String("company_id", result.Company.ID.String()),
		zap.String("user_id", result.User.ID.String()),
	)
	return &result, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	raw, expiresAt, err := s.issuer.Issue(user.ID, user.CompanyID, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("company_id", user.CompanyID.String()))
	return &domain.LoginResult{
		AccessToken: raw,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}

	userID, companyID, _, err := s.issuer.Parse(rawToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, s.db, companyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	// Role comes from the stored user, not the claim.
	return &domain.Principal{UserID: user.ID, CompanyID: user.CompanyID, Role: user.Role}, nil
}

func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	companyID, userID, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, s.db, companyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = defaultDisplayName(email)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleStaff
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, domain.ErrWeakPassword
	}
	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	user := s.newUser(companyID, email, fullName, hashed, role)
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user created",
		zap.String("company_id", companyID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)
	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, auditdomain.ActionUserCreated, auditdomain.TargetUser, user.ID.String(), map[string]any{
			"email": user.Email,
			"role":  string(user.Role),
		}); err != nil {
			s.log.Warn("audit user.created failed", zap.Error(err))
		}
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	rows, err := s.repo.List(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row)
	}
	return users, nil
}

func (s *Service) newUser(companyID snowflake.ID, email, fullName, hashed string, role domain.Role) domain.User {
	now := s.clock.Now().UTC()
	return domain.User{
		ID:                  s.genID.Generate(),
		CompanyID:           companyID,
		Email:               email,
		FullName:            fullName,
		PasswordHash:        hashed,
		Role:                role,
		IsActive:            true,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func principalFromContext(ctx context.Context) (snowflake.ID, snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, 0, domain.ErrInvalidCompany
	}
	actor := companyctx.ActorFromContext(ctx)
	if actor.Type != companyctx.ActorTypeUser {
		return 0, 0, domain.ErrUserNotFound
	}
	userID, err := snowflake.ParseString(actor.ID)
	if err != nil || userID == 0 {
		return 0, 0, domain.ErrUserNotFound
	}
	return companyID, userID, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	email := strings.ToLower(strings.TrimSpace(addr.Address))
	if email == "" {
		return "", errors.New("empty email")
	}
	return email, nil
}

func defaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return email
}
