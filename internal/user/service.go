package user

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
)

type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a regular (customer) account.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	return s.create(ctx, in, false)
}

// CreateSuperuser creates an admin account; admins pass every manager check.
func (s *Service) CreateSuperuser(ctx context.Context, in RegisterRequest) (*User, error) {
	return s.create(ctx, in, true)
}

func (s *Service) create(ctx context.Context, in RegisterRequest, superuser bool) (*User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" || len(in.Password) > MaxPasswordBytes {
		return nil, ErrInvalidArgument
	}
	hash, err := HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrInvalidArgument
	}
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		IsSuperuser:  superuser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues an auth token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u)
}

// Authenticate resolves a raw token into a Principal with its groups loaded.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	groups, err := s.repo.Groups(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Principal{User: *u, Groups: groups}, nil
}

// Members lists the users of a role group.
func (s *Service) Members(ctx context.Context, group string) ([]User, error) {
	return s.repo.ListByGroup(ctx, group)
}

// AddMember puts the user named username into group.
func (s *Service) AddMember(ctx context.Context, group, username string) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrInvalidArgument
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddToGroup(ctx, u.ID, group); err != nil {
		return nil, err
	}
	return u, nil
}

// Member returns the user only if it belongs to group.
func (s *Service) Member(ctx context.Context, group string, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.InGroup(ctx, id, group)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) RemoveMember(ctx context.Context, group string, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	removed, err := s.repo.RemoveFromGroup(ctx, id, group)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotFound
	}
	return u, nil
}

// IsDeliveryCrew reports whether the user id exists and belongs to the delivery crew.
func (s *Service) IsDeliveryCrew(ctx context.Context, id int64) (bool, error) {
	return s.repo.InGroup(ctx, id, GroupDeliveryCrew)
}
