package authorization

import (
	"context"
	"errors"
)

const userSubjectPrefix = "user:"

// UserSubject is the policy subject for a dashboard user.
func UserSubject(userID string) string {
	return userSubjectPrefix + userID
}

// Service decides whether an actor may perform action on object inside a company.
type Service interface {
	Authorize(ctx context.Context, actor string, companyID string, object string, action string) error
}

var (
	ErrInvalidActor   = errors.New("invalid_actor")
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidObject  = errors.New("invalid_object")
	ErrInvalidAction  = errors.New("invalid_action")
	ErrForbidden      = errors.New("forbidden")
)
