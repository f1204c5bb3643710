package inbound

import (
	"context"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/access/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
)

type uc interface {
	Token(ctx context.Context, in usecase.TokenInput) (*usecase.TokenOutput, error)

	Issue(ctx context.Context, in usecase.IssueInput) (*entity.IssuedCredential, error)
	Rotate(ctx context.Context, in usecase.RotateInput) (*entity.IssuedCredential, error)
	RotateAll(ctx context.Context) (*usecase.RotateAllOutput, error)
	Acknowledge(ctx context.Context, in usecase.AcknowledgeInput) (*entity.Credential, error)
	SetActive(ctx context.Context, in usecase.SetActiveInput) (*entity.Credential, error)
	Revoke(ctx context.Context, in usecase.RevokeInput) error

	Get(ctx context.Context, in usecase.GetInput) (*entity.Credential, error)
	List(ctx context.Context, in usecase.ListInput) (*usecase.ListOutput, error)
	StatusOf(c entity.Credential) entity.CredentialStatus
	Dashboard(ctx context.Context) (*entity.Dashboard, error)

	Evaluate(ctx context.Context, in usecase.EvaluateInput) entity.AccessAttempt
	ListAttempts(ctx context.Context, in usecase.ListAttemptsInput) (*usecase.ListAttemptsOutput, error)
	ArchiveAttempts(ctx context.Context, in usecase.ArchiveAttemptsInput) (*entity.Archive, error)

	Lockdown(ctx context.Context) entity.LockdownState
	SetLockdown(ctx context.Context, in usecase.SetLockdownInput) entity.LockdownState
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// API clients
	r.POST("/api/v1/auth/token", end.Token)

	// Credentials
	r.GET("/api/v1/credentials", end.ListCredentials)
	r.GET("/api/v1/credentials/:id", end.GetCredential)
	r.POST("/api/v1/credentials", end.IssueCredential)
	r.POST("/api/v1/credentials/:id/rotate", end.RotateCredential)
	r.POST("/api/v1/credentials/:id/acknowledge", end.AcknowledgeCredential)
	r.PUT("/api/v1/credentials/:id/active", end.SetCredentialActive)
	r.DELETE("/api/v1/credentials/:id", end.RevokeCredential)
	r.POST("/api/v1/credentials-rotate-all", end.RotateAllCredentials)

	// Access decisions
	r.POST("/api/v1/access/evaluate", end.Evaluate)
	r.GET("/api/v1/access/attempts", end.ListAttempts)
	r.POST("/api/v1/access/attempts/archive", end.ArchiveAttempts)

	// Lockdown & overview
	r.GET("/api/v1/lockdown", end.GetLockdown)
	r.PUT("/api/v1/lockdown", end.SetLockdown)
	r.GET("/api/v1/dashboard", end.Dashboard)
}
