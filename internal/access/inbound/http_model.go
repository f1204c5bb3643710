package inbound

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
)

type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Role        string    `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CredentialResponse is the read model of a credential. It never carries the
// secret.
type CredentialResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	AccessClass string     `json:"access_class"`
	Status      string     `json:"status"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RotatedAt   *time.Time `json:"rotated_at,omitempty"`
	Disclosed   bool       `json:"disclosed"`
	Active      bool       `json:"active"`
}

type ProvisioningResponse struct {
	URI    string `json:"uri"`
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

type IssueCredentialRequest struct {
	Name        string `json:"name"`
	AccessClass string `json:"access_class"`
}

type IssueCredentialResponse struct {
	Credential   CredentialResponse   `json:"credential"`
	Provisioning ProvisioningResponse `json:"provisioning"`
}

func (IssueCredentialResponse) Message() string {
	return "Credential issued. Show the provisioning material to the principal now; it is not shown again."
}

func (IssueCredentialResponse) StatusCode() int {
	return http.StatusCreated
}

type RotateCredentialRequest struct {
	Extend bool `json:"extend"`
}

type RotateCredentialResponse struct {
	Credential   CredentialResponse   `json:"credential"`
	Provisioning ProvisioningResponse `json:"provisioning"`
}

func (RotateCredentialResponse) Message() string {
	return "Credential rotated. The previous key no longer opens doors."
}

type RotateAllCredentialsResponse struct {
	Credentials []RotateCredentialResponse `json:"credentials"`
}

func (r RotateAllCredentialsResponse) Message() string {
	return "All " + strconv.Itoa(len(r.Credentials)) + " active credentials rotated."
}

type SetCredentialActiveRequest struct {
	Active bool `json:"active"`
}

type CredentialDetailResponse struct {
	Credential CredentialResponse `json:"credential"`
}

type ListCredentialsResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

func (r ListCredentialsResponse) Meta() map[string]any {
	return map[string]any{"count": len(r.Credentials)}
}

type EvaluateRequest struct {
	Code string `json:"code"`
}

type AttemptResponse struct {
	ID          string    `json:"id"`
	Seq         uint64    `json:"seq"`
	PrincipalID *int64    `json:"principal_id"`
	Code        string    `json:"code"`
	Timestamp   time.Time `json:"timestamp"`
	Outcome     string    `json:"outcome"`
	Granted     bool      `json:"granted"`
}

type EvaluateResponse struct {
	Attempt AttemptResponse `json:"attempt"`
}

func (r EvaluateResponse) Message() string {
	if r.Attempt.Granted {
		return "Access granted"
	}
	return "Access denied"
}

type ListAttemptsResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

func (r ListAttemptsResponse) Meta() map[string]any {
	return map[string]any{"count": len(r.Attempts)}
}

type ArchiveAttemptsRequest struct {
	Outcome string `json:"outcome"`
}

type ArchiveAttemptsResponse struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Entries int    `json:"entries"`
	Size    int64  `json:"size"`
	URL     string `json:"url"`
}

func (ArchiveAttemptsResponse) Message() string {
	return "Audit log archived"
}

type SetLockdownRequest struct {
	Active bool `json:"active"`
}

type LockdownResponse struct {
	Active    bool       `json:"active"`
	ChangedAt *time.Time `json:"changed_at,omitempty"`
}

func (r LockdownResponse) Message() string {
	if r.Active {
		return "Lockdown is active: all access is denied"
	}
	return "Normal operation"
}

type DashboardResponse struct {
	Total    int              `json:"total"`
	Active   int              `json:"active"`
	Expiring int              `json:"expiring"`
	Expired  int              `json:"expired"`
	Inactive int              `json:"inactive"`
	Lockdown LockdownResponse `json:"lockdown"`
}

func toLockdownResponse(s entity.LockdownState) LockdownResponse {
	resp := LockdownResponse{Active: s.Active}
	if !s.ChangedAt.IsZero() {
		at := s.ChangedAt
		resp.ChangedAt = &at
	}
	return resp
}

func toAttemptResponse(a entity.AccessAttempt) AttemptResponse {
	return AttemptResponse{
		ID:          a.ID,
		Seq:         a.Seq,
		PrincipalID: a.PrincipalID,
		Code:        a.Code,
		Timestamp:   a.Timestamp,
		Outcome:     a.Outcome.String(),
		Granted:     a.Outcome.IsGranted(),
	}
}

func toProvisioningResponse(p entity.Provisioning) ProvisioningResponse {
	return ProvisioningResponse{URI: p.URI, Secret: p.Secret, QRCode: p.QRCode}
}
