package inbound

import (
	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/access/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for credential management and access
// decisions.
type HTTPEndpoint struct {
	uc uc
}

// Token exchanges API client credentials for an access token.
// @Summary Obtain access token
// @Description Verifies the client id and secret and returns a signed bearer token carrying the client role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Client credentials"
// @Success 200 {object} router.successResponse{data=TokenResponse} "Access token"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid client credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/token [post]
func (h *HTTPEndpoint) Token(r *router.Request) (any, error) {
	var req TokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Token(r.Context(), usecase.TokenInput{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		return nil, err
	}

	return TokenResponse{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		Role:        resp.Role,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

// @Summary List credentials
// @Description Returns credentials ordered by issuance, optionally filtered by derived status.
// @Tags Credentials
// @Security BearerAuth
// @Produce json
// @Param status query string false "all, active, expiring or expired"
// @Success 200 {object} router.successResponse{data=ListCredentialsResponse} "Credentials"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/credentials [get]
func (h *HTTPEndpoint) ListCredentials(r *router.Request) (any, error) {
	resp, err := h.uc.List(r.Context(), usecase.ListInput{Status: r.GetQuery("status")})
	if err != nil {
		return nil, err
	}

	out := ListCredentialsResponse{Credentials: make([]CredentialResponse, 0, len(resp.Credentials))}
	for _, c := range resp.Credentials {
		out.Credentials = append(out.Credentials, h.toCredentialResponse(c))
	}

	return out, nil
}

// @Summary Get credential
// @Description Returns one credential without its secret.
// @Tags Credentials
// @Security BearerAuth
// @Produce json
// @Param id path int true "Credential ID"
// @Success 200 {object} router.successResponse{data=CredentialDetailResponse} "Credential"
// @Failure 400 {object} router.errorResponse "Invalid id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Router /api/v1/credentials/{id} [get]
func (h *HTTPEndpoint) GetCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Get(r.Context(), usecase.GetInput{ID: id})
	if err != nil {
		return nil, err
	}

	return CredentialDetailResponse{Credential: h.toCredentialResponse(*resp)}, nil
}

// IssueCredential creates a credential and returns its one-shot provisioning material.
// @Summary Issue credential
// @Description Creates a credential for a principal. The response is the only place the secret, URI and QR code appear.
// @Tags Credentials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body IssueCredentialRequest true "Principal and access class"
// @Success 201 {object} router.successResponse{data=IssueCredentialResponse} "Issued credential"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/credentials [post]
func (h *HTTPEndpoint) IssueCredential(r *router.Request) (any, error) {
	var req IssueCredentialRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Name:        req.Name,
		AccessClass: req.AccessClass,
	})
	if err != nil {
		return nil, err
	}

	return IssueCredentialResponse{
		Credential:   h.toCredentialResponse(resp.Credential),
		Provisioning: toProvisioningResponse(resp.Provisioning),
	}, nil
}

// @Summary Rotate credential
// @Description Replaces the secret. The old key stops working immediately. With extend, expiry restarts from now.
// @Tags Credentials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Credential ID"
// @Param request body RotateCredentialRequest false "Rotation options"
// @Success 200 {object} router.successResponse{data=RotateCredentialResponse} "Rotated credential"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/credentials/{id}/rotate [post]
func (h *HTTPEndpoint) RotateCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req RotateCredentialRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Rotate(r.Context(), usecase.RotateInput{ID: id, Extend: req.Extend})
	if err != nil {
		return nil, err
	}

	return h.toRotateResponse(*resp), nil
}

// @Summary Rotate all credentials
// @Description Emergency rotation of every active credential in one step.
// @Tags Credentials
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=RotateAllCredentialsResponse} "Rotated credentials"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/credentials-rotate-all [post]
func (h *HTTPEndpoint) RotateAllCredentials(r *router.Request) (any, error) {
	resp, err := h.uc.RotateAll(r.Context())
	if err != nil {
		return nil, err
	}

	out := RotateAllCredentialsResponse{Credentials: make([]RotateCredentialResponse, 0, len(resp.Credentials))}
	for _, c := range resp.Credentials {
		out.Credentials = append(out.Credentials, h.toRotateResponse(c))
	}

	return out, nil
}

// @Summary Acknowledge disclosure
// @Description Marks the provisioning material as shown to the principal.
// @Tags Credentials
// @Security BearerAuth
// @Produce json
// @Param id path int true "Credential ID"
// @Success 200 {object} router.successResponse{data=CredentialDetailResponse} "Credential"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Router /api/v1/credentials/{id}/acknowledge [post]
func (h *HTTPEndpoint) AcknowledgeCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Acknowledge(r.Context(), usecase.AcknowledgeInput{ID: id})
	if err != nil {
		return nil, err
	}

	return CredentialDetailResponse{Credential: h.toCredentialResponse(*resp)}, nil
}

// @Summary Enable or disable credential
// @Tags Credentials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Credential ID"
// @Param request body SetCredentialActiveRequest true "Desired state"
// @Success 200 {object} router.successResponse{data=CredentialDetailResponse} "Credential"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Router /api/v1/credentials/{id}/active [put]
func (h *HTTPEndpoint) SetCredentialActive(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req SetCredentialActiveRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SetActive(r.Context(), usecase.SetActiveInput{ID: id, Active: req.Active})
	if err != nil {
		return nil, err
	}

	return CredentialDetailResponse{Credential: h.toCredentialResponse(*resp)}, nil
}

// @Summary Revoke credential
// @Description Removes the credential. Audit entries keep the id.
// @Tags Credentials
// @Security BearerAuth
// @Param id path int true "Credential ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Router /api/v1/credentials/{id} [delete]
func (h *HTTPEndpoint) RevokeCredential(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.Revoke(r.Context(), usecase.RevokeInput{ID: id}); err != nil {
		return nil, err
	}

	return nil, nil
}

// Evaluate decides an access attempt. Denials are a normal result, not an error.
// @Summary Evaluate access code
// @Description Checks a 6-digit code against every active credential and records the decision.
// @Tags Access
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body EvaluateRequest true "Presented code"
// @Success 200 {object} router.successResponse{data=EvaluateResponse} "Decision"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/access/evaluate [post]
func (h *HTTPEndpoint) Evaluate(r *router.Request) (any, error) {
	var req EvaluateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	attempt := h.uc.Evaluate(r.Context(), usecase.EvaluateInput{Code: req.Code})

	return EvaluateResponse{Attempt: toAttemptResponse(attempt)}, nil
}

// @Summary List access attempts
// @Description Returns the most recent attempts first.
// @Tags Access
// @Security BearerAuth
// @Produce json
// @Param outcome query string false "all, granted or denied"
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} router.successResponse{data=ListAttemptsResponse} "Attempts"
// @Failure 400 {object} router.errorResponse "Invalid query"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/access/attempts [get]
func (h *HTTPEndpoint) ListAttempts(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListAttempts(r.Context(), usecase.ListAttemptsInput{
		Outcome: r.GetQuery("outcome"),
		Limit:   int(limit),
	})
	if err != nil {
		return nil, err
	}

	out := ListAttemptsResponse{Attempts: make([]AttemptResponse, 0, len(resp.Attempts))}
	for _, a := range resp.Attempts {
		out.Attempts = append(out.Attempts, toAttemptResponse(a))
	}

	return out, nil
}

// @Summary Archive access attempts
// @Description Exports the filtered audit log to object storage and returns a presigned download URL.
// @Tags Access
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ArchiveAttemptsRequest false "Outcome filter"
// @Success 200 {object} router.successResponse{data=ArchiveAttemptsResponse} "Archive location"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/access/attempts/archive [post]
func (h *HTTPEndpoint) ArchiveAttempts(r *router.Request) (any, error) {
	var req ArchiveAttemptsRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ArchiveAttempts(r.Context(), usecase.ArchiveAttemptsInput{Outcome: req.Outcome})
	if err != nil {
		return nil, err
	}

	return ArchiveAttemptsResponse{
		Bucket:  resp.Bucket,
		Key:     resp.Key,
		Entries: resp.Entries,
		Size:    resp.Size,
		URL:     resp.URL,
	}, nil
}

// @Summary Get lockdown state
// @Tags Lockdown
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=LockdownResponse} "Lockdown state"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/lockdown [get]
func (h *HTTPEndpoint) GetLockdown(r *router.Request) (any, error) {
	return toLockdownResponse(h.uc.Lockdown(r.Context())), nil
}

// @Summary Set lockdown state
// @Description Enables or lifts the deny-all switch. Lockdown never ends on its own.
// @Tags Lockdown
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SetLockdownRequest true "Desired state"
// @Success 200 {object} router.successResponse{data=LockdownResponse} "Lockdown state"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/lockdown [put]
func (h *HTTPEndpoint) SetLockdown(r *router.Request) (any, error) {
	var req SetLockdownRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return toLockdownResponse(h.uc.SetLockdown(r.Context(), usecase.SetLockdownInput{Active: req.Active})), nil
}

// @Summary Dashboard counters
// @Tags Credentials
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=DashboardResponse} "Counters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/dashboard [get]
func (h *HTTPEndpoint) Dashboard(r *router.Request) (any, error) {
	resp, err := h.uc.Dashboard(r.Context())
	if err != nil {
		return nil, err
	}

	return DashboardResponse{
		Total:    resp.Total,
		Active:   resp.Active,
		Expiring: resp.Expiring,
		Expired:  resp.Expired,
		Inactive: resp.Inactive,
		Lockdown: toLockdownResponse(resp.Lockdown),
	}, nil
}

func (h *HTTPEndpoint) toCredentialResponse(c entity.Credential) CredentialResponse {
	return CredentialResponse{
		ID:          c.ID,
		Name:        c.Name,
		AccessClass: c.AccessClass.String(),
		Status:      h.uc.StatusOf(c).String(),
		IssuedAt:    c.IssuedAt,
		ExpiresAt:   c.ExpiresAt,
		RotatedAt:   c.RotatedAt,
		Disclosed:   c.Disclosed,
		Active:      c.Active,
	}
}

func (h *HTTPEndpoint) toRotateResponse(c entity.IssuedCredential) RotateCredentialResponse {
	return RotateCredentialResponse{
		Credential:   h.toCredentialResponse(c.Credential),
		Provisioning: toProvisioningResponse(c.Provisioning),
	}
}
