package accounthandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/infrastructure/googlecalendar"
	"meetscribe-server/internal/infrastructure/linkedin"
	"meetscribe-server/internal/interfaces/httpserver/middlewares"
	"meetscribe-server/internal/utils/platformerrors"
)

// AccountHandler serves OAuth connect callbacks and connected-account
// management.
type AccountHandler struct {
	accounts account.Repository
	google   *googlecalendar.Client
	linkedin *linkedin.Client
	logger   zerolog.Logger
}

// NewAccountHandler constructs a new handler instance.
func NewAccountHandler(
	accounts account.Repository,
	google *googlecalendar.Client,
	li *linkedin.Client,
	logger zerolog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		google:   google,
		linkedin: li,
		logger:   logger,
	}
}

// AccountResponse is the JSON shape of one connected account. Tokens are
// never exposed.
type AccountResponse struct {
	ID        uint       `json:"id"`
	Provider  string     `json:"provider"`
	Email     *string    `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ConnectRequest carries the OAuth authorization code from the frontend
// redirect.
type ConnectRequest struct {
	Code string `json:"code" binding:"required"`
}

// ConnectGoogle handles POST /v1/accounts/google/connect. A user may connect
// multiple Google accounts; each is keyed by its provider subject.
func (h *AccountHandler) ConnectGoogle(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "authorization code is required")
		return
	}

	ctx := c.Request.Context()

	tokens, err := h.google.ExchangeCode(ctx, req.Code)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	info, err := h.google.GetUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	expiresAt := tokens.ExpiresAt
	acct, err := h.accounts.UpsertMultiAccount(ctx, &account.ConnectedAccount{
		UserID:            principal.UserID,
		Provider:          account.ProviderGoogle,
		ProviderUserID:    info.ID,
		ProviderUserEmail: &info.Email,
		AccessToken:       tokens.AccessToken,
		RefreshToken:      tokens.RefreshToken,
		ExpiresAt:         &expiresAt,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	h.logger.Info().
		Str("provider", account.ProviderGoogle).
		Uint("account_id", acct.ID).
		Msg("connected account")
	c.JSON(http.StatusOK, toAccountResponse(acct))
}

// ConnectLinkedIn handles POST /v1/accounts/linkedin/connect. LinkedIn is a
// single-account provider; reconnecting replaces the stored credential.
func (h *AccountHandler) ConnectLinkedIn(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "authorization code is required")
		return
	}

	ctx := c.Request.Context()

	tokens, err := h.linkedin.ExchangeCode(ctx, req.Code)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	info, err := h.linkedin.GetUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	expiresAt := tokens.ExpiresAt
	acct, err := h.accounts.UpsertSingleAccount(ctx, &account.ConnectedAccount{
		UserID:            principal.UserID,
		Provider:          account.ProviderLinkedIn,
		ProviderUserID:    info.Sub,
		ProviderUserEmail: &info.Email,
		AccessToken:       tokens.AccessToken,
		RefreshToken:      tokens.RefreshToken,
		ExpiresAt:         &expiresAt,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	h.logger.Info().
		Str("provider", account.ProviderLinkedIn).
		Uint("account_id", acct.ID).
		Msg("connected account")
	c.JSON(http.StatusOK, toAccountResponse(acct))
}

// List handles GET /v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	accounts, err := h.accounts.ListByUser(c.Request.Context(), principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	out := make([]AccountResponse, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, toAccountResponse(acct))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

// Disconnect handles DELETE /v1/accounts/:id
func (h *AccountHandler) Disconnect(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid account id")
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), uint(id), principal.UserID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

func toAccountResponse(acct *account.ConnectedAccount) AccountResponse {
	return AccountResponse{
		ID:        acct.ID,
		Provider:  acct.Provider,
		Email:     acct.ProviderUserEmail,
		ExpiresAt: acct.ExpiresAt,
		CreatedAt: acct.CreatedAt,
	}
}
