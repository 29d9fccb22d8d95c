package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// kindStatus maps error kinds to HTTP status codes. Unlisted kinds are 500.
var kindStatus = map[string]int{
	"VALIDATION":              http.StatusBadRequest,
	"UNBALANCED_VOUCHER":      http.StatusBadRequest,
	"ZERO_AMOUNT":             http.StatusBadRequest,
	"MALFORMED_ENTRY":         http.StatusBadRequest,
	"NOT_FOUND":               http.StatusNotFound,
	"INVALID_STATE":           http.StatusConflict,
	"IMMUTABLE":               http.StatusConflict,
	"LOCKED":                  http.StatusLocked,
	"EVENT_ALREADY_PROCESSED": http.StatusConflict,
	"CONFLICT":                http.StatusConflict,
	"DUPLICATE":               http.StatusConflict,
	"PERMISSION":              http.StatusForbidden,
	"UNAUTHORIZED":            http.StatusUnauthorized,
}

// statusForError returns the HTTP status and kind name of err.
func statusForError(err error) (int, string) {
	kind := apperrors.Kind(err)
	if status, ok := kindStatus[kind]; ok {
		return status, kind
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 {
		return appErr.Code, kind
	}
	return http.StatusInternalServerError, kind
}

// respondError writes the error envelope. Internal failures are logged and reported
// with failMsg only.
func respondError(c *gin.Context, err error, failMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status, kind := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(failMsg, slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: failMsg, Kind: kind})
		return
	}
	logger.Warn(failMsg, slog.String("kind", kind), slog.String("error", err.Error()))
	c.JSON(status, dto.ErrorResponse{Error: err.Error(), Kind: kind})
}

func respondBadRequest(c *gin.Context, msg string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Bad request", slog.String("error", msg))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Kind: "VALIDATION"})
}

func respondUnauthorized(c *gin.Context) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Kind: "UNAUTHORIZED"})
}

// entityScope resolves which books a request reads or writes and checks the
// principal may touch them.
type entityScope struct {
	access portssvc.EntityAccessValidator
}

// principal returns the authenticated principal or writes a 401.
func (s entityScope) principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok || p.ActorID == "" {
		respondUnauthorized(c)
		return domain.Principal{}, false
	}
	return p, true
}

// resolve picks the requested entity, defaulting to the caller's own books: a vendor's
// books for vendor principals and the admin books otherwise.
func (s entityScope) resolve(c *gin.Context, params dto.EntityParams) (domain.EntityRef, domain.Principal, bool) {
	p, ok := s.principal(c)
	if !ok {
		return domain.EntityRef{}, p, false
	}

	entity := domain.AdminEntity()
	if params.IsSet() {
		ref, err := params.ToEntity()
		if err != nil {
			respondBadRequest(c, err.Error())
			return domain.EntityRef{}, p, false
		}
		entity = ref
	} else if p.Role == domain.RoleVendor {
		entity = domain.VendorEntity(p.VendorID)
	}

	if !s.allow(c, entity, p) {
		return domain.EntityRef{}, p, false
	}
	return entity, p, true
}

// allow checks access to entity and writes a 403 when it is denied.
func (s entityScope) allow(c *gin.Context, entity domain.EntityRef, p domain.Principal) bool {
	if err := s.access.ValidateEntityAccess(c.Request.Context(), entity, p.ActorID); err != nil {
		respondError(c, err, "Access denied")
		return false
	}
	return true
}

// vendorScope checks access to one vendor's data, or to every vendor when vendorID is
// empty. Vendors always see their own data only.
func (s entityScope) vendorScope(c *gin.Context, vendorID string) (string, bool) {
	p, ok := s.principal(c)
	if !ok {
		return "", false
	}
	if p.Role == domain.RoleVendor && vendorID == "" {
		vendorID = p.VendorID
	}
	entity := domain.AdminEntity()
	if vendorID != "" {
		entity = domain.VendorEntity(vendorID)
	}
	if !s.allow(c, entity, p) {
		return "", false
	}
	return vendorID, true
}
