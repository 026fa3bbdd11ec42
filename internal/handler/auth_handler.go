package handler

import (
	"net/http"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/credstore"
	"github.com/GustaavooC/mooda-sub000/internal/middleware"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/internal/repository"
	"github.com/GustaavooC/mooda-sub000/pkg/jwtutil"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/GustaavooC/mooda-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves sign-in, registration and profile endpoints
type AuthHandler struct {
	users       *repository.UserRepository
	tenants     *repository.TenantRepository
	credentials credstore.Store
	jwt         *jwtutil.JWTUtil
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(users *repository.UserRepository, tenants *repository.TenantRepository, credentials credstore.Store, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{users: users, tenants: tenants, credentials: credentials, jwt: jwt}
}

// SignIn authenticates a user. The local credential store is consulted
// first: a match fabricates a session from the stored profile without any
// database authentication. Only on a miss does the request fall through to
// real password verification.
func (h *AuthHandler) SignIn(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.SigninCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sign-in request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	// The pre-filled sign-in deep link carries credentials as query
	// parameters; accept them when the body is empty
	if req.Email == "" {
		req.Email = c.QueryParam("email")
		req.Password = c.QueryParam("password")
	}
	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_signin")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Local credential store short-circuit
	if entry, ok, err := h.credentials.Lookup(req.Email); err == nil && ok && entry.Password == req.Password {
		prometheus.CredStoreHitCounter.Inc()
		token, err := h.jwt.GenerateToken(jwtutil.UserClaims{
			Email:         credstore.NormalizeEmail(req.Email),
			UserID:        entry.Profile.UserID.String(),
			Name:          entry.Profile.Name,
			TenantID:      entry.Profile.TenantID.String(),
			TenantSlug:    entry.Profile.TenantSlug,
			TenantName:    entry.Profile.TenantName,
			Role:          model.RoleOwner,
			PlatformAdmin: entry.Profile.IsAdmin,
			DemoSession:   true,
		})
		if err != nil {
			log.Error("Failed to generate token for local credential", zap.Error(err))
			prometheus.RecordAuthError("token_generation_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
		}

		log.Info("User signed in from local credential store",
			zap.String("email", entry.Email),
			zap.String("tenant_slug", entry.Profile.TenantSlug))
		return c.JSON(http.StatusOK, echo.Map{
			"token": token,
			"user": echo.Map{
				"id":    entry.Profile.UserID,
				"email": entry.Email,
				"name":  entry.Profile.Name,
			},
			"tenant": echo.Map{
				"id":   entry.Profile.TenantID,
				"slug": entry.Profile.TenantSlug,
				"name": entry.Profile.TenantName,
			},
			"demo_session": true,
		})
	}

	// Real authentication against the users table
	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !h.users.VerifyPassword(user, req.Password) {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	claims := jwtutil.UserClaims{
		Email:         user.Email,
		UserID:        user.ID.String(),
		Name:          user.Name,
		PlatformAdmin: user.IsPlatformAdmin,
	}

	// Attach the user's tenant scope when they own or belong to one
	var tenantResponse echo.Map
	if ut, err := h.firstActiveTenant(user); err == nil && ut != nil {
		claims.TenantID = ut.Tenant.ID.String()
		claims.TenantSlug = ut.Tenant.Slug
		claims.TenantName = ut.Tenant.Name
		claims.Role = ut.Role
		tenantResponse = echo.Map{
			"id":   ut.Tenant.ID,
			"slug": ut.Tenant.Slug,
			"name": ut.Tenant.Name,
			"role": ut.Role,
		}
	}

	token, err := h.jwt.GenerateToken(claims)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User signed in", zap.String("email", user.Email))
	response := echo.Map{
		"token": token,
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	}
	if tenantResponse != nil {
		response["tenant"] = tenantResponse
	}
	return c.JSON(http.StatusOK, response)
}

// Register creates a plain user account (no tenant attached)
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	if _, err := h.users.FindByEmail(req.Email); err == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user, err := h.users.Create(req.Email, req.Name, req.Password)
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Profile returns the authenticated session's identity
func (h *AuthHandler) Profile(c echo.Context) error {
	claims, ok := middleware.ClaimsFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":             claims.UserID,
			"email":          claims.Email,
			"name":           claims.Name,
			"platform_admin": claims.PlatformAdmin,
		},
		"tenant": echo.Map{
			"id":   claims.TenantID,
			"slug": claims.TenantSlug,
			"name": claims.TenantName,
			"role": claims.Role,
		},
		"demo_session": claims.DemoSession,
	})
}

func (h *AuthHandler) firstActiveTenant(user *model.User) (*model.TenantUser, error) {
	return h.tenants.FirstActiveMembership(user.ID)
}
