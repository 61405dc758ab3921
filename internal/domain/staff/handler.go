package staff

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc      *Service
	verifier *auth.Verifier
	tokens   *auth.TokenService
}

func NewHandler(svc *Service, verifier *auth.Verifier, tokens *auth.TokenService) *Handler {
	return &Handler{svc: svc, verifier: verifier, tokens: tokens}
}

// RegisterAuthRoutes mounts the public authentication endpoints.
func (h *Handler) RegisterAuthRoutes(public *echo.Group) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/register", h.Register)
}

// RegisterRoutes mounts the account management endpoints. The policy table
// already restricts /staff to administrators.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/staff", h.List)
	api.GET("/staff/:id", h.Get)
	api.POST("/staff", h.Create)
	api.PUT("/staff/:id", h.Update)
	api.POST("/staff/:id/deactivate", h.Deactivate)
	api.POST("/staff/:id/activate", h.Activate)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string  `json:"token"`
	TokenType string  `json:"token_type"`
	ExpiresIn int     `json:"expires_in"`
	Staff     Summary `json:"staff"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "required"
	}
	if req.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
	}

	ctx := c.Request().Context()
	acct, err := h.verifier.Verify(ctx, req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token, err := h.tokens.Issue(acct.ID, acct.Role, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issuing token")
	}

	member, err := h.svc.GetByUsername(ctx, acct.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "loading account")
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.tokens.TTL().Seconds()),
		Staff:     member.Summary(),
	})
}

func (h *Handler) Register(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		if isDuplicate(err) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, acct)
}

func (h *Handler) Create(c echo.Context) error {
	return h.Register(c)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	acct, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "staff account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, acct)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	accounts, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(accounts, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var acct Staff
	if err := c.Bind(&acct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	acct.ID = id
	if err := h.svc.Update(c.Request().Context(), &acct); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "staff account not found")
		case isDuplicate(err):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, acct)
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *Handler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *Handler) setActive(c echo.Context, active bool) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var svcErr error
	if active {
		svcErr = h.svc.Activate(c.Request().Context(), id)
	} else {
		svcErr = h.svc.Deactivate(c.Request().Context(), id)
	}
	if svcErr != nil {
		if errors.Is(svcErr, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "staff account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, svcErr.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateLicense)
}
