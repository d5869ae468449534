package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"picvault/internal/errcode"
	"picvault/internal/repository"
	"picvault/internal/service"
)

const loginUserKey = "login_user"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	images service.ImageService
	audits repository.AuditRepository
}

func NewHandler(users service.UserService, images service.ImageService, audits repository.AuditRepository) *Handler {
	return &Handler{
		users:  users,
		images: images,
		audits: audits,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		// Panics become a plain 500 envelope; the stack stays in the log.
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{
			Code:    errcode.ErrInternal.Code,
			Message: errcode.ErrInternal.Message,
		})
	}))
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		user := api.Group("/user")
		{
			user.POST("/regist", h.register)
			user.POST("/login", h.login)

			authed := user.Group("", h.authMiddleware())
			authed.GET("/info", h.userInfo)
			authed.POST("/logout", h.logout)
			authed.PUT("/update", h.updateUser)
			authed.GET("/list", h.requireAdmin(), h.listUsers)
		}

		img := api.Group("/img", h.authMiddleware())
		{
			img.POST("/upload", h.uploadImage)
			img.GET("/list", h.listImages)
			img.GET("/detail/:id", h.imageDetail)
			img.PUT("/update", h.updateImage)
			img.DELETE("/delete/:id", h.deleteImage)
			img.POST("/batch_delete", h.batchDeleteImages)
		}

		api.GET("/audit/list", h.authMiddleware(), h.requireAdmin(), h.listAudits)
	}
}

// envelope is the uniform response body. code is 200 on success, a coded
// error otherwise; detail carries extra context and is omitted when empty.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Detail  string `json:"detail,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Code: http.StatusOK, Message: "SUCCESS", Data: data})
}

func respondError(c *gin.Context, err error) {
	code := errcode.ErrInternal
	detail := ""

	var de *errcode.DetailedError
	var bare errcode.Code
	switch {
	case errors.As(err, &de):
		code = de.Code()
		detail = de.Detail
	case errors.As(err, &bare):
		code = bare
	case errors.Is(err, repository.ErrNotFound):
		code = errcode.ErrNotFound
	default:
		detail = err.Error()
	}

	c.AbortWithStatusJSON(code.HTTPStatus(), envelope{
		Code:    code.Code,
		Message: code.Message,
		Detail:  detail,
	})
}

func respondBadRequest(c *gin.Context, detail string) {
	respondError(c, errcode.ErrInvalidArgument.WithDetail(detail))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authMiddleware resolves the bearer token to a user and stores it in the
// request context. Every failure, including a superseded session, aborts
// with the matching coded envelope.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondError(c, errcode.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}

		user, err := h.users.ValidateSession(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(loginUserKey, user)
		c.Next()
	}
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loginUser(c).IsAdmin() {
			respondError(c, errcode.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(header)
}

func pageParams(c *gin.Context) (int, int) {
	pageNum, err := strconv.Atoi(c.DefaultQuery("page_num", "1"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 0 {
		pageSize = 10
	}
	return pageNum, pageSize
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
