package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"picvault/internal/domain"
	"picvault/internal/service"
)

// UserResponse is the wire shape of a user. Password hash and salt never
// leave the server.
type UserResponse struct {
	ID            int64  `json:"id"`
	UserName      string `json:"user_name"`
	PhoneNumber   string `json:"phone_number"`
	Role          string `json:"role"`
	Disabled      bool   `json:"disabled"`
	Remark        string `json:"remark,omitempty"`
	LastLoginTime string `json:"last_login_time,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func userToResponse(user domain.User) UserResponse {
	resp := UserResponse{
		ID:          user.ID,
		UserName:    user.UserName,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		Disabled:    user.Disabled,
		Remark:      user.Remark,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   user.UpdatedAt.Format(time.RFC3339),
	}
	if !user.LastLoginTime.IsZero() {
		resp.LastLoginTime = user.LastLoginTime.Format(time.RFC3339)
	}
	return resp
}

func loginUser(c *gin.Context) *domain.User {
	return c.MustGet(loginUserKey).(*domain.User)
}

type registerRequest struct {
	UserName    string `json:"user_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Remark      string `json:"remark"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		UserName:    req.UserName,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Remark:      req.Remark,
	}, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, userToResponse(*user))
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, token, expiresAt, err := h.users.Login(c.Request.Context(), req.PhoneNumber, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      userToResponse(*user),
	})
}

func (h *Handler) userInfo(c *gin.Context) {
	respondOK(c, userToResponse(*loginUser(c)))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), loginUser(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

type updateUserRequest struct {
	ID       int64  `json:"id" binding:"required"`
	UserName string `json:"user_name"`
	Password string `json:"password"`
	Disabled *bool  `json:"disabled"`
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.Update(c.Request.Context(), loginUser(c), service.UserPatch{
		ID:       req.ID,
		UserName: req.UserName,
		Password: req.Password,
		Disabled: req.Disabled,
	}, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, userToResponse(*user))
}

type userListResponse struct {
	Items []UserResponse `json:"items"`
	Page  domain.Page    `json:"page"`
}

func (h *Handler) listUsers(c *gin.Context) {
	pageNum, pageSize := pageParams(c)

	users, page, err := h.users.List(c.Request.Context(), c.Query("user_name"), pageNum, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = userToResponse(users[i])
	}
	respondOK(c, userListResponse{Items: items, Page: page})
}
