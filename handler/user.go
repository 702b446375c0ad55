package handler

import (
	"taskflow/dao/model"
	"taskflow/response"
	"taskflow/service"
	"taskflow/util"

	"github.com/gin-gonic/gin"
)

type AuthResp struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *Handler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.Users.Register(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.issue(c, user, response.Created)
}

func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.Users.Login(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.issue(c, user, response.Success)
}

func (h *Handler) issue(c *gin.Context, user *model.User, reply func(*gin.Context, any)) {
	token, err := h.tokens.CreateToken(&util.JWTMessage{UserID: user.ID, Email: user.Email})
	if err != nil {
		response.Fail(c, err)
		return
	}
	reply(c, AuthResp{Token: token, User: user})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Users.Get(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.svc.Users.Profile(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var in service.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}
	profile, err := h.svc.Users.UpdateProfile(c.Request.Context(), CurrentUserID(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, profile)
}

func (h *Handler) SearchUsers(c *gin.Context) {
	in := service.SearchInput{Query: c.Query("query")}
	users, err := h.svc.Users.Search(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, users)
}
