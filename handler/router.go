// Package handler exposes the services over HTTP with gin. Handlers only
// decode the request; validation and authorization live in the services.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskflow/config"
	"taskflow/dao/model"
	"taskflow/response"
	"taskflow/service"
	"taskflow/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc    *service.Services
	tokens *util.TokenManager
}

func NewRouter(cfg *config.Config, svc *service.Services, tokens *util.TokenManager) *gin.Engine {
	h := &Handler{svc: svc, tokens: tokens}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	auth := AuthMiddleware(tokens)
	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", auth, h.Me)
		}

		users := api.Group("/users", auth)
		{
			users.GET("/me", h.GetProfile)
			users.PATCH("/me", h.UpdateProfile)
			users.GET("/search", h.SearchUsers)
		}

		projects := api.Group("/projects", auth)
		{
			projects.POST("", h.CreateProject)
			projects.GET("", h.ListProjects)
			projects.GET("/:id", h.GetProject)
			projects.PATCH("/:id", h.UpdateProject)
			projects.DELETE("/:id", h.DeleteProject)
			projects.POST("/:id/members", h.AddMember)
			projects.DELETE("/:id/members/:userId", h.RemoveMember)
		}

		tasks := api.Group("/tasks", auth)
		{
			tasks.POST("", h.CreateTask)
			tasks.GET("", h.ListTasks)
			tasks.GET("/stats", h.TaskStats)
			tasks.GET("/:id", h.GetTask)
			tasks.PATCH("/:id", h.UpdateTask)
			tasks.DELETE("/:id", h.DeleteTask)
			tasks.POST("/:id/comments", h.AddComment)
		}

		tags := api.Group("/tags", auth)
		{
			tags.POST("", h.CreateTag)
			tags.GET("", h.ListTags)
			tags.PATCH("/:id", h.UpdateTag)
			tags.DELETE("/:id", h.DeleteTag)
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// cors.New panics on an empty origin list
	if len(origins) == 0 {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	return c
}

func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || v == 0 {
		response.BadRequestError(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// bindJSON decodes the body into dst. Malformed JSON is an invalid request;
// a field holding the wrong type or an unknown enum name fails validation.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var enumErr *model.EnumError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &enumErr):
		response.ValidationError(c, enumErr.Error())
	case errors.As(err, &typeErr):
		response.ValidationError(c, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
	default:
		response.BadRequestError(c, err.Error())
	}
	return false
}
