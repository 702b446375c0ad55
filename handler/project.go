package handler

import (
	"taskflow/response"
	"taskflow/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateProject(c *gin.Context) {
	var in service.CreateProjectInput
	if !bindJSON(c, &in) {
		return
	}
	project, err := h.svc.Projects.Create(c.Request.Context(), CurrentUserID(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, project)
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.Projects.List(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	project, err := h.svc.Projects.Get(c.Request.Context(), CurrentUserID(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, project)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.UpdateProjectInput
	if !bindJSON(c, &in) {
		return
	}
	project, err := h.svc.Projects.Update(c.Request.Context(), CurrentUserID(c), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, project)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Projects.Delete(c.Request.Context(), CurrentUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *Handler) AddMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.AddMemberInput
	if !bindJSON(c, &in) {
		return
	}
	membership, err := h.svc.Projects.AddMember(c.Request.Context(), CurrentUserID(c), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, membership)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	target, ok := pathID(c, "userId")
	if !ok {
		return
	}
	if err := h.svc.Projects.RemoveMember(c.Request.Context(), CurrentUserID(c), id, target); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"projectId": id, "userId": target})
}
