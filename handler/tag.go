package handler

import (
	"taskflow/response"
	"taskflow/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTag(c *gin.Context) {
	var in service.CreateTagInput
	if !bindJSON(c, &in) {
		return
	}
	tag, err := h.svc.Tags.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, tag)
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.svc.Tags.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, tags)
}

func (h *Handler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.UpdateTagInput
	if !bindJSON(c, &in) {
		return
	}
	tag, err := h.svc.Tags.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, tag)
}

func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Tags.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}
