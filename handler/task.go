package handler

import (
	"strconv"

	"taskflow/dao/model"
	"taskflow/response"
	"taskflow/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTask(c *gin.Context) {
	var in service.CreateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.svc.Tasks.Create(c.Request.Context(), CurrentUserID(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, task)
}

// ListTasks reads ?projectId=&status=&assignedToMe= from the query string.
func (h *Handler) ListTasks(c *gin.Context) {
	var in service.ListTasksInput
	var ok bool
	if in.ProjectID, ok = queryID(c, "projectId"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseTaskStatus(raw)
		if err != nil {
			response.ValidationError(c, err.Error())
			return
		}
		in.Status = &status
	}
	if raw := c.Query("assignedToMe"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequestError(c, "invalid assignedToMe")
			return
		}
		in.AssignedToMe = v
	}

	tasks, err := h.svc.Tasks.List(c.Request.Context(), CurrentUserID(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, tasks)
}

func (h *Handler) TaskStats(c *gin.Context) {
	var in service.StatsInput
	var ok bool
	if in.ProjectID, ok = queryID(c, "projectId"); !ok {
		return
	}
	stats, err := h.svc.Tasks.Stats(c.Request.Context(), CurrentUserID(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.svc.Tasks.Get(c.Request.Context(), CurrentUserID(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.UpdateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.svc.Tasks.Update(c.Request.Context(), CurrentUserID(c), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Tasks.Delete(c.Request.Context(), CurrentUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.AddCommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.svc.Tasks.AddComment(c.Request.Context(), CurrentUserID(c), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, comment)
}

// queryID parses an optional positive id from the query string.
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || v == 0 {
		response.BadRequestError(c, "invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}
