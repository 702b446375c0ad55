package response

import (
	"net/http"

	"taskflow/errs"
	"taskflow/logutils"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data any, code ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

// Success sends data with 200 OK.
func Success(c *gin.Context, data any) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

// Created sends data with 201 Created.
func Created(c *gin.Context, data any) {
	wrapResponse(c, http.StatusCreated, "", data, OK)
}

// HTTPError sends an HTTP error response with the specified HTTP code, error message, and error code.
func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

// BadRequestError is used when ShouldBindJSON, ShouldBindQuery or a path
// parameter fails to parse.
func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

// ValidationError is used when a well-formed body carries a value of the
// wrong type or an unknown enum name.
func ValidationError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, ValidationFailed)
}

type mapping struct {
	status int
	code   ErrorCode
}

var byKind = map[errs.Kind]mapping{
	errs.KindValidation:              {http.StatusBadRequest, ValidationFailed},
	errs.KindUnauthenticated:         {http.StatusUnauthorized, Unauthenticated},
	errs.KindInsufficientPermissions: {http.StatusForbidden, InsufficientPermissions},
	errs.KindNotFound:                {http.StatusNotFound, NotFound},
	errs.KindUserNotFound:            {http.StatusNotFound, UserNotFound},
	errs.KindAlreadyMember:           {http.StatusConflict, AlreadyMember},
	errs.KindConflict:                {http.StatusConflict, Conflict},
	errs.KindCannotRemoveOwner:       {http.StatusConflict, CannotRemoveOwner},
	errs.KindAssigneeNotMember:       {http.StatusUnprocessableEntity, AssigneeNotMember},
}

// Fail reports err to the client. Domain errors keep their message; anything
// else is logged and answered with a generic 500.
func Fail(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	m, ok := byKind[kind]
	if !ok {
		logutils.Log.WithFields(logutils.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("request failed")
		HTTPError(c, http.StatusInternalServerError, "internal server error", InternalError)
		return
	}
	HTTPError(c, m.status, err.Error(), m.code)
}
