package response

type ErrorCode int

const (
	OK ErrorCode = 0

	InvalidRequest   ErrorCode = 40001
	ValidationFailed ErrorCode = 40002

	Unauthenticated ErrorCode = 40100
	TokenExpired    ErrorCode = 40101
	InvalidToken    ErrorCode = 40103

	InsufficientPermissions ErrorCode = 40301

	NotFound     ErrorCode = 40401
	UserNotFound ErrorCode = 40402

	AlreadyMember     ErrorCode = 40901
	Conflict          ErrorCode = 40902
	CannotRemoveOwner ErrorCode = 40903

	AssigneeNotMember ErrorCode = 42201

	// Infrastructure failure; the message is never forwarded to the client
	InternalError ErrorCode = 50000
)
