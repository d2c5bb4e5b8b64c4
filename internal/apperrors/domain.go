package apperrors

// Domain errors shared across services
var (
	ErrUnauthenticated      = Unauthenticated("authentication required")
	ErrInvalidToken         = New(CodeInvalidToken, "invalid or expired token")
	ErrPrincipalNotFound    = NotFound("user not found")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrSelfAction           = InvalidInput("action cannot target yourself")
	ErrBlocked              = Forbidden("interaction not allowed")
	ErrAlreadyLiked         = Conflict("already liked")
	ErrAlreadyBlocked       = Conflict("already blocked")
	ErrQuickAccessLike      = Forbidden("quick-access accounts cannot like or be liked")
	ErrEmptyMessage         = InvalidInput("message content is empty")
	ErrMessageTooLong       = InvalidInput("message content exceeds the length limit")
	ErrEmailTaken           = Conflict("email is already registered")
	ErrBadCredentials       = Unauthenticated("invalid email or password")
)
