package constants

const (
	// ContextKeyUserID is used both as the gin context key and the session key
	// holding the authenticated user's ID.
	ContextKeyUserID = "user_id"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "task_session"

	// MinPasswordLength is the minimum accepted password length on register.
	MinPasswordLength = 6

	// MaxPasswordLength is the number of bytes bcrypt can hash.
	MaxPasswordLength = 72

	// StatusCompleted is the only status token that selects completed tasks.
	StatusCompleted = "completed"
)
