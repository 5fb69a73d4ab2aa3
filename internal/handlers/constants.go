package handlers

const (
	FamilySessionCookieName = "session_id"
	AdminSessionCookieName  = "admin_session_id"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrTooManyRequests     = "Too many requests. Please try again later."
	ErrInternalServerError = "Internal server error"
	ErrSessionUnavailable  = "Sign-in is temporarily unavailable. Please try again."

	SubmissionAcceptedMessage = "Registered! Please wait for admin approval."
)
