package request

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`

	// Client details recorded on the session; filled by the handler.
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}
