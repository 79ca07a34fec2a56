package request

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50,username"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	// Username accepts either the username or the email address
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type VerifyRegistrationRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp_code" validate:"required,len=6,numeric"`
}

type ResendOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required,oneof=registration password_reset"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp_code" validate:"required,len=6,numeric"`
}

// CompleteResetRequest finishes a password reset. With the "token" flow
// ResetToken must be set; with the "direct" flow Email and OTP are used
// instead.
type CompleteResetRequest struct {
	ResetToken string `json:"reset_token,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	OTP        string `json:"otp_code,omitempty" validate:"omitempty,len=6,numeric"`
	Password   string `json:"password" validate:"required,password"`
	Password2  string `json:"password2" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	Password  string `json:"password" validate:"required,password"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}
