package dto

// RegisterForm is the POST /register payload.
type RegisterForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginForm is the POST /login payload.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}
