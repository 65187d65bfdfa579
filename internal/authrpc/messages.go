package authrpc

type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	FirstName            string `json:"first_name,omitempty"`
	LastName             string `json:"last_name,omitempty"`
}

type RegisterResponse struct {
	Account *Account `json:"account"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	Account     *Account `json:"account"`
}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Account is the public account projection.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
