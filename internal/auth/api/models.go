package authapi

import "casavia/internal/store"

// Fixed response messages. The Session Client matches msgUnauthorized on a
// 403 to decide whether a silent refresh is worth attempting, so the string
// is part of the wire contract.
const (
	msgTokenRequired      = "Access token required"
	msgUnauthorized       = "Unauthorized"
	msgInvalidCredentials = "Invalid credentials"
	msgSignedOut          = "Signed out successfully"
	msgInternalError      = "Internal server error"
)

type signInRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// UserResponse is the public projection of a user: the password hash never
// leaves the store.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// AuthResponse is the body of signin/refresh/me. Both fields are null when
// auth enforcement is disabled, even though the endpoint reports success.
type AuthResponse struct {
	AccessToken *string       `json:"accessToken"`
	User        *UserResponse `json:"user"`
}

func toUserResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

func (h *Handler) authResponse(accessToken string, u store.User) AuthResponse {
	if !h.sessions.Enforced() {
		return AuthResponse{}
	}
	user := toUserResponse(u)
	return AuthResponse{AccessToken: &accessToken, User: &user}
}
