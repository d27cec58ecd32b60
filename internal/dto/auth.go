package dto

// TokenResponse is returned by sign-up, sign-in and refresh.
type TokenResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         *ProfileResponse `json:"user,omitempty"`
}
