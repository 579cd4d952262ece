package model

// RegisterTokenRequest is the body for POST /users/token
type RegisterTokenRequest struct {
	FCMToken string `json:"fcmToken"`
}
