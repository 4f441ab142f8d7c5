package models

type AuthorizationCodeState struct {
	UserId string `json:"userId"`
}
