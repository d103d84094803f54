package request

// CredentialsRequest is the request body for registering and logging in
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateHistoryRequest is the request body for saving a finished game
type CreateHistoryRequest struct {
	GameType string `json:"gameType"`
	Result   string `json:"result"`
	Winner   string `json:"winner"`
	Opponent string `json:"opponent,omitempty"`
	GameMode string `json:"gameMode,omitempty"`
}
