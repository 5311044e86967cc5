package hexgame

// Player identifies a participant in a match. Identity is the ID token;
// the username is display-only and may collide between players.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
