package dto

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// SessionOutput describes who the app is acting as after an account
// operation, plus how that user's saved collection was restored.
type SessionOutput struct {
	UserID      string
	Name        string
	Email       string
	Guest       bool
	PathsLoaded int
	FromRemote  bool
	Warning     string
}
