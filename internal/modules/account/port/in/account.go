package in

import (
	"context"

	"pathlight/internal/modules/account/dto"
)

// Usecase is the session lifecycle: restore on startup, sign in or up,
// continue as guest, sign out. Every transition also swaps the paths
// module onto the right storage partition.
type Usecase interface {
	Restore(ctx context.Context) dto.SessionOutput
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) (dto.SessionOutput, error)
	ContinueAsGuest(ctx context.Context) dto.SessionOutput
	Logout(ctx context.Context) (dto.SessionOutput, error)
	Current() dto.SessionOutput
}
