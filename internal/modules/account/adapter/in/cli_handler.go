package in

import (
	"context"

	"pathlight/internal/modules/account/dto"
	accountin "pathlight/internal/modules/account/port/in"
)

type CLIHandler struct {
	usecase accountin.Usecase
}

func NewCLIHandler(usecase accountin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Restore(ctx context.Context) dto.SessionOutput {
	return h.usecase.Restore(ctx)
}

func (h CLIHandler) Login(ctx context.Context, email, password string) (dto.SessionOutput, error) {
	return h.usecase.Login(ctx, dto.LoginInput{Email: email, Password: password})
}

func (h CLIHandler) Register(ctx context.Context, name, email, password string) (dto.SessionOutput, error) {
	return h.usecase.Register(ctx, dto.RegisterInput{Name: name, Email: email, Password: password})
}

func (h CLIHandler) ContinueAsGuest(ctx context.Context) dto.SessionOutput {
	return h.usecase.ContinueAsGuest(ctx)
}

func (h CLIHandler) Logout(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) Current() dto.SessionOutput {
	return h.usecase.Current()
}
