package usecase

import (
	"context"

	"pathlight/internal/modules/account/domain"
	"pathlight/internal/modules/account/dto"
	accountin "pathlight/internal/modules/account/port/in"
	pathsdto "pathlight/internal/modules/paths/dto"
	pathsin "pathlight/internal/modules/paths/port/in"
)

// Interactor drives session transitions and keeps the paths module on the
// right storage partition: every identity change resets its in-memory
// state and reloads the new user's saved collection.
type Interactor struct {
	accounts accountService
	paths    pathsin.Usecase
}

type accountService interface {
	Restore(ctx context.Context) domain.Identity
	Login(ctx context.Context, email, password string) (domain.Identity, error)
	Register(ctx context.Context, name, email, password string) (domain.Identity, error)
	ContinueAsGuest() domain.Identity
	Logout(ctx context.Context) domain.Identity
	Current() domain.Identity
}

var _ accountin.Usecase = (*Interactor)(nil)

func NewInteractor(accounts accountService, paths pathsin.Usecase) *Interactor {
	return &Interactor{accounts: accounts, paths: paths}
}

func (uc *Interactor) Restore(ctx context.Context) dto.SessionOutput {
	identity := uc.accounts.Restore(ctx)
	return uc.switchTo(ctx, identity)
}

func (uc *Interactor) Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error) {
	identity, err := uc.accounts.Login(ctx, input.Email, input.Password)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return uc.switchTo(ctx, identity), nil
}

func (uc *Interactor) Register(ctx context.Context, input dto.RegisterInput) (dto.SessionOutput, error) {
	identity, err := uc.accounts.Register(ctx, input.Name, input.Email, input.Password)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return uc.switchTo(ctx, identity), nil
}

func (uc *Interactor) ContinueAsGuest(ctx context.Context) dto.SessionOutput {
	return uc.switchTo(ctx, uc.accounts.ContinueAsGuest())
}

func (uc *Interactor) Logout(ctx context.Context) (dto.SessionOutput, error) {
	return uc.switchTo(ctx, uc.accounts.Logout(ctx)), nil
}

func (uc *Interactor) Current() dto.SessionOutput {
	return session(uc.accounts.Current(), nil)
}

// switchTo repartitions the paths module for the new identity. The order
// matters: reset first so nothing from the previous user leaks, then load
// the new partition.
func (uc *Interactor) switchTo(ctx context.Context, identity domain.Identity) dto.SessionOutput {
	uc.paths.ResetForUserSwitch()
	uc.paths.SetCurrentUser(identity.UserID)
	load := uc.paths.LoadSavedPaths(ctx, identity.UserID)
	return session(identity, &load)
}

func session(identity domain.Identity, load *pathsdto.LoadOutput) dto.SessionOutput {
	out := dto.SessionOutput{
		UserID: identity.UserID,
		Name:   identity.Name,
		Email:  identity.Email,
		Guest:  identity.IsGuest(),
	}
	if load != nil {
		out.PathsLoaded = len(load.Paths)
		out.FromRemote = load.FromRemote
		out.Warning = load.Warning
	}
	return out
}
