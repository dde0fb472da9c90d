package usecase

import (
	"context"
	"errors"
	"testing"

	"pathlight/internal/modules/account/domain"
	"pathlight/internal/modules/account/dto"
	pathsdto "pathlight/internal/modules/paths/dto"
)

type fakeAccounts struct {
	identity domain.Identity
	loginErr error
}

func (f *fakeAccounts) Restore(ctx context.Context) domain.Identity { return f.identity }

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	if f.loginErr != nil {
		return domain.Identity{}, f.loginErr
	}
	return f.identity, nil
}

func (f *fakeAccounts) Register(ctx context.Context, name, email, password string) (domain.Identity, error) {
	return f.identity, nil
}

func (f *fakeAccounts) ContinueAsGuest() domain.Identity { return domain.Guest() }

func (f *fakeAccounts) Logout(ctx context.Context) domain.Identity { return domain.Guest() }

func (f *fakeAccounts) Current() domain.Identity { return f.identity }

// fakePaths records the repartitioning sequence the account transitions
// must drive.
type fakePaths struct {
	pathsUsecaseStub
	calls []string
	load  pathsdto.LoadOutput
}

func (f *fakePaths) ResetForUserSwitch() {
	f.calls = append(f.calls, "reset")
}

func (f *fakePaths) SetCurrentUser(userID string) {
	f.calls = append(f.calls, "set:"+userID)
}

func (f *fakePaths) LoadSavedPaths(ctx context.Context, userID string) pathsdto.LoadOutput {
	f.calls = append(f.calls, "load:"+userID)
	return f.load
}

// pathsUsecaseStub fills the rest of the paths surface with panics so a
// test that strays outside the session flow fails loudly.
type pathsUsecaseStub struct{}

func (pathsUsecaseStub) SetCurrentUser(string)    { panic("unexpected") }
func (pathsUsecaseStub) ResetForUserSwitch()      { panic("unexpected") }
func (pathsUsecaseStub) LoadSavedPaths(context.Context, string) pathsdto.LoadOutput {
	panic("unexpected")
}
func (pathsUsecaseStub) ListPaths(context.Context) []pathsdto.PathSummary { panic("unexpected") }
func (pathsUsecaseStub) GetPath(context.Context, string) (pathsdto.PathDetail, error) {
	panic("unexpected")
}
func (pathsUsecaseStub) DeletePath(context.Context, string) error { panic("unexpected") }
func (pathsUsecaseStub) SetMilestoneDone(context.Context, string, int, bool) error {
	panic("unexpected")
}
func (pathsUsecaseStub) ExportPath(context.Context, string) (pathsdto.ExportOutput, error) {
	panic("unexpected")
}
func (pathsUsecaseStub) Generate(context.Context, pathsdto.GenerateInput) (pathsdto.GenerateOutput, error) {
	panic("unexpected")
}
func (pathsUsecaseStub) GenerationState() pathsdto.GenerationView { panic("unexpected") }
func (pathsUsecaseStub) CurrentPath() (pathsdto.PathDetail, bool) { panic("unexpected") }
func (pathsUsecaseStub) SaveCurrent(context.Context) (pathsdto.SaveOutput, error) {
	panic("unexpected")
}
func (pathsUsecaseStub) CancelGeneration() { panic("unexpected") }
func (pathsUsecaseStub) ResetGeneration()  { panic("unexpected") }

func TestLoginRepartitionsPathsInOrder(t *testing.T) {
	t.Parallel()

	paths := &fakePaths{load: pathsdto.LoadOutput{
		Paths:      []pathsdto.PathSummary{{ID: "p1"}},
		FromRemote: true,
	}}
	uc := NewInteractor(&fakeAccounts{identity: domain.Identity{UserID: "u1", Name: "Alice"}}, paths)

	out, err := uc.Login(context.Background(), dto.LoginInput{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := []string{"reset", "set:u1", "load:u1"}
	if len(paths.calls) != 3 || paths.calls[0] != want[0] || paths.calls[1] != want[1] || paths.calls[2] != want[2] {
		t.Fatalf("calls = %v, want %v", paths.calls, want)
	}
	if out.UserID != "u1" || out.Guest || out.PathsLoaded != 1 || !out.FromRemote {
		t.Fatalf("out = %+v, want the reloaded session", out)
	}
}

func TestLoginFailureLeavesPathsUntouched(t *testing.T) {
	t.Parallel()

	paths := &fakePaths{}
	uc := NewInteractor(&fakeAccounts{loginErr: errors.New("invalid credentials")}, paths)

	if _, err := uc.Login(context.Background(), dto.LoginInput{Email: "a@b.c", Password: "bad"}); err == nil {
		t.Fatal("Login succeeded with bad credentials")
	}
	if len(paths.calls) != 0 {
		t.Fatalf("calls = %v, want none after a failed login", paths.calls)
	}
}

func TestLogoutDropsToGuestPartition(t *testing.T) {
	t.Parallel()

	paths := &fakePaths{}
	uc := NewInteractor(&fakeAccounts{identity: domain.Identity{UserID: "u1"}}, paths)

	out, err := uc.Logout(context.Background())
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !out.Guest {
		t.Fatalf("out = %+v, want guest", out)
	}
	want := []string{"reset", "set:" + domain.GuestUserID, "load:" + domain.GuestUserID}
	if len(paths.calls) != 3 || paths.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", paths.calls, want)
	}
}
