package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// stubPromptAPI scripts the prompt catalog backend.
type stubPromptAPI struct {
	prompts      []domain.Prompt
	listErr      error
	favorites    []domain.Prompt
	favoritesErr error
	addErr       error
	removeErr    error
	added        []string
	removed      []string
	adminCalls   int
}

func (a *stubPromptAPI) GetPrompts(context.Context, string, string, domain.CloudProvider) ([]domain.Prompt, error) {
	return a.prompts, a.listErr
}

func (a *stubPromptAPI) GetAllPromptsAdmin(context.Context, string, string, domain.CloudProvider) ([]domain.Prompt, error) {
	a.adminCalls++
	return a.prompts, a.listErr
}

func (a *stubPromptAPI) GetFavoritePrompts(context.Context, string) ([]domain.Prompt, error) {
	return a.favorites, a.favoritesErr
}

func (a *stubPromptAPI) AddToFavorites(_ context.Context, _ string, promptID string) error {
	if a.addErr != nil {
		return a.addErr
	}
	a.added = append(a.added, promptID)
	return nil
}

func (a *stubPromptAPI) RemoveFromFavorites(_ context.Context, _ string, promptID string) error {
	if a.removeErr != nil {
		return a.removeErr
	}
	a.removed = append(a.removed, promptID)
	return nil
}

func (a *stubPromptAPI) CreatePrompt(_ context.Context, _ string, p domain.Prompt) (*domain.Prompt, error) {
	return &p, nil
}

func (a *stubPromptAPI) UpdatePrompt(_ context.Context, _ string, _ string, p domain.Prompt) (*domain.Prompt, error) {
	return &p, nil
}

func (a *stubPromptAPI) DeletePrompt(context.Context, string, string) error { return nil }

func newPromptSvc(api *stubPromptAPI, auth *stubAuth, store *memStore) *PromptService {
	return NewPromptService(api, auth, store, zerolog.Nop())
}

func awsPrompt(id string) domain.Prompt {
	return domain.Prompt{ID: id, Title: id, CloudProvider: domain.ProviderAWS}
}

func TestPromptService_List_FiltersByProvider(t *testing.T) {
	api := &stubPromptAPI{prompts: []domain.Prompt{
		awsPrompt("p1"),
		{ID: "p2", CloudProvider: domain.ProviderGCP},
		awsPrompt("p3"),
	}}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, newMemStore())

	got, err := svc.ListForProvider(context.Background(), testProfile, "", domain.ProviderAWS, false)
	if err != nil {
		t.Fatalf("ListForProvider: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 aws prompts, got %d", len(got))
	}
	for _, p := range got {
		if p.CloudProvider != domain.ProviderAWS {
			t.Fatalf("foreign provider leaked through: %+v", p)
		}
	}
}

func TestPromptService_List_FavoritesFirstStableOrder(t *testing.T) {
	api := &stubPromptAPI{
		prompts:   []domain.Prompt{awsPrompt("p1"), awsPrompt("p2"), awsPrompt("p3")},
		favorites: []domain.Prompt{awsPrompt("p3")},
	}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, newMemStore())

	got, err := svc.ListForProvider(context.Background(), testProfile, "", domain.ProviderAWS, false)
	if err != nil {
		t.Fatalf("ListForProvider: %v", err)
	}

	if got[0].ID != "p3" || !got[0].IsFavorite {
		t.Fatalf("expected favorite p3 first, got %q", got[0].ID)
	}
	if got[1].ID != "p1" || got[2].ID != "p2" {
		t.Fatalf("expected catalog order within non-favorites, got %q then %q", got[1].ID, got[2].ID)
	}
}

func TestPromptService_List_AdminUsesFullCatalog(t *testing.T) {
	api := &stubPromptAPI{prompts: []domain.Prompt{awsPrompt("p1")}}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, newMemStore())

	if _, err := svc.ListForProvider(context.Background(), testProfile, "", domain.ProviderAWS, true); err != nil {
		t.Fatalf("ListForProvider: %v", err)
	}
	if api.adminCalls != 1 {
		t.Fatalf("expected admin catalog call, got %d", api.adminCalls)
	}
}

func TestPromptService_List_FavoriteFetchFailureUsesCache(t *testing.T) {
	store := newMemStore()
	store.seed(testProfile, ports.KeyFavoritePrompts, []byte(`["p2"]`))
	api := &stubPromptAPI{
		prompts:      []domain.Prompt{awsPrompt("p1"), awsPrompt("p2")},
		favoritesErr: domain.ErrNetwork,
	}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, store)

	got, err := svc.ListForProvider(context.Background(), testProfile, "", domain.ProviderAWS, false)
	if err != nil {
		t.Fatalf("ListForProvider: %v", err)
	}
	if got[0].ID != "p2" || !got[0].IsFavorite {
		t.Fatalf("expected cached favorite p2 first, got %+v", got[0])
	}
}

func TestPromptService_List_AuthErrorReported(t *testing.T) {
	auth := &stubAuth{token: "t"}
	api := &stubPromptAPI{listErr: domain.ErrAuth}
	svc := newPromptSvc(api, auth, newMemStore())

	_, err := svc.ListForProvider(context.Background(), testProfile, "", domain.ProviderAWS, false)
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got: %v", err)
	}
	if auth.failures != 1 {
		t.Fatalf("expected 1 auth failure report, got %d", auth.failures)
	}
}

func TestPromptService_ToggleFavorite_OptimisticAdd(t *testing.T) {
	store := newMemStore()
	api := &stubPromptAPI{}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, store)

	favorited, err := svc.ToggleFavorite(context.Background(), testProfile, "p1")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !favorited {
		t.Fatal("expected prompt favorited")
	}
	if raw, _ := store.stored(testProfile, ports.KeyFavoritePrompts); string(raw) != `["p1"]` {
		t.Fatalf("expected persisted favorite ids, got %q", raw)
	}
	if len(api.added) != 1 || api.added[0] != "p1" {
		t.Fatalf("expected server add call, got %v", api.added)
	}
}

func TestPromptService_ToggleFavorite_TogglesOff(t *testing.T) {
	store := newMemStore()
	store.seed(testProfile, ports.KeyFavoritePrompts, []byte(`["p1"]`))
	api := &stubPromptAPI{}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, store)

	favorited, err := svc.ToggleFavorite(context.Background(), testProfile, "p1")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if favorited {
		t.Fatal("expected prompt unfavorited")
	}
	if len(api.removed) != 1 {
		t.Fatalf("expected server remove call, got %v", api.removed)
	}
}

func TestPromptService_ToggleFavorite_ServerFailureKeepsLocalState(t *testing.T) {
	store := newMemStore()
	api := &stubPromptAPI{addErr: domain.ErrNetwork}
	svc := newPromptSvc(api, &stubAuth{token: "t"}, store)

	favorited, err := svc.ToggleFavorite(context.Background(), testProfile, "p1")
	if err != nil {
		t.Fatalf("expected sync failure swallowed, got: %v", err)
	}
	if !favorited {
		t.Fatal("expected local toggle to stand")
	}
	if raw, _ := store.stored(testProfile, ports.KeyFavoritePrompts); string(raw) != `["p1"]` {
		t.Fatalf("expected local favorite kept, got %q", raw)
	}
}

func TestPromptService_ToggleFavorite_AuthErrorSurfacesAndReports(t *testing.T) {
	auth := &stubAuth{token: "t"}
	api := &stubPromptAPI{addErr: domain.ErrAuth}
	svc := newPromptSvc(api, auth, newMemStore())

	_, err := svc.ToggleFavorite(context.Background(), testProfile, "p1")
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got: %v", err)
	}
	if auth.failures != 1 {
		t.Fatalf("expected 1 auth failure report, got %d", auth.failures)
	}
}
