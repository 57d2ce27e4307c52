package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/policy"
	"github.com/oksasatya/project-board/internal/infrastructure/memory"
	"github.com/oksasatya/project-board/pkg/helpers"
)

type harness struct {
	store    *memory.Store
	identity *IdentityService
	projects *ProjectService
	tasks    *TaskService
	scores   *ScoreService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	users := store.Users()
	logger := helpers.NewDiscardLogger()
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "project-board-test")

	identity := NewIdentityService(users, memory.NewSessionStore(), jwt, logger, nil)
	identity.HashCost = 4
	scores := NewScoreService(users)
	return &harness{
		store:    store,
		identity: identity,
		projects: NewProjectService(store.Projects(), users, nil, nil, nil, logger),
		tasks:    NewTaskService(store.Tasks(), store.Projects(), users, store.Transactor(), scores, nil, logger, 1),
		scores:   scores,
	}
}

// signIn registers and logs in a user, returning its principal.
func (h *harness) signIn(t *testing.T, name string, role entity.Role) policy.Principal {
	t.Helper()
	ctx := context.Background()
	email := strings.ToLower(name) + "@board.test"
	if _, err := h.identity.Register(ctx, RegisterInput{Name: name, Email: email, Password: "secret1", Role: string(role)}); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	res, err := h.identity.Login(ctx, email, "secret1")
	if err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
	p, err := h.identity.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", name, err)
	}
	return p
}

func (h *harness) createProject(t *testing.T, admin policy.Principal, title string) *entity.Project {
	t.Helper()
	p, err := h.projects.CreateProject(context.Background(), admin, CreateProjectInput{Title: title, Description: "d", Deadline: "2030-06-01"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want kind %s", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("kind = %s (%v), want %s", got, err, kind)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.io", Password: "secret1", Role: "user"}},
		{"missing email", RegisterInput{Name: "A", Password: "secret1", Role: "user"}},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "secret1", Role: "user"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.io", Password: "123", Role: "user"}},
		{"bad role", RegisterInput{Name: "A", Email: "a@b.io", Password: "secret1", Role: "root"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.identity.Register(ctx, tc.in)
			wantKind(t, err, KindValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "Dup", entity.RoleUser)
	_, err := h.identity.Register(context.Background(), RegisterInput{Name: "Dup2", Email: "DUP@board.test", Password: "secret1", Role: "user"})
	wantKind(t, err, KindConflict)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "Lin", entity.RoleUser)
	ctx := context.Background()

	_, errUnknown := h.identity.Login(ctx, "ghost@board.test", "secret1")
	_, errWrong := h.identity.Login(ctx, "lin@board.test", "wrong-pass")
	wantKind(t, errUnknown, KindAuthentication)
	wantKind(t, errWrong, KindAuthentication)
	if MessageOf(errUnknown) != MessageOf(errWrong) {
		t.Fatalf("messages differ: %q vs %q", MessageOf(errUnknown), MessageOf(errWrong))
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.identity.Authenticate(ctx, "")
	wantKind(t, err, KindAuthentication)
	_, err = h.identity.Authenticate(ctx, "not.a.jwt")
	wantKind(t, err, KindAuthentication)

	other := helpers.NewJWTManager("other-secret", time.Hour, "x")
	forged, _, _ := other.GenerateAccessToken("u1", "admin", "s1")
	_, err = h.identity.Authenticate(ctx, forged)
	wantKind(t, err, KindAuthentication)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Out", entity.RoleUser)
	res, err := h.identity.Login(ctx, "out@board.test", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	p, err := h.identity.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if role, err := h.identity.ResolveRole(ctx, res.Token); err != nil || role != entity.RoleUser {
		t.Fatalf("ResolveRole = %q, %v", role, err)
	}
	if err := h.identity.Logout(ctx, p); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = h.identity.Authenticate(ctx, res.Token)
	wantKind(t, err, KindAuthentication)
}

func TestNewLoginSupersedesOldToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Twice", entity.RoleUser)
	first, _ := h.identity.Login(ctx, "twice@board.test", "secret1")
	second, _ := h.identity.Login(ctx, "twice@board.test", "secret1")

	if _, err := h.identity.Authenticate(ctx, second.Token); err != nil {
		t.Fatalf("latest token rejected: %v", err)
	}
	_, err := h.identity.Authenticate(ctx, first.Token)
	wantKind(t, err, KindAuthentication)
}

func TestMeReturnsOwnProfile(t *testing.T) {
	h := newHarness(t)
	p := h.signIn(t, "Me", entity.RoleUser)
	u, err := h.identity.Me(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != p.UserID || u.Email != "me@board.test" {
		t.Fatalf("me = %+v", u)
	}
}

func TestCreateProjectRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	user := h.signIn(t, "User", entity.RoleUser)

	_, err := h.projects.CreateProject(ctx, user, CreateProjectInput{Title: "x", Deadline: "2030-01-01"})
	wantKind(t, err, KindAuthorization)

	_, err = h.projects.CreateProject(ctx, admin, CreateProjectInput{Deadline: "2030-01-01"})
	wantKind(t, err, KindValidation)
	_, err = h.projects.CreateProject(ctx, admin, CreateProjectInput{Title: "x", Deadline: "soon"})
	wantKind(t, err, KindValidation)

	p := h.createProject(t, admin, "Board")
	if p.Status != entity.ProjectOpen || len(p.AssignedTo) != 0 || p.ID == "" {
		t.Fatalf("project = %+v", p)
	}
	if !p.Deadline.Equal(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("deadline = %v", p.Deadline)
	}
}

func TestClaimProjectPolicy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	alice := h.signIn(t, "Alice", entity.RoleUser)
	bob := h.signIn(t, "Bob", entity.RoleUser)
	p := h.createProject(t, admin, "Claimable")

	_, err := h.projects.ClaimProject(ctx, admin, p.ID)
	wantKind(t, err, KindAuthorization)

	got, err := h.projects.ClaimProject(ctx, alice, p.ID)
	if err != nil {
		t.Fatalf("alice claim: %v", err)
	}
	if got.Status != entity.ProjectTaken || !got.IsAssignedTo(alice.UserID) {
		t.Fatalf("claimed = %+v", got)
	}

	_, err = h.projects.ClaimProject(ctx, alice, p.ID)
	wantKind(t, err, KindAlreadyClaimed)
	if MessageOf(err) != MsgAlreadyTaken {
		t.Fatalf("message = %q", MessageOf(err))
	}
	_, err = h.projects.ClaimProject(ctx, bob, p.ID)
	wantKind(t, err, KindProjectClosed)
	_, err = h.projects.ClaimProject(ctx, bob, "00000000-0000-0000-0000-000000000000")
	wantKind(t, err, KindNotFound)

	open, err := h.projects.ListOpenProjects(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Fatalf("open = %d, want 0", len(open))
	}
}

func TestConcurrentClaimsThroughService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	p := h.createProject(t, admin, "Race")

	users := make([]policy.Principal, 8)
	for i := range users {
		users[i] = h.signIn(t, "racer"+string(rune('a'+i)), entity.RoleUser)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		closed int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u policy.Principal) {
			defer wg.Done()
			_, err := h.projects.ClaimProject(ctx, u, p.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case KindOf(err) == KindProjectClosed:
				closed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()
	if wins != 1 || closed != len(users)-1 {
		t.Fatalf("wins = %d closed = %d", wins, closed)
	}
}

func TestTaskLifecycleAwardsScoreOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	alice := h.signIn(t, "Alice", entity.RoleUser)
	bob := h.signIn(t, "Bob", entity.RoleUser)
	p := h.createProject(t, admin, "Scored")

	if _, err := h.projects.ClaimProject(ctx, alice, p.ID); err != nil {
		t.Fatal(err)
	}

	tasks, err := h.tasks.ListMyTasks(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Status != entity.TaskPending || tasks[0].ID != p.ID {
		t.Fatalf("tasks = %+v", tasks)
	}

	_, err = h.tasks.UpdateTaskStatus(ctx, alice, p.ID, "Pending")
	wantKind(t, err, KindValidation)
	_, err = h.tasks.UpdateTaskStatus(ctx, bob, p.ID, "Completed")
	wantKind(t, err, KindAuthorization)
	_, err = h.tasks.UpdateTaskStatus(ctx, admin, p.ID, "Completed")
	wantKind(t, err, KindAuthorization)

	for _, s := range []string{"In Progress", "Completed", "Completed", "In Progress", "Completed"} {
		if _, err := h.tasks.UpdateTaskStatus(ctx, alice, p.ID, s); err != nil {
			t.Fatalf("update %q: %v", s, err)
		}
	}

	scores, err := h.scores.GetUserScores(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 {
		t.Fatalf("scores = %+v, want 2 users", scores)
	}
	if scores[0].ID != alice.UserID || scores[0].TotalScore != 1 {
		t.Fatalf("top = %+v, want alice with 1", scores[0])
	}
	if scores[1].TotalScore != 0 {
		t.Fatalf("bob = %+v", scores[1])
	}

	_, err = h.scores.GetUserScores(ctx, alice)
	wantKind(t, err, KindAuthorization)
}

func TestConcurrentCompletionAwardsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	alice := h.signIn(t, "Alice", entity.RoleUser)
	p := h.createProject(t, admin, "Double")
	if _, err := h.projects.ClaimProject(ctx, alice, p.ID); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.tasks.UpdateTaskStatus(ctx, alice, p.ID, "Completed"); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	u, err := h.identity.Me(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if u.TotalScore != 1 {
		t.Fatalf("score = %d, want 1", u.TotalScore)
	}
}

func TestParallelCompletionsAcrossProjectsAllScore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	alice := h.signIn(t, "Alice", entity.RoleUser)

	const n = 16
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p := h.createProject(t, admin, fmt.Sprintf("Parallel %d", i))
		if _, err := h.projects.ClaimProject(ctx, alice, p.ID); err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		ids = append(ids, p.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := h.tasks.UpdateTaskStatus(ctx, alice, id, "Completed"); err != nil {
				t.Errorf("complete %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	u, err := h.identity.Me(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if u.TotalScore != n {
		t.Fatalf("score = %d, want %d", u.TotalScore, n)
	}
}

func TestParallelIncrementScore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.signIn(t, "Alice", entity.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.scores.IncrementScore(ctx, alice.UserID, 2); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	u, _ := h.identity.Me(ctx, alice)
	if u.TotalScore != 100 {
		t.Fatalf("score = %d, want 100", u.TotalScore)
	}
}

func TestIncrementScoreRejectsNonPositive(t *testing.T) {
	h := newHarness(t)
	alice := h.signIn(t, "Alice", entity.RoleUser)
	err := h.scores.IncrementScore(context.Background(), alice.UserID, 0)
	wantKind(t, err, KindValidation)
	err = h.scores.IncrementScore(context.Background(), "missing", 1)
	wantKind(t, err, KindNotFound)
}

type fakeIndex struct {
	indexed map[string]bool
	hits    []string
}

func (f *fakeIndex) Index(_ context.Context, p *entity.Project) error {
	f.indexed[p.ID] = true
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, size int) ([]string, error) {
	if len(f.hits) > size {
		return f.hits[:size], nil
	}
	return f.hits, nil
}

func TestSearchProjects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	user := h.signIn(t, "User", entity.RoleUser)

	got, err := h.projects.SearchProjects(ctx, user, "anything", 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("search without index = %v, %v", got, err)
	}
	_, err = h.projects.SearchProjects(ctx, user, "  ", 0)
	wantKind(t, err, KindValidation)

	idx := &fakeIndex{indexed: map[string]bool{}}
	h.projects.Index = idx
	p := h.createProject(t, admin, "Indexed")
	if !idx.indexed[p.ID] {
		t.Fatal("created project was not indexed")
	}
	idx.hits = []string{p.ID, "stale-id"}
	got, err = h.projects.SearchProjects(ctx, user, "indexed", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("search = %+v", got)
	}
}

type fakeStorage struct{ paths []string }

func (f *fakeStorage) Upload(_ context.Context, objectPath, _ string, _ io.Reader) (string, error) {
	f.paths = append(f.paths, objectPath)
	return "https://files.test/" + objectPath, nil
}

func TestAttachFile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.signIn(t, "Admin", entity.RoleAdmin)
	user := h.signIn(t, "User", entity.RoleUser)
	p := h.createProject(t, admin, "Files")

	_, err := h.projects.AttachFile(ctx, admin, p.ID, strings.NewReader("x"), "brief.pdf", "application/pdf")
	wantKind(t, err, KindUnavailable)

	st := &fakeStorage{}
	h.projects.Storage = st
	_, err = h.projects.AttachFile(ctx, user, p.ID, strings.NewReader("x"), "brief.pdf", "application/pdf")
	wantKind(t, err, KindAuthorization)

	got, err := h.projects.AttachFile(ctx, admin, p.ID, strings.NewReader("x"), "Brief.PDF", "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(st.paths) != 1 || !strings.HasPrefix(st.paths[0], "projects/"+p.ID+"/") || !strings.HasSuffix(st.paths[0], ".pdf") {
		t.Fatalf("paths = %v", st.paths)
	}
	if got.AttachmentURL != "https://files.test/"+st.paths[0] {
		t.Fatalf("attachment url = %q", got.AttachmentURL)
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := AlreadyClaimedError(errors.New("cause"))
	if !errors.Is(err, &Error{Kind: KindAlreadyClaimed}) {
		t.Fatal("errors.Is by kind failed")
	}
	if errors.Is(err, &Error{Kind: KindProjectClosed}) {
		t.Fatal("matched the wrong kind")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("foreign errors should be internal")
	}
}
