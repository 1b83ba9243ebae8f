package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/config"
	"github.com/boosthq/boosthq-backend/pkg/db/models"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/security"
)

type stubUsersRepo struct {
	users      map[uuid.UUID]*models.User
	sessions   map[uuid.UUID]*models.WorkSession
	deleteRows int64
	closedID   uuid.UUID
	closedMins int
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		users:      map[uuid.UUID]*models.User{},
		sessions:   map[uuid.UUID]*models.WorkSession{},
		deleteRows: 1,
	}
}

func (s *stubUsersRepo) addUser(username, password string, role enums.Role) *models.User {
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		panic(err)
	}
	u := &models.User{ID: uuid.New(), Username: username, PasswordHash: hash, Role: role}
	s.users[u.ID] = u
	return u
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUsersRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUsersRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	s.users[user.ID] = &copied
	return user, nil
}

func (s *stubUsersRepo) DeleteUser(ctx context.Context, id uuid.UUID) (int64, error) {
	if s.deleteRows == 1 {
		delete(s.users, id)
	}
	return s.deleteRows, nil
}

func (s *stubUsersRepo) OpenSession(ctx context.Context, session *models.WorkSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *stubUsersRepo) FindOpenSession(ctx context.Context, userID uuid.UUID) (*models.WorkSession, error) {
	var latest *models.WorkSession
	for _, session := range s.sessions {
		if session.UserID != userID || session.LogoutTime != nil {
			continue
		}
		if latest == nil || session.LoginTime.After(latest.LoginTime) {
			latest = session
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *stubUsersRepo) CloseSession(ctx context.Context, sessionID uuid.UUID, logoutTime time.Time, durationMinutes int) error {
	s.closedID = sessionID
	s.closedMins = durationMinutes
	if session, ok := s.sessions[sessionID]; ok {
		session.LogoutTime = &logoutTime
		session.DurationMinutes = durationMinutes
	}
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "boosthq-test", ExpirationMinutes: 60}
}

// Small argon parameters keep the hashing tests fast.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestUsersService(t *testing.T, repo *stubUsersRepo) Service {
	t.Helper()
	svc, err := NewService(repo, testJWTConfig(), testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func admin() auth.Actor  { return auth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin} }
func worker() auth.Actor { return auth.Actor{UserID: uuid.New(), Role: enums.RoleWorker} }

func wantCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error with code %s, got %v", code, err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestLoginMintsTokenAndOpensSession(t *testing.T) {
	repo := newStubUsersRepo()
	user := repo.addUser("ana", "correct horse", enums.RoleWorker)
	svc := newTestUsersService(t, repo)

	result, err := svc.Login(context.Background(), LoginInput{Username: "ana", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.UserID != user.ID || result.Role != enums.RoleWorker {
		t.Fatalf("unexpected login result %+v", result)
	}
	if result.Token == "" {
		t.Fatal("login must mint a token")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("login must open a work session, got %d", len(repo.sessions))
	}

	payload, err := auth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if payload.UserID != user.ID || payload.Username != "ana" {
		t.Fatalf("token carries wrong identity %+v", payload)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUsersRepo()
	repo.addUser("ana", "correct horse", enums.RoleWorker)
	svc := newTestUsersService(t, repo)

	_, unknownErr := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever1"})
	wantCode(t, unknownErr, pkgerrors.CodeUnauthorized)

	_, wrongErr := svc.Login(context.Background(), LoginInput{Username: "ana", Password: "wrong horse"})
	wantCode(t, wrongErr, pkgerrors.CodeUnauthorized)

	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("unknown user and bad password must read the same: %q vs %q", unknownErr, wrongErr)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("failed logins must not open sessions")
	}
}

func TestLogoutClosesLatestOpenSession(t *testing.T) {
	repo := newStubUsersRepo()
	user := repo.addUser("ana", "correct horse", enums.RoleWorker)
	closed := time.Now().UTC().Add(-2 * time.Hour)
	repo.sessions[uuid.New()] = &models.WorkSession{
		ID: uuid.New(), UserID: user.ID,
		LoginTime: time.Now().UTC().Add(-3 * time.Hour), LogoutTime: &closed,
	}
	open := &models.WorkSession{ID: uuid.New(), UserID: user.ID, LoginTime: time.Now().UTC().Add(-90 * time.Minute)}
	repo.sessions[open.ID] = open
	svc := newTestUsersService(t, repo)

	if err := svc.Logout(context.Background(), auth.Actor{UserID: user.ID, Role: user.Role}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if repo.closedID != open.ID {
		t.Fatal("logout must close the open session, not the finished one")
	}
	if repo.closedMins < 89 || repo.closedMins > 91 {
		t.Fatalf("expected roughly 90 minutes, got %d", repo.closedMins)
	}
}

func TestLogoutWithoutOpenSessionIsNoop(t *testing.T) {
	svc := newTestUsersService(t, newStubUsersRepo())

	if err := svc.Logout(context.Background(), worker()); err != nil {
		t.Fatalf("logout without a session must succeed, got %v", err)
	}
}

func TestLogoutClampsNegativeDuration(t *testing.T) {
	repo := newStubUsersRepo()
	user := repo.addUser("ana", "correct horse", enums.RoleWorker)
	open := &models.WorkSession{ID: uuid.New(), UserID: user.ID, LoginTime: time.Now().UTC().Add(time.Hour)}
	repo.sessions[open.ID] = open
	svc := newTestUsersService(t, repo)

	if err := svc.Logout(context.Background(), auth.Actor{UserID: user.ID, Role: user.Role}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if repo.closedMins != 0 {
		t.Fatalf("clock skew must clamp to zero minutes, got %d", repo.closedMins)
	}
}

func TestMeReturnsPublicFields(t *testing.T) {
	repo := newStubUsersRepo()
	user := repo.addUser("ana", "correct horse", enums.RoleAdmin)
	svc := newTestUsersService(t, repo)

	me, err := svc.Me(context.Background(), auth.Actor{UserID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != user.ID || me.Username != "ana" || me.Role != enums.RoleAdmin {
		t.Fatalf("unexpected profile %+v", me)
	}
}

func TestListStripsCredentials(t *testing.T) {
	repo := newStubUsersRepo()
	repo.addUser("ana", "correct horse", enums.RoleAdmin)
	repo.addUser("bo", "correct horse", enums.RoleWorker)
	svc := newTestUsersService(t, repo)

	list, err := svc.List(context.Background(), admin())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := newTestUsersService(t, newStubUsersRepo())

	_, err := svc.Create(context.Background(), worker(), CreateUserInput{
		Username: "newbie", Password: "long enough", Role: enums.RoleWorker,
	})
	wantCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newStubUsersRepo()
	svc := newTestUsersService(t, repo)

	created, err := svc.Create(context.Background(), admin(), CreateUserInput{
		Username: "newbie", Password: "long enough", Role: enums.RoleWorker,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stored := repo.users[created.ID]
	if stored.PasswordHash == "long enough" || stored.PasswordHash == "" {
		t.Fatal("stored credential must be a hash")
	}
	ok, err := security.VerifyPassword("long enough", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("hash must verify against the original password: ok=%v err=%v", ok, err)
	}
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	repo := newStubUsersRepo()
	repo.addUser("ana", "correct horse", enums.RoleWorker)
	svc := newTestUsersService(t, repo)

	_, err := svc.Create(context.Background(), admin(), CreateUserInput{
		Username: "ana", Password: "long enough", Role: enums.RoleWorker,
	})
	wantCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	svc := newTestUsersService(t, newStubUsersRepo())

	_, err := svc.Create(context.Background(), admin(), CreateUserInput{
		Username: "newbie", Password: "long enough", Role: enums.Role("owner"),
	})
	wantCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc := newTestUsersService(t, newStubUsersRepo())

	err := svc.Delete(context.Background(), worker(), uuid.New())
	wantCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteOwnAccountBlocked(t *testing.T) {
	svc := newTestUsersService(t, newStubUsersRepo())

	actor := admin()
	err := svc.Delete(context.Background(), actor, actor.UserID)
	wantCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteMissingUserNotFound(t *testing.T) {
	repo := newStubUsersRepo()
	repo.deleteRows = 0
	svc := newTestUsersService(t, repo)

	err := svc.Delete(context.Background(), admin(), uuid.New())
	wantCode(t, err, pkgerrors.CodeNotFound)
}
