package usecase

import (
	"context"
	"testing"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type workspaceFixture struct {
	svc    WorkspaceService
	users  *fakeUserRepo
	mailer *fakeMailer
}

func newWorkspaceFixture(t *testing.T) *workspaceFixture {
	t.Helper()
	repo, users, _, _, _, _, _ := newTestRepository()
	mailer := &fakeMailer{}
	return &workspaceFixture{
		svc:    NewWorkspaceService(repo, mailer, zap.NewNop()),
		users:  users,
		mailer: mailer,
	}
}

func (f *workspaceFixture) addUser(t *testing.T, username, email string) uuid.UUID {
	t.Helper()
	now := time.Now()
	user := &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:      username,
		Email:         email,
		EmailVerified: true,
		IsActive:      true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func TestCreateWorkspaceMakesCreatorAdmin(t *testing.T) {
	f := newWorkspaceFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", "admin@example.com")

	created, err := f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{
		Name: "Design Team",
		Code: "DSGN01",
	})
	require.NoError(t, err)
	assert.Equal(t, admin.String(), created.AdminID)
	assert.Equal(t, int64(1), created.MemberCount)

	workspaceID, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	members, err := f.svc.Members(ctx, admin, workspaceID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, string(entity.MemberRoleAdmin), members[0].Role)

	// The join code is unique
	_, err = f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{
		Name: "Other Team",
		Code: "DSGN01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code already in use")
}

func TestJoinWorkspaceByCode(t *testing.T) {
	f := newWorkspaceFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", "admin@example.com")
	joiner := f.addUser(t, "joiner", "joiner@example.com")

	created, err := f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{Name: "Ops Team", Code: "OPS123"})
	require.NoError(t, err)

	joined, err := f.svc.Join(ctx, joiner, &request.JoinWorkspaceRequest{Code: "OPS123"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, joined.ID)
	assert.Equal(t, int64(2), joined.MemberCount)

	// Joining twice is rejected
	_, err = f.svc.Join(ctx, joiner, &request.JoinWorkspaceRequest{Code: "OPS123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already a member")

	// Unknown codes are not found
	_, err = f.svc.Join(ctx, joiner, &request.JoinWorkspaceRequest{Code: "NOPE99"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace not found")
}

func TestWorkspaceAccessControl(t *testing.T) {
	f := newWorkspaceFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", "admin@example.com")
	member := f.addUser(t, "member", "member@example.com")
	outsider := f.addUser(t, "outsider", "outsider@example.com")

	created, err := f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{Name: "Core Team", Code: "CORE11"})
	require.NoError(t, err)
	workspaceID, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, member, &request.JoinWorkspaceRequest{Code: "CORE11"})
	require.NoError(t, err)

	// Non-members see nothing
	_, err = f.svc.Get(ctx, outsider, workspaceID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a member")

	// Members cannot administer
	newName := "Renamed"
	_, err = f.svc.Update(ctx, member, workspaceID, &request.UpdateWorkspaceRequest{Name: &newName})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only the workspace admin")

	err = f.svc.Delete(ctx, member, workspaceID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only the workspace admin")

	// The admin can
	updated, err := f.svc.Update(ctx, admin, workspaceID, &request.UpdateWorkspaceRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, f.svc.Delete(ctx, admin, workspaceID))

	// Deleted workspaces are gone for everyone
	_, err = f.svc.Get(ctx, admin, workspaceID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace not found")
}

func TestRemoveMemberGuards(t *testing.T) {
	f := newWorkspaceFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", "admin@example.com")
	member := f.addUser(t, "member", "member@example.com")

	created, err := f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{Name: "Sec Team", Code: "SEC007"})
	require.NoError(t, err)
	workspaceID, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, member, &request.JoinWorkspaceRequest{Code: "SEC007"})
	require.NoError(t, err)

	// The admin cannot be removed, not even by themselves
	err = f.svc.RemoveMember(ctx, admin, workspaceID, admin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot remove workspace admin")

	require.NoError(t, f.svc.RemoveMember(ctx, admin, workspaceID, member))

	err = f.svc.RemoveMember(ctx, admin, workspaceID, member)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "member not found")
}

func TestInviteMembersReportsOutcomes(t *testing.T) {
	f := newWorkspaceFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", "admin@example.com")
	existing := f.addUser(t, "existing", "existing@example.com")
	f.addUser(t, "fresh", "fresh@example.com")

	created, err := f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{Name: "Growth", Code: "GROW22"})
	require.NoError(t, err)
	workspaceID, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, existing, &request.JoinWorkspaceRequest{Code: "GROW22"})
	require.NoError(t, err)

	result, err := f.svc.Invite(ctx, admin, workspaceID, &request.InviteMembersRequest{
		Emails: []string{"fresh@example.com", "existing@example.com", "ghost@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh@example.com"}, result.Invited)
	assert.Equal(t, []string{"existing@example.com"}, result.AlreadyMembers)
	assert.Equal(t, []string{"ghost@example.com"}, result.NotFound)

	// Invite emails go out asynchronously
	assert.Eventually(t, func() bool {
		return f.mailer.inviteCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestListMineFiltersBySearch(t *testing.T) {
	f := newWorkspaceFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, "admin", "admin@example.com")

	_, err := f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{Name: "Design Team", Code: "AAAA01"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, &request.CreateWorkspaceRequest{Name: "Ops Crew", Code: "BBBB02"})
	require.NoError(t, err)

	all, err := f.svc.ListMine(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := f.svc.ListMine(ctx, admin, "design")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Design Team", filtered[0].Name)
}
