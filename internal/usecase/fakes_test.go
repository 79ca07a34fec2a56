package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/oauth"

	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the SQL semantics closely
// enough for service-level tests without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("user %s not stored", user.ID)
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeOTPRepo struct {
	mu   sync.Mutex
	otps map[string]*entity.OTP
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{otps: map[string]*entity.OTP{}}
}

func otpKey(email string, purpose entity.OTPPurpose) string {
	return email + "|" + string(purpose)
}

func (f *fakeOTPRepo) Replace(_ context.Context, otp *entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *otp
	f.otps[otpKey(otp.Email, otp.Purpose)] = &copied
	return nil
}

func (f *fakeOTPRepo) FindLatest(_ context.Context, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if otp, ok := f.otps[otpKey(email, purpose)]; ok {
		copied := *otp
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeOTPRepo) RegisterFailure(_ context.Context, otpID uuid.UUID, lockoutMinutes int) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, otp := range f.otps {
		if otp.ID == otpID {
			otp.FailedAttempts++
			if otp.FailedAttempts >= otp.MaxAttempts && otp.LockedUntil == nil {
				until := time.Now().Add(time.Duration(lockoutMinutes) * time.Minute)
				otp.LockedUntil = &until
			}
			copied := *otp
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPRepo) Delete(_ context.Context, otpID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, otp := range f.otps {
		if otp.ID == otpID {
			delete(f.otps, key)
		}
	}
	return nil
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var deleted int64
	for key, otp := range f.otps {
		if otp.Expired(now) && !otp.Locked(now) {
			delete(f.otps, key)
			deleted++
		}
	}
	return deleted, nil
}

// current returns the stored code for a pair, for assertions.
func (f *fakeOTPRepo) current(email string, purpose entity.OTPPurpose) *entity.OTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otps[otpKey(email, purpose)]
}

// set stores an OTP directly, for deterministic test setup.
func (f *fakeOTPRepo) set(otp *entity.OTP) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *otp
	f.otps[otpKey(otp.Email, otp.Purpose)] = &copied
}

type fakeBlacklistRepo struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeBlacklistRepo() *fakeBlacklistRepo {
	return &fakeBlacklistRepo{revoked: map[string]time.Time{}}
}

func (f *fakeBlacklistRepo) Add(_ context.Context, token *entity.RevokedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.revoked[token.Token]; !ok {
		f.revoked[token.Token] = token.RevokedAt
	}
	return nil
}

func (f *fakeBlacklistRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[token]
	return ok, nil
}

func (f *fakeBlacklistRepo) DeleteOlderThan(_ context.Context, retentionDays int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var deleted int64
	for token, revokedAt := range f.revoked {
		if revokedAt.Before(cutoff) {
			delete(f.revoked, token)
			deleted++
		}
	}
	return deleted, nil
}

type fakeOAuthRepo struct {
	mu       sync.Mutex
	accounts []*entity.OAuthAccount
	users    *fakeUserRepo
}

func newFakeOAuthRepo(users *fakeUserRepo) *fakeOAuthRepo {
	return &fakeOAuthRepo{users: users}
}

func (f *fakeOAuthRepo) FindByProviderID(_ context.Context, provider, providerUserID string) (*entity.OAuthAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Provider == provider && account.ProviderUserID == providerUserID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOAuthRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.OAuthAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*entity.OAuthAccount
	for _, account := range f.accounts {
		if account.UserID == userID {
			copied := *account
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeOAuthRepo) Link(_ context.Context, account *entity.OAuthAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.accounts {
		if existing.UserID == account.UserID && existing.Provider == account.Provider {
			copied := *account
			f.accounts[i] = &copied
			return nil
		}
	}
	copied := *account
	f.accounts = append(f.accounts, &copied)
	return nil
}

func (f *fakeOAuthRepo) Unlink(_ context.Context, userID uuid.UUID, provider string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, account := range f.accounts {
		if account.UserID == userID && account.Provider == provider {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOAuthRepo) CreateUserWithIdentity(ctx context.Context, user *entity.User, account *entity.OAuthAccount) error {
	if err := f.users.Create(ctx, user); err != nil {
		return err
	}
	return f.Link(ctx, account)
}

type fakeWorkspaceRepo struct {
	mu         sync.Mutex
	workspaces map[uuid.UUID]*entity.Workspace
	members    *fakeMemberRepo
}

func newFakeWorkspaceRepo(members *fakeMemberRepo) *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{
		workspaces: map[uuid.UUID]*entity.Workspace{},
		members:    members,
	}
}

func (f *fakeWorkspaceRepo) Create(_ context.Context, workspace *entity.Workspace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *workspace
	f.workspaces[workspace.ID] = &copied
	return nil
}

func (f *fakeWorkspaceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if workspace, ok := f.workspaces[id]; ok && workspace.DeletedAt == nil {
		copied := *workspace
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeWorkspaceRepo) FindByCode(_ context.Context, code string) (*entity.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, workspace := range f.workspaces {
		if workspace.Code == code && workspace.DeletedAt == nil {
			copied := *workspace
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkspaceRepo) FindByMember(ctx context.Context, userID uuid.UUID, search string) ([]*entity.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*entity.Workspace
	for _, workspace := range f.workspaces {
		if workspace.DeletedAt != nil {
			continue
		}
		if !f.members.isMember(workspace.ID, userID) {
			continue
		}
		if search != "" && !containsFold(workspace.Name, search) {
			continue
		}
		copied := *workspace
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeWorkspaceRepo) Update(_ context.Context, workspace *entity.Workspace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *workspace
	f.workspaces[workspace.ID] = &copied
	return nil
}

func (f *fakeWorkspaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if workspace, ok := f.workspaces[id]; ok {
		now := time.Now()
		workspace.DeletedAt = &now
	}
	return nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members []*entity.WorkspaceMember
	users   *fakeUserRepo
}

func newFakeMemberRepo(users *fakeUserRepo) *fakeMemberRepo {
	return &fakeMemberRepo{users: users}
}

func (f *fakeMemberRepo) Add(_ context.Context, member *entity.WorkspaceMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.WorkspaceID == member.WorkspaceID && existing.UserID == member.UserID {
			return nil
		}
	}
	copied := *member
	f.members = append(f.members, &copied)
	return nil
}

func (f *fakeMemberRepo) Remove(_ context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, member := range f.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMemberRepo) Find(_ context.Context, workspaceID, userID uuid.UUID) (*entity.WorkspaceMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberRepo) ListDetails(ctx context.Context, workspaceID uuid.UUID) ([]*repository.MemberDetail, error) {
	f.mu.Lock()
	members := make([]*entity.WorkspaceMember, 0, len(f.members))
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID {
			members = append(members, member)
		}
	}
	f.mu.Unlock()

	var details []*repository.MemberDetail
	for _, member := range members {
		user, err := f.users.FindByID(ctx, member.UserID)
		if err != nil || user == nil {
			continue
		}
		details = append(details, &repository.MemberDetail{
			UserID:   member.UserID,
			Email:    user.Email,
			Username: user.Username,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}
	return details, nil
}

func (f *fakeMemberRepo) Count(_ context.Context, workspaceID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMemberRepo) isMember(workspaceID, userID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			return true
		}
	}
	return false
}

type fakeMailer struct {
	mu      sync.Mutex
	otps    []string
	invites []string
}

func (f *fakeMailer) SendOTP(email, code string, purpose entity.OTPPurpose, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps = append(f.otps, email)
	return nil
}

func (f *fakeMailer) SendWorkspaceInvite(email, workspaceName, workspaceCode, invitedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, email)
	return nil
}

func (f *fakeMailer) inviteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invites)
}

type fakeKVStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{values: map[string]string{}}
}

func (f *fakeKVStore) SetWithExpiry(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeKVStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeKVStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeKVStore) Close() error { return nil }

// fakeProvider returns a canned profile for any code.
type fakeProvider struct {
	name    string
	profile oauth.Profile
	fail    bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthorizationURL(state string) (string, error) {
	return "https://provider.test/authorize?state=" + state, nil
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("exchange rejected")
	}
	return "token-" + code, nil
}

func (f *fakeProvider) FetchProfile(_ context.Context, _ string) (*oauth.Profile, error) {
	if f.fail {
		return nil, fmt.Errorf("fetch rejected")
	}
	copied := f.profile
	return &copied, nil
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			a, b := h[i+j], n[j]
			if a >= 'A' && a <= 'Z' {
				a += 'a' - 'A'
			}
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// newTestRepository bundles the fakes into the aggregate the services take.
func newTestRepository() (*repository.Repository, *fakeUserRepo, *fakeOTPRepo, *fakeBlacklistRepo, *fakeOAuthRepo, *fakeWorkspaceRepo, *fakeMemberRepo) {
	users := newFakeUserRepo()
	otps := newFakeOTPRepo()
	blacklist := newFakeBlacklistRepo()
	oauthRepo := newFakeOAuthRepo(users)
	members := newFakeMemberRepo(users)
	workspaces := newFakeWorkspaceRepo(members)

	repo := &repository.Repository{
		User:            users,
		OTP:             otps,
		OAuth:           oauthRepo,
		Blacklist:       blacklist,
		Workspace:       workspaces,
		WorkspaceMember: members,
	}
	return repo, users, otps, blacklist, oauthRepo, workspaces, members
}
