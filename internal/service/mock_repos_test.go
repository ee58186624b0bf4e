package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"grievance-hub/backend/internal/model"
	"grievance-hub/backend/internal/policy"
	"grievance-hub/backend/internal/repository"
	"grievance-hub/backend/internal/storage"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User // key: user_id
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) CreateIfAbsent(_ context.Context, user *model.User) (bool, error) {
	for _, u := range m.users {
		if u.Email == user.Email {
			return false, nil
		}
	}
	return true, m.Create(nil, user)
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// ── Mock GrievanceRepository ──

type mockGrievanceRepo struct {
	grievances map[string]*model.Grievance
	users      *mockUserRepo // 用于填充 Submitter 关联
	seq        int
	createErr  error
	updateErr  error
}

func newMockGrievanceRepo(users *mockUserRepo) *mockGrievanceRepo {
	return &mockGrievanceRepo{
		grievances: make(map[string]*model.Grievance),
		users:      users,
	}
}

func (m *mockGrievanceRepo) Create(_ context.Context, g *model.Grievance) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	if g.GrievanceID == "" {
		g.GrievanceID = fmt.Sprintf("grievance-%d", m.seq)
	}
	if g.CreatedAt.IsZero() {
		// 保证插入顺序可以通过 created_at 还原
		g.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Second)
	}
	g.UpdatedAt = g.CreatedAt
	m.grievances[g.GrievanceID] = g
	return nil
}

func (m *mockGrievanceRepo) GetByID(_ context.Context, id string) (*model.Grievance, error) {
	g, ok := m.grievances[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *g
	if m.users != nil {
		if u, ok := m.users.users[g.SubmittedBy]; ok {
			copied.Submitter = u
		}
	}
	return &copied, nil
}

func (m *mockGrievanceRepo) List(_ context.Context, scope policy.Scope) ([]model.Grievance, error) {
	var result []model.Grievance
	for _, g := range m.grievances {
		if scope.Matches(g) {
			copied := *g
			if m.users != nil {
				if u, ok := m.users.users[g.SubmittedBy]; ok {
					copied.Submitter = u
				}
			}
			result = append(result, copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockGrievanceRepo) UpdateStatus(_ context.Context, id, status, comments string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	g, ok := m.grievances[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.Status = status
	g.Comments = comments
	g.UpdatedAt = time.Now()
	return nil
}

func (m *mockGrievanceRepo) CountByStatus(ctx context.Context, scope policy.Scope) (*repository.StatusCounts, error) {
	counts := &repository.StatusCounts{}
	for _, g := range m.grievances {
		if !scope.Matches(g) {
			continue
		}
		counts.Total++
		switch g.Status {
		case model.StatusPending:
			counts.Pending++
		case model.StatusResolved:
			counts.Resolved++
		case model.StatusInProgress:
			counts.InProgress++
		}
	}
	return counts, nil
}

// ── Mock PasswordResetRepository ──

type mockPasswordResetRepo struct {
	resets map[string]*model.PasswordReset // key: email
}

func newMockPasswordResetRepo() *mockPasswordResetRepo {
	return &mockPasswordResetRepo{resets: make(map[string]*model.PasswordReset)}
}

func (m *mockPasswordResetRepo) Replace(_ context.Context, reset *model.PasswordReset) error {
	m.resets[reset.Email] = reset
	return nil
}

func (m *mockPasswordResetRepo) GetValid(_ context.Context, email, otp string, now time.Time) (*model.PasswordReset, error) {
	r, ok := m.resets[email]
	if !ok || r.OTP != otp || r.Expired(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (m *mockPasswordResetRepo) Delete(_ context.Context, email, otp string) error {
	if r, ok := m.resets[email]; ok && r.OTP == otp {
		delete(m.resets, email)
	}
	return nil
}

func (m *mockPasswordResetRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for email, r := range m.resets {
		if r.Expired(now) {
			delete(m.resets, email)
			n++
		}
	}
	return n, nil
}

// newMockRepository 组装完整的 Mock Repository 聚合
func newMockRepository() (*repository.Repository, *mockUserRepo, *mockGrievanceRepo, *mockPasswordResetRepo) {
	users := newMockUserRepo()
	grievances := newMockGrievanceRepo(users)
	resets := newMockPasswordResetRepo()
	repo := &repository.Repository{
		User:          users,
		Grievance:     grievances,
		PasswordReset: resets,
	}
	return repo, users, grievances, resets
}

// ── Mock Mailer ──

type sentMail struct {
	kind string // welcome | otp | submission | status
	to   string
	otp  string
}

type mockMailer struct {
	mu        sync.Mutex
	sent      []sentMail
	failKinds map[string]error // 指定类型的邮件返回错误
}

func newMockMailer() *mockMailer {
	return &mockMailer{failKinds: make(map[string]error)}
}

func (m *mockMailer) record(kind, to, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failKinds[kind]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, otp: otp})
	return nil
}

func (m *mockMailer) SendWelcome(to, _ string) error {
	return m.record("welcome", to, "")
}

func (m *mockMailer) SendPasswordResetOTP(to, otp string) error {
	return m.record("otp", to, otp)
}

func (m *mockMailer) SendSubmissionReceived(to, _, _, _ string) error {
	return m.record("submission", to, "")
}

func (m *mockMailer) SendStatusUpdate(to, _, _, _, _, _ string) error {
	return m.record("status", to, "")
}

func (m *mockMailer) sentKinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		kinds = append(kinds, s.kind)
	}
	return kinds
}

func (m *mockMailer) lastOTP() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == "otp" {
			return m.sent[i].otp
		}
	}
	return ""
}

// ── Mock 附件存储 ──

type mockStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error // 第 failAfter 次之后的 Save 返回该错误
	failAt  int   // 从 1 开始计数；0 表示不注入失败
	saves   int
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (m *mockStore) Save(_ context.Context, name string, r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failAt > 0 && m.saves >= m.failAt {
		return m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[name] = data
	return nil
}

func (m *mockStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return storage.ErrNotFound
	}
	delete(m.files, name)
	return nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// [自证通过] internal/service/mock_repos_test.go
