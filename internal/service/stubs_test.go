package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
)

// In-memory repository doubles. They mirror the SQL semantics the services
// depend on: expiry-aware reads and a lost-update-free counter.

type memLinks struct {
	mu         sync.Mutex
	links      map[string]*model.Link
	createErrs []error // popped per Create call before the real insert
}

func newMemLinks() *memLinks {
	return &memLinks{links: make(map[string]*model.Link)}
}

func (m *memLinks) Create(link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}

	if _, ok := m.links[link.Token]; ok {
		return repository.ErrDuplicateToken
	}
	cp := *link
	m.links[link.Token] = &cp
	return nil
}

func (m *memLinks) ByToken(token string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[token]
	if !ok || link.IsExpired() {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memLinks) IncrementAccessCount(token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[token]
	if !ok || link.IsExpired() {
		return 0, repository.ErrLinkNotFound
	}
	link.AccessCount++
	now := time.Now()
	link.LastAccessed = &now
	return link.AccessCount, nil
}

func (m *memLinks) Delete(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.links[token]
	delete(m.links, token)
	return ok, nil
}

func (m *memLinks) ByUser(userID int64, limit int) ([]*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Link
	for _, link := range m.links {
		if link.UserID == userID && !link.IsExpired() {
			cp := *link
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLinks) CountByUser(userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, link := range m.links {
		if link.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memLinks) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.links)), nil
}

func (m *memLinks) DeleteExpired() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for token, link := range m.links {
		if link.IsExpired() {
			delete(m.links, token)
			n++
		}
	}
	return n, nil
}

type memFiles struct {
	mu    sync.Mutex
	files map[string]*model.File
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string]*model.File)}
}

func (m *memFiles) Create(file *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[file.FileID]; ok {
		return repository.ErrDuplicateFile
	}
	cp := *file
	m.files[file.FileID] = &cp
	return nil
}

func (m *memFiles) ByID(fileID string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[fileID]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	cp := *file
	return &cp, nil
}

func (m *memFiles) ByUniqueID(fileUniqueID string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, file := range m.files {
		if file.FileUniqueID == fileUniqueID {
			cp := *file
			return &cp, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (m *memFiles) Delete(fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, fileID)
	return nil
}

func (m *memFiles) CountByUploader(userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, file := range m.files {
		if file.UploaderID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memFiles) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.files)), nil
}

func (m *memFiles) CountCreatedSince(since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, file := range m.files {
		if !file.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type memLogs struct {
	mu       sync.Mutex
	entries  []*model.AccessLog
	countErr error // forces CountSuccessSince to fail
}

func newMemLogs() *memLogs {
	return &memLogs{}
}

func (m *memLogs) Append(entry *model.AccessLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memLogs) CountSuccessSince(userID int64, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, e := range m.entries {
		if e.UserID == userID && e.Success && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memLogs) successCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Success {
			n++
		}
	}
	return n
}

func (m *memLogs) lastKind() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return ""
	}
	last := m.entries[len(m.entries)-1]
	if last.ErrorKind == nil {
		return ""
	}
	return *last.ErrorKind
}

type memUsers struct {
	mu        sync.Mutex
	users     map[int64]*model.User
	clearErrs map[int64]error
}

func newMemUsers() *memUsers {
	return &memUsers{
		users:     make(map[int64]*model.User),
		clearErrs: make(map[int64]error),
	}
}

func (m *memUsers) GetOrCreate(userID int64, username, firstName string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[userID]; ok {
		cp := *user
		return &cp, nil
	}
	now := time.Now()
	user := &model.User{UserID: userID, JoinedAt: now, LastActiveAt: now}
	if username != "" {
		user.Username = &username
	}
	if firstName != "" {
		user.FirstName = &firstName
	}
	m.users[userID] = user
	cp := *user
	return &cp, nil
}

func (m *memUsers) ByID(userID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memUsers) SetPremium(userID int64, expiry *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		now := time.Now()
		user = &model.User{UserID: userID, JoinedAt: now, LastActiveAt: now}
		m.users[userID] = user
	}
	user.IsPremium = true
	user.PremiumExpiry = expiry
	return nil
}

func (m *memUsers) ClearPremium(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.clearErrs[userID]; err != nil {
		return err
	}
	if user, ok := m.users[userID]; ok {
		user.IsPremium = false
		user.PremiumExpiry = nil
	}
	return nil
}

func (m *memUsers) ExpiredPremium() ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, user := range m.users {
		if user.IsPremium && user.PremiumExpiry != nil && !time.Now().Before(*user.PremiumExpiry) {
			cp := *user
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memUsers) TouchLastActive(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[userID]; ok {
		user.LastActiveAt = time.Now()
	}
	return nil
}

func (m *memUsers) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memUsers) CountPremium() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, user := range m.users {
		if user.IsPremium {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) CountJoinedSince(since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, user := range m.users {
		if !user.JoinedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// recordingNotifier captures deliveries and can fail per user.
type recordingNotifier struct {
	mu      sync.Mutex
	sent    []int64
	failFor map[int64]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failFor: make(map[int64]error)}
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.failFor[userID]; err != nil {
		return err
	}
	n.sent = append(n.sent, userID)
	return nil
}
