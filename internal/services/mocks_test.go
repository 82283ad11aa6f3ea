package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmcs/claimserver/internal/storage"
	"github.com/cmcs/claimserver/internal/store"
	"github.com/cmcs/claimserver/types"
)

type mockUserStore struct {
	users  map[int]types.User
	nextID int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[int]types.User{}, nextID: 1}
}

func (m *mockUserStore) List(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserStore) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = m.nextID
	m.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserStore) Update(ctx context.Context, user types.User) (types.User, error) {
	existing, ok := m.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.PasswordHash = existing.PasswordHash
	user.PasswordSalt = existing.PasswordSalt
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserStore) SetPassword(ctx context.Context, id int, digest, salt string) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = digest
	user.PasswordSalt = salt
	m.users[id] = user
	return nil
}

type mockClaimStore struct {
	claims    map[int]types.Claim
	documents *mockDocumentStore
	nextID    int
}

func newMockClaimStore(documents *mockDocumentStore) *mockClaimStore {
	return &mockClaimStore{claims: map[int]types.Claim{}, documents: documents, nextID: 1}
}

func (m *mockClaimStore) List(ctx context.Context) ([]types.Claim, error) {
	claims := make([]types.Claim, 0, len(m.claims))
	for _, claim := range m.claims {
		claims = append(claims, claim)
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].ID < claims[j].ID })
	return claims, nil
}

func (m *mockClaimStore) ListByUser(ctx context.Context, userID int) ([]types.Claim, error) {
	all, _ := m.List(ctx)
	var claims []types.Claim
	for _, claim := range all {
		if claim.UserID == userID {
			claims = append(claims, claim)
		}
	}
	return claims, nil
}

func (m *mockClaimStore) ListByStatus(ctx context.Context, statusIDs ...int) ([]types.Claim, error) {
	wanted := map[int]bool{}
	for _, id := range statusIDs {
		wanted[id] = true
	}
	all, _ := m.List(ctx)
	var claims []types.Claim
	for _, claim := range all {
		if wanted[claim.StatusID] {
			claims = append(claims, claim)
		}
	}
	return claims, nil
}

func (m *mockClaimStore) Get(ctx context.Context, id int) (types.Claim, error) {
	claim, ok := m.claims[id]
	if !ok {
		return types.Claim{}, store.ErrNotFound
	}
	if m.documents != nil {
		claim.Documents, _ = m.documents.ListByClaim(ctx, id)
	}
	return claim, nil
}

func (m *mockClaimStore) Create(ctx context.Context, claim types.Claim) (types.Claim, error) {
	claim.ID = m.nextID
	m.nextID++
	claim.StatusID = types.StatusSubmitted
	claim.SubmissionDate = time.Now()
	claim.TotalAmount = claim.HoursWorked * claim.HourlyRate
	m.claims[claim.ID] = claim
	return claim, nil
}

func (m *mockClaimStore) Update(ctx context.Context, claim types.Claim) (types.Claim, error) {
	if _, ok := m.claims[claim.ID]; !ok {
		return types.Claim{}, store.ErrNotFound
	}
	claim.TotalAmount = claim.HoursWorked * claim.HourlyRate
	claim.Documents = nil
	m.claims[claim.ID] = claim
	return claim, nil
}

func (m *mockClaimStore) Delete(ctx context.Context, id int) error {
	if _, ok := m.claims[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.claims, id)
	if m.documents != nil {
		m.documents.deleteByClaim(id)
	}
	return nil
}

type mockDocumentStore struct {
	documents map[int]types.Document
	nextID    int
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{documents: map[int]types.Document{}, nextID: 1}
}

func (m *mockDocumentStore) Get(ctx context.Context, id int) (types.Document, error) {
	doc, ok := m.documents[id]
	if !ok {
		return types.Document{}, store.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocumentStore) ListByClaim(ctx context.Context, claimID int) ([]types.Document, error) {
	ids := make([]int, 0, len(m.documents))
	for id, doc := range m.documents {
		if doc.ClaimID == claimID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	var docs []types.Document
	for _, id := range ids {
		docs = append(docs, m.documents[id])
	}
	return docs, nil
}

func (m *mockDocumentStore) Create(ctx context.Context, doc types.Document) (types.Document, error) {
	doc.ID = m.nextID
	m.nextID++
	doc.UploadDate = time.Now()
	m.documents[doc.ID] = doc
	return doc, nil
}

func (m *mockDocumentStore) deleteByClaim(claimID int) {
	for id, doc := range m.documents {
		if doc.ClaimID == claimID {
			delete(m.documents, id)
		}
	}
}

type mockBlobStore struct {
	blobs map[string][]byte
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: map[string][]byte{}}
}

func (m *mockBlobStore) Put(ctx context.Context, key string, data []byte) error {
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

type fixture struct {
	users     *mockUserStore
	claims    *mockClaimStore
	documents *mockDocumentStore
	blobs     *mockBlobStore
	service   *ClaimService

	lecturer    types.User
	coordinator types.User
	manager     types.User
	hr          types.User
}

func newFixture() *fixture {
	users := newMockUserStore()
	documents := newMockDocumentStore()
	claims := newMockClaimStore(documents)
	blobs := newMockBlobStore()

	f := &fixture{
		users:     users,
		claims:    claims,
		documents: documents,
		blobs:     blobs,
		service:   NewClaimService(claims, documents, users, blobs, nil, nil),
	}

	ctx := context.Background()
	f.lecturer, _ = users.Create(ctx, types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za", Role: types.RoleLecturer, HourlyRate: 150,
	})
	f.coordinator, _ = users.Create(ctx, types.User{
		FirstName: "Peter", LastName: "Nkosi",
		Email: "peter.nkosi@university.ac.za", Role: types.RoleCoordinator,
	})
	f.manager, _ = users.Create(ctx, types.User{
		FirstName: "Sarah", LastName: "van Wyk",
		Email: "sarah.vanwyk@university.ac.za", Role: types.RoleManager,
	})
	f.hr, _ = users.Create(ctx, types.User{
		FirstName: "Thabo", LastName: "Mokoena",
		Email: "thabo.mokoena@university.ac.za", Role: types.RoleHR,
	})
	return f
}

func uploadOf(name string, content string) Upload {
	return Upload{
		FileName: name,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}
}
