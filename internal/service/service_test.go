package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/postgres"
	"github.com/meetgrid/meet-service/internal/security"
	"github.com/meetgrid/meet-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRoomRepo struct {
	rooms map[string]*domain.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*domain.Room)}
}

func (f *fakeRoomRepo) Create(_ context.Context, room *domain.Room) error {
	room.ID = "room-" + room.Name
	room.CreatedAt = time.Now()
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomRepo) Get(_ context.Context, id string) (*domain.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return r, nil
}

func (f *fakeRoomRepo) List(_ context.Context, limit int, _ string) ([]domain.Room, string, error) {
	out := make([]domain.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, *r)
		if len(out) == limit {
			break
		}
	}
	return out, "", nil
}

func (f *fakeRoomRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(f.rooms, id)
	return nil
}

type memberKey struct {
	roomID string
	userID int64
}

type fakeParticipantRepo struct {
	members map[memberKey]*domain.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{members: make(map[memberKey]*domain.Participant)}
}

func (f *fakeParticipantRepo) add(roomID string, userID int64) {
	now := time.Now()
	f.members[memberKey{roomID, userID}] = &domain.Participant{
		RoomID: roomID, UserID: userID, JoinedAt: now, LastSeen: now,
	}
}

func (f *fakeParticipantRepo) Exists(_ context.Context, roomID string, userID int64) (bool, error) {
	_, ok := f.members[memberKey{roomID, userID}]
	return ok, nil
}

func (f *fakeParticipantRepo) Join(_ context.Context, p *domain.Participant, maxParticipants int64) error {
	var count int64
	for k := range f.members {
		if k.roomID == p.RoomID {
			count++
		}
	}
	if count >= maxParticipants {
		return domain.ErrRoomFull
	}
	f.members[memberKey{p.RoomID, p.UserID}] = p
	return nil
}

func (f *fakeParticipantRepo) Leave(_ context.Context, roomID string, userID int64) error {
	k := memberKey{roomID, userID}
	if _, ok := f.members[k]; !ok {
		return domain.ErrNotInRoom
	}
	delete(f.members, k)
	return nil
}

func (f *fakeParticipantRepo) ListByRoom(_ context.Context, roomID string) ([]domain.Participant, error) {
	var out []domain.Participant
	for k, p := range f.members {
		if k.roomID == roomID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) TouchHeartbeat(_ context.Context, roomID string, userID int64) error {
	if p, ok := f.members[memberKey{roomID, userID}]; ok {
		p.LastSeen = time.Now()
	}
	return nil
}

func (f *fakeParticipantRepo) ListDetailed(_ context.Context, roomID string, _ time.Duration) ([]postgres.ParticipantDetailedRow, error) {
	var out []postgres.ParticipantDetailedRow
	for k, p := range f.members {
		if k.roomID == roomID {
			out = append(out, postgres.ParticipantDetailedRow{
				UserID: p.UserID, JoinedAt: p.JoinedAt, LastSeen: p.LastSeen,
			})
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	saved []domain.Message
}

func (f *fakeMessageRepo) Save(_ context.Context, roomID string, userID int64, text string, replyTo *string) (*domain.Message, error) {
	m := domain.Message{
		ID: "msg-1", RoomID: roomID, UserID: userID,
		Text: text, ReplyTo: replyTo, CreatedAt: time.Now(),
	}
	f.saved = append(f.saved, m)
	return &m, nil
}

func (f *fakeMessageRepo) History(_ context.Context, roomID, _ string, _ int) ([]domain.Message, string, error) {
	var out []domain.Message
	for _, m := range f.saved {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, "", nil
}

type fakeFileRepo struct {
	files   map[string]*domain.File
	saveErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*domain.File)}
}

func (f *fakeFileRepo) Save(_ context.Context, file *domain.File) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	file.ID = "file-" + file.OriginalName
	file.CreatedAt = time.Now()
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileRepo) Get(_ context.Context, id string) (*domain.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return file, nil
}

func (f *fakeFileRepo) ListByRoom(_ context.Context, roomID, _ string, _ int) ([]domain.File, string, error) {
	var out []domain.File
	for _, file := range f.files {
		if file.RoomID == roomID {
			out = append(out, *file)
		}
	}
	return out, "", nil
}

func (f *fakeFileRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.files[id]; !ok {
		return domain.ErrFileNotFound
	}
	delete(f.files, id)
	return nil
}

type fakeBlobStore struct {
	blobs   map[string][]byte
	removed []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Save(roomID, originalName string, src io.Reader) (*storage.SavedBlob, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	path := roomID + "/" + originalName
	f.blobs[path] = data
	return &storage.SavedBlob{
		StoredName:  originalName,
		Path:        path,
		ContentType: "application/octet-stream",
		SizeBytes:   int64(len(data)),
	}, nil
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func (f *fakeBlobStore) Open(relPath string) (io.ReadSeekCloser, error) {
	data, ok := f.blobs[relPath]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return nopReadSeekCloser{bytes.NewReader(data)}, nil
}

func (f *fakeBlobStore) Remove(relPath string) error {
	delete(f.blobs, relPath)
	f.removed = append(f.removed, relPath)
	return nil
}

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := f.users[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// --- rooms ---

func TestRoomService_CreateRoom(t *testing.T) {
	svc := NewRoomService(newFakeRoomRepo())
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "   ", 5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRoomName)

	room, err := svc.CreateRoom(ctx, "standup", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), room.MaxParticipants, "cap defaults when out of range")

	room, err = svc.CreateRoom(ctx, "huddle", 4, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), room.MaxParticipants)
	assert.Equal(t, int64(1), room.CreatedBy)
	assert.Equal(t, "room."+room.ID, room.Channel())
}

func TestRoomService_DeleteRoom_CreatorOnly(t *testing.T) {
	repo := newFakeRoomRepo()
	svc := NewRoomService(repo)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, "standup", 5, 1)
	require.NoError(t, err)

	err = svc.DeleteRoom(ctx, room.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotCreator)

	require.NoError(t, svc.DeleteRoom(ctx, room.ID, 1))

	err = svc.DeleteRoom(ctx, room.ID, 1)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

// --- membership ---

func TestMemberService_JoinRoom(t *testing.T) {
	rooms := newFakeRoomRepo()
	parts := newFakeParticipantRepo()
	svc := NewMemberService(rooms, parts)
	ctx := context.Background()

	_, err := svc.JoinRoom(ctx, "nope", 1)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	room := &domain.Room{Name: "pair", MaxParticipants: 2, CreatedBy: 1}
	require.NoError(t, rooms.Create(ctx, room))

	p, err := svc.JoinRoom(ctx, room.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.UserID)

	_, err = svc.JoinRoom(ctx, room.ID, 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyJoined)

	_, err = svc.JoinRoom(ctx, room.ID, 2)
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, room.ID, 3)
	assert.ErrorIs(t, err, domain.ErrRoomFull)
}

func TestMemberService_LeaveRoom(t *testing.T) {
	rooms := newFakeRoomRepo()
	parts := newFakeParticipantRepo()
	svc := NewMemberService(rooms, parts)
	ctx := context.Background()

	parts.add("r1", 7)
	require.NoError(t, svc.LeaveRoom(ctx, "r1", 7))

	err := svc.LeaveRoom(ctx, "r1", 7)
	assert.ErrorIs(t, err, domain.ErrNotInRoom)
}

// --- chat ---

func TestChatService_Post(t *testing.T) {
	msgs := &fakeMessageRepo{}
	parts := newFakeParticipantRepo()
	svc := NewChatService(msgs, parts, 20)
	ctx := context.Background()

	_, err := svc.Post(ctx, "r1", 1, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = svc.Post(ctx, "r1", 1, strings.Repeat("x", 21), nil)
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)

	_, err = svc.Post(ctx, "r1", 1, "hello", nil)
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	parts.add("r1", 1)
	m, err := svc.Post(ctx, "r1", 1, "  hello  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Text, "text is trimmed before the length check")
	assert.Len(t, msgs.saved, 1)
}

// --- signaling ---

func TestSignalService_Relay(t *testing.T) {
	rooms := newFakeRoomRepo()
	parts := newFakeParticipantRepo()
	svc := NewSignalService(rooms, parts, 64)
	ctx := context.Background()
	payload := json.RawMessage(`{"type":"offer"}`)

	room := &domain.Room{Name: "call", MaxParticipants: 4, CreatedBy: 1}
	require.NoError(t, rooms.Create(ctx, room))
	parts.add(room.ID, 1)
	parts.add(room.ID, 2)

	_, err := svc.Relay(ctx, room.ID, 1, nil, json.RawMessage(strings.Repeat("a", 65)))
	assert.ErrorIs(t, err, domain.ErrSignalTooLarge)

	_, err = svc.Relay(ctx, "nope", 1, nil, payload)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, err = svc.Relay(ctx, room.ID, 9, nil, payload)
	assert.ErrorIs(t, err, domain.ErrNotInRoom, "sender must be a member")

	to := int64(9)
	_, err = svc.Relay(ctx, room.ID, 1, &to, payload)
	assert.ErrorIs(t, err, domain.ErrNotInRoom, "target must be a member")

	sig, err := svc.Relay(ctx, room.ID, 1, nil, payload)
	require.NoError(t, err)
	assert.Nil(t, sig.ToUserID)
	assert.Equal(t, payload, sig.Data, "payload passes through untouched")

	to = 2
	sig, err = svc.Relay(ctx, room.ID, 1, &to, payload)
	require.NoError(t, err)
	require.NotNil(t, sig.ToUserID)
	assert.Equal(t, int64(2), *sig.ToUserID)
}

// --- files ---

func TestFileService_Upload(t *testing.T) {
	files := newFakeFileRepo()
	parts := newFakeParticipantRepo()
	blobs := newFakeBlobStore()
	svc := NewFileService(files, parts, blobs)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "r1", 1, "notes.txt", strings.NewReader("hi"))
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	parts.add("r1", 1)
	f, err := svc.Upload(ctx, "r1", 1, "notes.txt", strings.NewReader("hi"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.SizeBytes)
	assert.Contains(t, blobs.blobs, f.StoragePath)
}

func TestFileService_Upload_RowFailureRemovesBlob(t *testing.T) {
	files := newFakeFileRepo()
	files.saveErr = errors.New("insert failed")
	parts := newFakeParticipantRepo()
	parts.add("r1", 1)
	blobs := newFakeBlobStore()
	svc := NewFileService(files, parts, blobs)

	_, err := svc.Upload(context.Background(), "r1", 1, "notes.txt", strings.NewReader("hi"))
	require.Error(t, err)
	assert.Empty(t, blobs.blobs, "blob is cleaned up when the row insert fails")
	assert.Len(t, blobs.removed, 1)
}

func TestFileService_Delete(t *testing.T) {
	files := newFakeFileRepo()
	parts := newFakeParticipantRepo()
	parts.add("r1", 1)
	blobs := newFakeBlobStore()
	svc := NewFileService(files, parts, blobs)
	ctx := context.Background()

	f, err := svc.Upload(ctx, "r1", 1, "notes.txt", strings.NewReader("hi"))
	require.NoError(t, err)

	err = svc.Delete(ctx, f.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotUploader)

	require.NoError(t, svc.Delete(ctx, f.ID, 1))
	assert.Empty(t, files.files)
	assert.Empty(t, blobs.blobs)

	err = svc.Delete(ctx, f.ID, 1)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestFileService_OpenForDownload(t *testing.T) {
	files := newFakeFileRepo()
	parts := newFakeParticipantRepo()
	parts.add("r1", 1)
	blobs := newFakeBlobStore()
	svc := NewFileService(files, parts, blobs)
	ctx := context.Background()

	f, err := svc.Upload(ctx, "r1", 1, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	got, rc, err := svc.OpenForDownload(ctx, f.ID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, f.ID, got.ID)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, _, err = svc.OpenForDownload(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

// --- auth ---

func testTokenManager() *security.TokenManager {
	return security.NewTokenManager("test-secret-test-secret", "meet-service", "meet-web", time.Minute, time.Second)
}

func TestAuthService_Register(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "Ann", "longenough")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, "ann@example.com", "", "longenough")
	assert.ErrorIs(t, err, domain.ErrInvalidDisplayName)

	_, err = svc.Register(ctx, "ann@example.com", "Ann", "short")
	assert.ErrorIs(t, err, security.ErrPasswordTooShort)

	u, err := svc.Register(ctx, "  Ann@Example.com ", "Ann", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email, "email is normalized")
	assert.NotEmpty(t, u.PasswordHash)

	_, err = svc.Register(ctx, "ann@example.com", "Ann", "longenough")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	tokens := testTokenManager()
	svc := NewAuthService(newFakeUserRepo(), tokens)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ann@example.com", "Ann", "longenough")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "longenough")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, _, err = svc.Login(ctx, "ann@example.com", "wrongpassword")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	u, token, err := svc.Login(ctx, "ann@example.com", "longenough")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := tokens.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}
