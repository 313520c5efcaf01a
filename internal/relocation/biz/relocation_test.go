package biz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/relocity/relocation-backend/internal/pkg/errors"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/relocation/blob"
	"github.com/relocity/relocation-backend/internal/relocation/types"
	userbiz "github.com/relocity/relocation-backend/internal/user/biz"
)

type fakeOwners struct {
	users map[string][]*userbiz.User
	err   error
}

func (f *fakeOwners) FindByUsername(ctx context.Context, username string) ([]*userbiz.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

type fakeBlobs struct {
	writeErr      error
	blockUntilCtx bool
	removed       int
	file          *blob.LogicalFile
}

func (f *fakeBlobs) Write(ctx context.Context, r io.Reader) (*blob.LogicalFile, error) {
	if f.blockUntilCtx {
		<-ctx.Done()
		return nil, fmt.Errorf("failed to read upload stream: %w", ctx.Err())
	}
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.file = &blob.LogicalFile{
		ID:   "file-1",
		Size: int64(len(data)),
		Blobs: []blob.Blob{
			{Sequence: 0, Length: int64(len(data)), StorageKey: "relocations/file-1/blob.0"},
		},
	}
	return f.file, nil
}

func (f *fakeBlobs) Remove(ctx context.Context, file *blob.LogicalFile) error {
	f.removed++
	return nil
}

type fakeRepo struct {
	active     bool
	activeErr  error
	createErr  error
	created    *Relocation
	getResult  *Relocation
	getErr     error
}

func (f *fakeRepo) HasActiveForOwner(ctx context.Context, ownerID string) (bool, error) {
	return f.active, f.activeErr
}

func (f *fakeRepo) CreateWithFile(ctx context.Context, rel *Relocation, file *blob.LogicalFile, kind types.Kind) error {
	if f.createErr != nil {
		return f.createErr
	}
	rel.ID = "rel-1"
	rel.FileID = file.ID
	f.created = rel
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Relocation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

func testUsers() map[string][]*userbiz.User {
	return map[string][]*userbiz.User{
		"alice": {
			{ID: "u-1", Username: "alice"},
			{ID: "u-2", Username: "alice"},
		},
	}
}

func newUseCase(repo *fakeRepo, owners *fakeOwners, blobs *fakeBlobs) *RelocationUseCase {
	return NewRelocationUseCase(repo, owners, blobs, time.Minute, logger.Nop())
}

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		Creator: "admin-1",
		Owner:   "alice",
		Orgs:    []string{"acme"},
		File:    bytes.NewReader([]byte("tarball bytes")),
	}
}

func TestSubmitSuccess(t *testing.T) {
	repo := &fakeRepo{}
	uc := newUseCase(repo, &fakeOwners{users: testUsers()}, &fakeBlobs{})

	rel, err := uc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "rel-1", rel.ID)
	assert.Equal(t, "admin-1", rel.CreatorID)
	assert.Equal(t, "u-1", rel.OwnerID, "first matching user wins")
	assert.Equal(t, types.StepUploading, rel.Step)
	assert.Equal(t, types.StatusInProgress, rel.Status)
	assert.Equal(t, []string{"acme"}, rel.WantOrgSlugs)
	assert.Equal(t, "file-1", rel.FileID)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing file", func(r *SubmitRequest) { r.File = nil }},
		{"blank owner", func(r *SubmitRequest) { r.Owner = "   " }},
		{"owner too long", func(r *SubmitRequest) { r.Owner = strings.Repeat("a", userbiz.MaxUsernameLength+1) }},
		{"no orgs", func(r *SubmitRequest) { r.Orgs = nil }},
		{"blank orgs only", func(r *SubmitRequest) { r.Orgs = []string{"", "  "} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(&fakeRepo{}, &fakeOwners{users: testUsers()}, &fakeBlobs{})
			req := validRequest()
			tt.mutate(req)

			_, err := uc.Submit(context.Background(), req)
			assert.True(t, apperrors.Is(err, apperrors.ErrRelocationInvalidRequest), "got %v", err)
		})
	}
}

func TestSubmitMaxLengthOwnerAccepted(t *testing.T) {
	name := strings.Repeat("a", userbiz.MaxUsernameLength)
	owners := &fakeOwners{users: map[string][]*userbiz.User{
		name: {{ID: "u-9", Username: name}},
	}}
	uc := newUseCase(&fakeRepo{}, owners, &fakeBlobs{})

	req := validRequest()
	req.Owner = name
	rel, err := uc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "u-9", rel.OwnerID)
}

func TestSubmitOwnerNotFound(t *testing.T) {
	uc := newUseCase(&fakeRepo{}, &fakeOwners{users: testUsers()}, &fakeBlobs{})

	req := validRequest()
	req.Owner = "nobody"
	_, err := uc.Submit(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationOwnerNotFound), "got %v", err)
}

func TestSubmitDuplicateActive(t *testing.T) {
	uc := newUseCase(&fakeRepo{active: true}, &fakeOwners{users: testUsers()}, &fakeBlobs{})

	_, err := uc.Submit(context.Background(), validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationDuplicate), "got %v", err)
}

func TestSubmitDuplicateRaceCleansBlobs(t *testing.T) {
	repo := &fakeRepo{createErr: apperrors.New(apperrors.ErrRelocationDuplicate)}
	blobs := &fakeBlobs{}
	uc := newUseCase(repo, &fakeOwners{users: testUsers()}, blobs)

	_, err := uc.Submit(context.Background(), validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationDuplicate), "got %v", err)
	assert.Equal(t, 1, blobs.removed, "unreferenced blobs should be removed")
}

func TestSubmitUploadTimeout(t *testing.T) {
	blobs := &fakeBlobs{blockUntilCtx: true}
	uc := NewRelocationUseCase(
		&fakeRepo{},
		&fakeOwners{users: testUsers()},
		blobs,
		10*time.Millisecond,
		logger.Nop(),
	)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Submit(context.Background(), validRequest())
		done <- err
	}()

	select {
	case err := <-done:
		assert.True(t, apperrors.Is(err, apperrors.ErrRelocationUploadTimeout), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Submit still blocked long after the upload timeout expired")
	}
}

func TestSubmitEmptyFileRejected(t *testing.T) {
	blobs := &fakeBlobs{}
	uc := newUseCase(&fakeRepo{}, &fakeOwners{users: testUsers()}, blobs)

	req := validRequest()
	req.File = bytes.NewReader(nil)
	_, err := uc.Submit(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationInvalidRequest), "got %v", err)
}

func TestSubmitCapacityExceeded(t *testing.T) {
	blobs := &fakeBlobs{writeErr: blob.ErrCapacityExceeded}
	uc := newUseCase(&fakeRepo{}, &fakeOwners{users: testUsers()}, blobs)

	_, err := uc.Submit(context.Background(), validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationCapacityExceeded), "got %v", err)
}

func TestSubmitStorageFailure(t *testing.T) {
	blobs := &fakeBlobs{writeErr: errors.Join(blob.ErrStorageWrite, errors.New("connection refused"))}
	uc := newUseCase(&fakeRepo{}, &fakeOwners{users: testUsers()}, blobs)

	_, err := uc.Submit(context.Background(), validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationStorageFailed), "got %v", err)
}

func TestSubmitPersistenceFailureLeavesBlobs(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("db down")}
	blobs := &fakeBlobs{}
	uc := newUseCase(repo, &fakeOwners{users: testUsers()}, blobs)

	_, err := uc.Submit(context.Background(), validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationPersistence), "got %v", err)
	assert.Equal(t, 0, blobs.removed, "sweeper owns orphan cleanup after persistence failures")
}

func TestSubmitTrimsOrgSlugs(t *testing.T) {
	repo := &fakeRepo{}
	uc := newUseCase(repo, &fakeOwners{users: testUsers()}, &fakeBlobs{})

	req := validRequest()
	req.Orgs = []string{" acme ", "", "globex"}
	rel, err := uc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, rel.WantOrgSlugs)
}

func TestGet(t *testing.T) {
	want := &Relocation{ID: "rel-1", Owner: "alice"}
	uc := newUseCase(&fakeRepo{getResult: want}, &fakeOwners{}, &fakeBlobs{})

	rel, err := uc.Get(context.Background(), "rel-1")
	require.NoError(t, err)
	assert.Equal(t, want, rel)

	_, err = uc.Get(context.Background(), "  ")
	assert.True(t, apperrors.Is(err, apperrors.ErrRelocationInvalidRequest), "got %v", err)
}
