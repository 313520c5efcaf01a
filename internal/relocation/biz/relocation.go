package biz

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/relocity/relocation-backend/internal/pkg/errors"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/relocation/blob"
	"github.com/relocity/relocation-backend/internal/relocation/types"
	userbiz "github.com/relocity/relocation-backend/internal/user/biz"
)

const (
	// RawDataFileName is the canonical name given to the uploaded tarball.
	RawDataFileName = "raw-relocation-data.tar"
	// RawDataFileType marks files owned by the relocation pipeline.
	RawDataFileType = "relocation.file"
)

// Relocation is the domain view of a relocation job.
type Relocation struct {
	ID           string
	CreatorID    string
	OwnerID      string
	Owner        string
	Step         types.Step
	Status       types.Status
	WantOrgSlugs []string
	FileID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SubmitRequest carries one upload submission into the coordinator.
// Creator is the authenticated user performing the submission; Owner is
// the username the relocation is created on behalf of.
type SubmitRequest struct {
	Creator string
	Owner   string
	Orgs    []string
	File    io.Reader
}

// OwnerResolver looks up candidate owners by username. Implementations must
// return candidates in a deterministic order.
type OwnerResolver interface {
	FindByUsername(ctx context.Context, username string) ([]*userbiz.User, error)
}

// BlobWriter chunks an upload stream into stored blobs.
type BlobWriter interface {
	Write(ctx context.Context, r io.Reader) (*blob.LogicalFile, error)
	Remove(ctx context.Context, f *blob.LogicalFile) error
}

// RelocationRepo persists relocation jobs and their file attachments.
type RelocationRepo interface {
	// HasActiveForOwner reports whether the owner already has an
	// in-progress relocation. This is advisory; the storage layer's
	// unique index is the authoritative admission check.
	HasActiveForOwner(ctx context.Context, ownerID string) (bool, error)
	// CreateWithFile atomically records the file, its blobs, the
	// relocation job, and the attachment link. A duplicate-admission
	// failure is reported as ErrRelocationDuplicate.
	CreateWithFile(ctx context.Context, rel *Relocation, file *blob.LogicalFile, kind types.Kind) error
	GetByID(ctx context.Context, id string) (*Relocation, error)
}

// RelocationUseCase coordinates upload admission, validation, chunked
// storage, and job creation.
type RelocationUseCase struct {
	repo          RelocationRepo
	owners        OwnerResolver
	blobs         BlobWriter
	uploadTimeout time.Duration
	logger        *logger.Logger
}

// NewRelocationUseCase creates the relocation coordinator.
func NewRelocationUseCase(
	repo RelocationRepo,
	owners OwnerResolver,
	blobs BlobWriter,
	uploadTimeout time.Duration,
	log *logger.Logger,
) *RelocationUseCase {
	return &RelocationUseCase{
		repo:          repo,
		owners:        owners,
		blobs:         blobs,
		uploadTimeout: uploadTimeout,
		logger:        log,
	}
}

// Submit validates the request, admits the owner, streams the upload into
// blobs, and creates the job. On success the returned relocation is in
// step UPLOADING with status IN_PROGRESS.
func (uc *RelocationUseCase) Submit(ctx context.Context, req *SubmitRequest) (*Relocation, error) {
	owner, orgs, err := uc.validate(req)
	if err != nil {
		return nil, err
	}

	resolved, err := uc.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	// Fast-path rejection. The unique index still guards against races
	// between this check and the insert.
	active, err := uc.repo.HasActiveForOwner(ctx, resolved.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrRelocationPersistence)
	}
	if active {
		return nil, apperrors.New(apperrors.ErrRelocationDuplicate)
	}

	file, err := uc.writeBlobs(ctx, req.File)
	if err != nil {
		return nil, err
	}
	// An empty stream produces no blobs; nothing to clean up.
	if file.Size == 0 {
		return nil, apperrors.New(apperrors.ErrRelocationInvalidRequest, "uploaded file is empty")
	}

	rel := &Relocation{
		CreatorID:    req.Creator,
		OwnerID:      resolved.ID,
		Owner:        resolved.Username,
		Step:         types.StepUploading,
		Status:       types.StatusInProgress,
		WantOrgSlugs: orgs,
	}

	if err := uc.repo.CreateWithFile(ctx, rel, file, types.KindRawUserData); err != nil {
		if apperrors.Is(err, apperrors.ErrRelocationDuplicate) {
			// Lost the admission race; the blobs are unreferenced now.
			uc.removeBlobs(ctx, file)
			return nil, err
		}
		// Orphaned blobs are left for the sweeper to reclaim.
		return nil, apperrors.Wrap(err, apperrors.ErrRelocationPersistence)
	}

	uc.logger.Info("relocation created",
		zap.String("relocation_id", rel.ID),
		zap.String("owner", rel.Owner),
		zap.Int64("size", file.Size),
		zap.Int("blobs", len(file.Blobs)),
	)

	return rel, nil
}

// Get returns a relocation by ID.
func (uc *RelocationUseCase) Get(ctx context.Context, id string) (*Relocation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.ErrRelocationInvalidRequest, "relocation id is required")
	}
	rel, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (uc *RelocationUseCase) validate(req *SubmitRequest) (owner string, orgs []string, err error) {
	if req == nil || req.File == nil {
		return "", nil, apperrors.New(apperrors.ErrRelocationInvalidRequest, "no file uploaded")
	}

	owner = strings.TrimSpace(req.Owner)
	if owner == "" {
		return "", nil, apperrors.New(apperrors.ErrRelocationInvalidRequest, "owner is required")
	}
	if len(owner) > userbiz.MaxUsernameLength {
		return "", nil, apperrors.Newf(apperrors.ErrRelocationInvalidRequest,
			"owner must be at most %d characters", userbiz.MaxUsernameLength)
	}

	for _, org := range req.Orgs {
		if slug := strings.TrimSpace(org); slug != "" {
			orgs = append(orgs, slug)
		}
	}
	if len(orgs) == 0 {
		return "", nil, apperrors.New(apperrors.ErrRelocationInvalidRequest, "at least one organization slug is required")
	}

	return owner, orgs, nil
}

// resolveOwner picks the first matching user in the resolver's
// deterministic order.
func (uc *RelocationUseCase) resolveOwner(ctx context.Context, owner string) (*userbiz.User, error) {
	users, err := uc.owners.FindByUsername(ctx, owner)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrRelocationPersistence)
	}
	if len(users) == 0 {
		return nil, apperrors.Newf(apperrors.ErrRelocationOwnerNotFound, "no user with username %q", owner)
	}
	return users[0], nil
}

func (uc *RelocationUseCase) writeBlobs(ctx context.Context, r io.Reader) (*blob.LogicalFile, error) {
	writeCtx := ctx
	if uc.uploadTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, uc.uploadTimeout)
		defer cancel()
	}

	file, err := uc.blobs.Write(writeCtx, r)
	if err != nil {
		switch {
		case errors.Is(err, blob.ErrCapacityExceeded):
			return nil, apperrors.New(apperrors.ErrRelocationCapacityExceeded)
		case errors.Is(writeCtx.Err(), context.DeadlineExceeded):
			return nil, apperrors.New(apperrors.ErrRelocationUploadTimeout)
		default:
			return nil, apperrors.Wrap(err, apperrors.ErrRelocationStorageFailed)
		}
	}
	return file, nil
}

func (uc *RelocationUseCase) removeBlobs(ctx context.Context, file *blob.LogicalFile) {
	if err := uc.blobs.Remove(ctx, file); err != nil {
		uc.logger.Warn("failed to remove unreferenced blobs, leaving for sweeper",
			zap.String("file_id", file.ID),
			zap.Error(err),
		)
	}
}
