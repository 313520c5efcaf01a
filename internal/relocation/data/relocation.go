package data

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/relocity/relocation-backend/internal/pkg/database"
	apperrors "github.com/relocity/relocation-backend/internal/pkg/errors"
	"github.com/relocity/relocation-backend/internal/relocation/biz"
	"github.com/relocity/relocation-backend/internal/relocation/blob"
	"github.com/relocity/relocation-backend/internal/relocation/models"
	"github.com/relocity/relocation-backend/internal/relocation/types"
)

// RelocationRepo is the gorm-backed relocation repository
type RelocationRepo struct {
	db *database.DB
}

// NewRelocationRepo creates a relocation repository
func NewRelocationRepo(db *database.DB) *RelocationRepo {
	return &RelocationRepo{db: db}
}

// HasActiveForOwner reports whether the owner has an in-progress relocation.
func (r *RelocationRepo) HasActiveForOwner(ctx context.Context, ownerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).GetDB().
		Model(&models.Relocation{}).
		Where("owner_id = ? AND status = ?", ownerID, types.StatusInProgress.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithFile records the logical file, its blobs, the relocation job,
// and the attachment link in one transaction. The partial unique index on
// (owner_id) WHERE status = 'IN_PROGRESS' rejects concurrent admissions;
// that surfaces here as ErrRelocationDuplicate.
func (r *RelocationRepo) CreateWithFile(ctx context.Context, rel *biz.Relocation, file *blob.LogicalFile, kind types.Kind) error {
	err := r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		filePO := &models.File{
			ID:       file.ID,
			Name:     biz.RawDataFileName,
			Type:     biz.RawDataFileType,
			Size:     file.Size,
			Checksum: file.Checksum,
		}
		if err := tx.Create(filePO).Error; err != nil {
			return err
		}

		for _, b := range file.Blobs {
			blobPO := &models.FileBlob{
				FileID:     file.ID,
				Sequence:   b.Sequence,
				Offset:     b.Offset,
				Length:     b.Length,
				StorageKey: b.StorageKey,
			}
			if err := tx.Create(blobPO).Error; err != nil {
				return err
			}
		}

		relPO := &models.Relocation{
			CreatorID: rel.CreatorID,
			OwnerID:   rel.OwnerID,
			Step:      rel.Step.String(),
			Status:    rel.Status.String(),
			WantOrgs:  strings.Join(rel.WantOrgSlugs, ","),
		}
		if err := tx.Create(relPO).Error; err != nil {
			return err
		}

		linkPO := &models.RelocationFile{
			RelocationID: relPO.ID,
			FileID:       file.ID,
			Kind:         kind.String(),
		}
		if err := tx.Create(linkPO).Error; err != nil {
			return err
		}

		rel.ID = relPO.ID
		rel.FileID = file.ID
		rel.CreatedAt = relPO.CreatedAt
		rel.UpdatedAt = relPO.UpdatedAt
		return nil
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return apperrors.New(apperrors.ErrRelocationDuplicate)
		}
		return err
	}
	return nil
}

// GetByID returns a relocation by ID, including its attached file ID.
func (r *RelocationRepo) GetByID(ctx context.Context, id string) (*biz.Relocation, error) {
	var po models.Relocation
	err := r.db.WithContext(ctx).GetDB().
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, apperrors.New(apperrors.ErrRelocationNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrRelocationPersistence)
	}

	rel := toBizRelocation(&po)

	var link models.RelocationFile
	err = r.db.WithContext(ctx).GetDB().
		Where("relocation_id = ? AND kind = ?", po.ID, types.KindRawUserData.String()).
		First(&link).Error
	if err == nil {
		rel.FileID = link.FileID
	} else if !database.IsRecordNotFound(err) {
		return nil, apperrors.Wrap(err, apperrors.ErrRelocationPersistence)
	}

	return rel, nil
}

// ReferencedStorageKeys returns every storage key the file_blobs table
// still references. The sweeper treats anything else under the blob prefix
// as an orphan candidate.
func (r *RelocationRepo) ReferencedStorageKeys(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	err := r.db.WithContext(ctx).GetDB().
		Model(&models.FileBlob{}).
		Pluck("storage_key", &keys).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set, nil
}

func toBizRelocation(po *models.Relocation) *biz.Relocation {
	var orgs []string
	if po.WantOrgs != "" {
		orgs = strings.Split(po.WantOrgs, ",")
	}
	return &biz.Relocation{
		ID:           po.ID,
		CreatorID:    po.CreatorID,
		OwnerID:      po.OwnerID,
		Step:         po.StepValue(),
		Status:       po.StatusValue(),
		WantOrgSlugs: orgs,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
