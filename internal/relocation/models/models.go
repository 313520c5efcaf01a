package models

import (
	"time"

	"github.com/relocity/relocation-backend/internal/relocation/types"
)

// Relocation is a relocation job row.
type Relocation struct {
	ID        string    `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	CreatorID string    `gorm:"column:creator_id;type:uuid;not null"`
	OwnerID   string    `gorm:"column:owner_id;type:uuid;not null;index:idx_relocations_owner"`
	Step      string    `gorm:"column:step;size:32;not null"`
	Status    string    `gorm:"column:status;size:32;not null"`
	WantOrgs  string    `gorm:"column:want_org_slugs;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Relocation) TableName() string {
	return "relocations"
}

// StepValue returns the typed step.
func (r *Relocation) StepValue() types.Step {
	return types.ParseStep(r.Step)
}

// StatusValue returns the typed status.
func (r *Relocation) StatusValue() types.Status {
	return types.Status(r.Status)
}

// File is a logical file assembled from one or more blobs.
type File struct {
	ID        string    `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	Name      string    `gorm:"column:name;size:255;not null"`
	Type      string    `gorm:"column:type;size:64;not null"`
	Size      int64     `gorm:"column:size;not null"`
	Checksum  string    `gorm:"column:checksum;size:64"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`

	Blobs []FileBlob `gorm:"foreignKey:FileID"`
}

func (File) TableName() string {
	return "files"
}

// FileBlob is one fixed-size chunk of a logical file held in object storage.
type FileBlob struct {
	ID         string    `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	FileID     string    `gorm:"column:file_id;type:uuid;not null;uniqueIndex:uniq_file_blobs_file_seq,priority:1"`
	Sequence   int       `gorm:"column:sequence;not null;uniqueIndex:uniq_file_blobs_file_seq,priority:2"`
	Offset     int64     `gorm:"column:byte_offset;not null"`
	Length     int64     `gorm:"column:byte_length;not null"`
	StorageKey string    `gorm:"column:storage_key;size:512;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (FileBlob) TableName() string {
	return "file_blobs"
}

// RelocationFile links an uploaded file to its relocation job.
type RelocationFile struct {
	ID           string    `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	RelocationID string    `gorm:"column:relocation_id;type:uuid;not null;index:idx_relocation_files_relocation"`
	FileID       string    `gorm:"column:file_id;type:uuid;not null"`
	Kind         string    `gorm:"column:kind;size:32;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (RelocationFile) TableName() string {
	return "relocation_files"
}
