package service

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/relocity/relocation-backend/internal/pkg/errors"
	"github.com/relocity/relocation-backend/internal/pkg/features"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/pkg/response"
	"github.com/relocity/relocation-backend/internal/relocation/biz"
)

// RelocationUseCase is the business surface the handlers need.
type RelocationUseCase interface {
	Submit(ctx context.Context, req *biz.SubmitRequest) (*biz.Relocation, error)
	Get(ctx context.Context, id string) (*biz.Relocation, error)
}

// FeatureGate answers feature-flag checks.
type FeatureGate interface {
	Enabled(ctx context.Context, flag string) bool
}

// RelocationService exposes the relocation HTTP API.
type RelocationService struct {
	uc     RelocationUseCase
	gate   FeatureGate
	logger *logger.Logger
}

// NewRelocationService creates the relocation service.
func NewRelocationService(uc RelocationUseCase, gate FeatureGate, log *logger.Logger) *RelocationService {
	return &RelocationService{
		uc:     uc,
		gate:   gate,
		logger: log,
	}
}

// RegisterRoutes mounts the relocation endpoints on the given group.
func (s *RelocationService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/relocations", s.CreateRelocation)
	rg.GET("/relocations/:id", s.GetRelocation)
}

// RelocationResponse is the JSON shape of a relocation job.
type RelocationResponse struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id,omitempty"`
	OwnerID      string    `json:"owner_id"`
	Owner        string    `json:"owner,omitempty"`
	Step         string    `json:"step"`
	Status       string    `json:"status"`
	WantOrgSlugs []string  `json:"want_org_slugs"`
	FileID       string    `json:"file_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toResponse(rel *biz.Relocation) *RelocationResponse {
	return &RelocationResponse{
		ID:           rel.ID,
		CreatorID:    rel.CreatorID,
		OwnerID:      rel.OwnerID,
		Owner:        rel.Owner,
		Step:         rel.Step.String(),
		Status:       rel.Status.String(),
		WantOrgSlugs: rel.WantOrgSlugs,
		FileID:       rel.FileID,
		CreatedAt:    rel.CreatedAt,
		UpdatedAt:    rel.UpdatedAt,
	}
}

// CreateRelocation accepts a multipart upload and creates a relocation job.
//
// Form fields:
//   - file: the encrypted tarball (required)
//   - owner: username of the relocation owner (required)
//   - orgs: organization slugs, repeated or comma-separated (required)
func (s *RelocationService) CreateRelocation(c *gin.Context) {
	ctx := c.Request.Context()

	if !s.gate.Enabled(ctx, features.FlagRelocationEnabled) {
		response.ErrorWithCode(c, apperrors.ErrRelocationDisabled)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrRelocationInvalidRequest, "no file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("failed to open uploaded file", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrRelocationInvalidRequest, "uploaded file is unreadable")
		return
	}
	defer file.Close()

	req := &biz.SubmitRequest{
		Creator: c.GetString("user_id"),
		Owner:   c.PostForm("owner"),
		Orgs:    parseOrgs(c.PostFormArray("orgs")),
		File:    file,
	}

	rel, err := s.uc.Submit(ctx, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, toResponse(rel))
}

// GetRelocation returns a relocation job by ID.
func (s *RelocationService) GetRelocation(c *gin.Context) {
	rel, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, toResponse(rel))
}

// parseOrgs flattens repeated form values and comma-separated lists into
// individual slugs. Blank entries are dropped later during validation.
func parseOrgs(values []string) []string {
	var orgs []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			orgs = append(orgs, strings.TrimSpace(part))
		}
	}
	return orgs
}
