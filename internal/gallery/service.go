// Package gallery publishes photos and videos of finished jobs.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostDTO is a gallery post.
type PostDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ServiceID   *uuid.UUID `json:"serviceId,omitempty"`
	Media       []MediaDTO `json:"media"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MediaDTO is one ordered media entry.
type MediaDTO struct {
	ID       uuid.UUID       `json:"id"`
	URL      string          `json:"url"`
	Kind     enums.MediaKind `json:"kind"`
	Position int             `json:"position"`
}

// ListResult is one page of posts.
type ListResult struct {
	Posts      []PostDTO `json:"posts"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// MediaInput is a media entry as submitted by the back office.
type MediaInput struct {
	URL  string `json:"url" validate:"required"`
	Kind string `json:"kind"`
}

// PostInput carries create and update fields. On update nil fields are kept and
// a non-nil Media replaces the list.
type PostInput struct {
	Title       *string
	Description *string
	ServiceID   *uuid.UUID
	Published   *bool
	Media       *[]MediaInput
}

// Service exposes the gallery.
type Service interface {
	List(ctx context.Context, params pagination.Params, serviceID *uuid.UUID, includeDrafts bool) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*PostDTO, error)
	Create(ctx context.Context, input PostInput) (*PostDTO, error)
	Update(ctx context.Context, id uuid.UUID, input PostInput) (*PostDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds the gallery service.
func NewService(repo *Repository, tx txRunner, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gallery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, tx: tx, now: now}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, serviceID *uuid.UUID, includeDrafts bool) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params, serviceID, includeDrafts)
	if err != nil {
		return nil, pagination.WrapListError(err, "list posts")
	}
	out := &ListResult{Posts: make([]PostDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Posts = append(out.Posts, *fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*PostDTO, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.PublishedAt == nil && !includeDrafts {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return fromModel(post), nil
}

func (s *service) Create(ctx context.Context, input PostInput) (*PostDTO, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	post := &models.ServicePost{}
	// new posts are published unless explicitly saved as draft
	if input.Published == nil {
		published := true
		input.Published = &published
	}
	if err := s.apply(post, input); err != nil {
		return nil, err
	}
	if input.Media != nil {
		media, err := buildMedia(*input.Media)
		if err != nil {
			return nil, err
		}
		post.Media = media
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, post)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert post")
	}
	return s.Get(ctx, post.ID, true)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PostInput) (*PostDTO, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(post, input); err != nil {
		return nil, err
	}
	var media []models.ServicePostMedia
	if input.Media != nil {
		if media, err = buildMedia(*input.Media); err != nil {
			return nil, err
		}
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, post); err != nil {
			return err
		}
		if input.Media != nil {
			return txRepo.ReplaceMedia(ctx, post.ID, media)
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update post")
	}
	return s.Get(ctx, post.ID, true)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete post")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ServicePost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	return post, nil
}

func (s *service) apply(post *models.ServicePost, input PostInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		post.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		post.Description = &description
		if description == "" {
			post.Description = nil
		}
	}
	if input.ServiceID != nil {
		serviceID := *input.ServiceID
		post.ServiceID = &serviceID
		if serviceID == uuid.Nil {
			post.ServiceID = nil
		}
	}
	if input.Published != nil {
		switch {
		case *input.Published && post.PublishedAt == nil:
			now := s.now()
			post.PublishedAt = &now
		case !*input.Published:
			post.PublishedAt = nil
		}
	}
	return nil
}

func buildMedia(inputs []MediaInput) ([]models.ServicePostMedia, error) {
	media := make([]models.ServicePostMedia, 0, len(inputs))
	for _, in := range inputs {
		url := strings.TrimSpace(in.URL)
		if url == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "media url is required")
		}
		kind, err := enums.ParseMediaKind(strings.ToLower(strings.TrimSpace(in.Kind)))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media kind")
		}
		media = append(media, models.ServicePostMedia{URL: url, Kind: kind, Position: len(media)})
	}
	return media, nil
}

func fromModel(post *models.ServicePost) *PostDTO {
	dto := &PostDTO{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		ServiceID:   post.ServiceID,
		Media:       make([]MediaDTO, 0, len(post.Media)),
		PublishedAt: post.PublishedAt,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	for _, m := range post.Media {
		dto.Media = append(dto.Media, MediaDTO{ID: m.ID, URL: m.URL, Kind: m.Kind, Position: m.Position})
	}
	return dto
}
