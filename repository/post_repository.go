package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/cppla/minipost/models"
)

// PostStore is ownership-scoped access to persisted posts. Every method takes
// the owner id; there is no way to reach another user's rows.
type PostStore interface {
	Create(ctx context.Context, ownerID uint, text string) (*models.Post, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Post, error)
	DeleteByIDAndOwner(ctx context.Context, postID, ownerID uint) (bool, error)
	FindByIDAndOwner(ctx context.Context, postID, ownerID uint) (*models.Post, error)
}

// PostRepository is the gorm backed PostStore.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create persists a new post for ownerID.
func (r *PostRepository) Create(ctx context.Context, ownerID uint, text string) (*models.Post, error) {
	if len(text) > models.MaxPostBytes {
		return nil, ErrPostTooLarge
	}
	post := models.Post{OwnerID: ownerID, Text: text}
	if err := r.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	return &post, nil
}

// ListByOwner returns every post of ownerID in insertion order, never nil.
func (r *PostRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	return posts, nil
}

// DeleteByIDAndOwner removes the post only when ownerID owns it. It reports
// false both for a missing post and for someone else's.
func (r *PostRepository) DeleteByIDAndOwner(ctx context.Context, postID, ownerID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", postID, ownerID).
		Delete(&models.Post{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete post")
	}
	return res.RowsAffected > 0, nil
}

// FindByIDAndOwner returns the post when ownerID owns it, ErrNotFound otherwise.
func (r *PostRepository) FindByIDAndOwner(ctx context.Context, postID, ownerID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", postID, ownerID).
		First(&post).Error
	if err != nil {
		return nil, translate(err, "find post")
	}
	return &post, nil
}
