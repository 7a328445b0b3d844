package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/minipost/middleware"
	"github.com/cppla/minipost/models"
	"github.com/cppla/minipost/repository"
	"github.com/cppla/minipost/utils"
)

const postTooLargeDetail = "Post size exceeds 1 MB"

// a body over the request cap is an oversized post like any other
var postTooLarge = tooLargeReply{http.StatusBadRequest, 40021, postTooLargeDetail}

// PostController manages the caller's own posts.
type PostController struct {
	posts  repository.PostStore
	filter utils.TextFilter
}

// NewPostController creates a PostController. filter is applied to text
// before the size check; nil keeps text unchanged.
func NewPostController(posts repository.PostStore, filter utils.TextFilter) *PostController {
	if filter == nil {
		filter = utils.KeepText
	}
	return &PostController{posts: posts, filter: filter}
}

// CreatePost stores a new post for the authenticated user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Text *string `json:"text" binding:"required"`
	}
	if !bindJSONLimited(ctx, &req, 40020, postTooLarge) {
		return
	}

	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	text := p.filter(*req.Text)
	if len(text) > models.MaxPostBytes {
		utils.Error(ctx, http.StatusBadRequest, 40021, postTooLargeDetail)
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), userID, text)
	if err != nil {
		if errors.Is(err, repository.ErrPostTooLarge) {
			utils.Error(ctx, http.StatusBadRequest, 40021, postTooLargeDetail)
			return
		}
		utils.InternalError(ctx, 50020, err)
		return
	}

	utils.Success(ctx, gin.H{
		"detail":  "Post created successfully",
		"post_id": post.ID,
	})
}

// ListPosts returns every post owned by the authenticated user.
func (p *PostController) ListPosts(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	posts, err := p.posts.ListByOwner(ctx.Request.Context(), userID)
	if err != nil {
		utils.InternalError(ctx, 50021, err)
		return
	}
	utils.Success(ctx, posts)
}

// GetPost returns one of the authenticated user's posts.
func (p *PostController) GetPost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}

	post, err := p.posts.FindByIDAndOwner(ctx.Request.Context(), postID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "Post not found")
		return
	}
	if err != nil {
		utils.InternalError(ctx, 50022, err)
		return
	}
	utils.Success(ctx, post)
}

// DeletePost removes one of the authenticated user's posts. Someone else's
// post is reported exactly like a missing one.
func (p *PostController) DeletePost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	postID, ok := parsePostID(ctx)
	if !ok {
		return
	}

	deleted, err := p.posts.DeleteByIDAndOwner(ctx.Request.Context(), postID, userID)
	if err != nil {
		utils.InternalError(ctx, 50023, err)
		return
	}
	if !deleted {
		utils.Error(ctx, http.StatusNotFound, 40401, "Post not found")
		return
	}
	utils.Success(ctx, gin.H{"detail": "Post deleted successfully"})
}

func parsePostID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("post_id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid post id")
		return 0, false
	}
	return uint(id), true
}
