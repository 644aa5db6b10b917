package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"quietseed/internal/content"
	"quietseed/internal/errors"
	"quietseed/internal/model"
	"quietseed/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// UpdatePostRequest is a partial post payload. publishedAt accepts an ISO
// date or epoch milliseconds, categoryId a number or numeric string and
// featured a boolean or "true"/"false".
type UpdatePostRequest struct {
	Title       *string     `json:"title" validate:"omitempty,max=255"`
	Slug        *string     `json:"slug" validate:"omitempty,max=255"`
	Content     *string     `json:"content"`
	Excerpt     *string     `json:"excerpt"`
	ImageURL    *string     `json:"imageUrl" validate:"omitempty,max=2048"`
	PublishedAt interface{} `json:"publishedAt" swaggertype:"string" example:"2023-06-12T00:00:00Z"`
	CategoryID  interface{} `json:"categoryId" swaggertype:"integer"`
	AuthorID    *uint       `json:"authorId"`
	Featured    interface{} `json:"featured" swaggertype:"boolean"`
}

// CreatePostRequest is a full post payload.
type CreatePostRequest struct {
	Title       *string     `json:"title" validate:"required,min=1,max=255"`
	Slug        *string     `json:"slug" validate:"omitempty,max=255"`
	Content     *string     `json:"content" validate:"required"`
	Excerpt     *string     `json:"excerpt" validate:"required"`
	ImageURL    *string     `json:"imageUrl" validate:"omitempty,max=2048"`
	PublishedAt interface{} `json:"publishedAt" validate:"required" swaggertype:"string" example:"2023-06-12T00:00:00Z"`
	CategoryID  interface{} `json:"categoryId" swaggertype:"integer"`
	AuthorID    *uint       `json:"authorId"`
	Featured    interface{} `json:"featured" swaggertype:"boolean"`
}

func (r UpdatePostRequest) toInput() model.PostInput {
	return model.PostInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		ImageURL:    r.ImageURL,
		PublishedAt: r.PublishedAt,
		CategoryID:  r.CategoryID,
		AuthorID:    r.AuthorID,
		Featured:    r.Featured,
	}
}

func (r CreatePostRequest) toInput() model.PostInput {
	return UpdatePostRequest(r).toInput()
}

// ListPosts godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} model.Post
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.postService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetFeaturedPost godoc
// @Summary Get the featured post
// @Description First post flagged featured, otherwise the most recently published one.
// @Tags posts
// @Produce json
// @Success 200 {object} model.PostWithDetails
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/featured [get]
func (h *PostHandler) GetFeaturedPost(c echo.Context) error {
	post, err := h.postService.Featured(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPost godoc
// @Summary Get a post by id or slug
// @Description A numeric parameter is an id and returns the plain post; anything else is a slug and returns the detail view.
// @Tags posts
// @Produce json
// @Param idOrSlug path string true "Post ID or slug"
// @Success 200 {object} model.PostWithDetails
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{idOrSlug} [get]
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	ident := content.ParseIDOrSlug(c.Param("idOrSlug"))

	if ident.IsID {
		post, err := h.postService.GetByID(ctx, ident.ID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, post)
	}

	post, err := h.postService.GetBySlug(ctx, ident.Slug)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// SearchPosts godoc
// @Summary Search posts
// @Description Case-insensitive match on title, content or excerpt. An empty query lists every post.
// @Tags posts
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {array} model.Post
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/search [get]
func (h *PostHandler) SearchPosts(c echo.Context) error {
	posts, err := h.postService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Search godoc
// @Summary Search posts (query required)
// @Tags posts
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /search [get]
func (h *PostHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return badRequest("search query is required", "QUERY_REQUIRED")
	}
	return h.SearchPosts(c)
}

// PostsByCategory godoc
// @Summary List posts in a category
// @Description "all" lists every post unless a category owns that slug. Unknown slugs give an empty list.
// @Tags posts
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {array} model.Post
// @Failure 500 {object} errors.ErrorResponse
// @Router /category/{slug} [get]
func (h *PostHandler) PostsByCategory(c echo.Context) error {
	posts, err := h.postService.ByCategory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// CreatePost godoc
// @Summary Create a post
// @Description The slug is derived from the title when omitted and authorId defaults to the caller.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := req.toInput()
	if input.AuthorID == nil {
		claims := currentClaims(c)
		if claims == nil {
			return respondError(c, errors.ErrUnauthorized)
		}
		input.AuthorID = &claims.UserID
	}

	post, err := h.postService.Create(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Partially update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.Update(c.Request().Context(), id, req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	if err := h.postService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "post deleted successfully"})
}
