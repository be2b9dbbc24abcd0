package routes

import (
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type ForumPostInput struct {
	Title string   `json:"title" validate:"required,max=256"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags"`
}

func CreateForumPost(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input ForumPostInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	post := models.ForumPost{
		UserID: userID,
		Title:  input.Title,
		Body:   input.Body,
		Tags:   marshalJSON(input.Tags),
	}
	if err := storage.DB.Create(&post).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(post)
}

func ListForumPosts(ctx iris.Context) {
	query := storage.DB.Preload("User")
	if q := ctx.URLParam("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("title ILIKE ? OR body ILIKE ?", pattern, pattern)
	}

	var posts []models.ForumPost
	if err := query.Order("created_at DESC").Limit(50).Find(&posts).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": posts})
}

func GetForumPost(ctx iris.Context) {
	postID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var post models.ForumPost
	if err := storage.DB.Preload("User").Preload("Comments").Preload("Comments.User").
		First(&post, postID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(post)
}

type ForumCommentInput struct {
	Body string `json:"body" validate:"required"`
}

func CommentOnForumPost(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	postID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var post models.ForumPost
	if err := storage.DB.First(&post, postID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input ForumCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	comment := models.ForumComment{
		PostID: post.ID,
		UserID: userID,
		Body:   input.Body,
	}
	if err := storage.DB.Create(&comment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(comment)
}

func LikeForumPost(ctx iris.Context) {
	postID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	result := storage.DB.Model(&models.ForumPost{}).Where("id = ?", postID).
		Update("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

func DeleteForumPost(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role := ctx.Values().Get("role").(models.Role)
	postID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var post models.ForumPost
	if err := storage.DB.First(&post, postID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if post.UserID != userID && role != models.RoleAdmin {
		utils.CreateForbidden(ctx)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.ForumComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}
