package routes

import (
	"strings"

	"github.com/kataras/iris/v12"

	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

const (
	maxImageSize      = 5 << 20   // shop photos, review photos
	maxAttachmentSize = 200 << 20 // chat attachments (videos of the problem)
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true,
}

// UploadImage accepts a single image up to 5MB and returns its public URL.
func UploadImage(ctx iris.Context) {
	ctx.SetMaxRequestBodySize(maxImageSize + 1<<20)

	file, header, err := ctx.FormFile("file")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "File is required"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		ctx.StatusCode(iris.StatusRequestEntityTooLarge)
		ctx.JSON(iris.Map{"message": "Image exceeds the 5MB limit"})
		return
	}

	dot := strings.LastIndex(header.Filename, ".")
	if dot < 0 || !imageExtensions[strings.ToLower(header.Filename[dot:])] {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Unsupported image type"})
		return
	}

	url, err := storage.SaveUpload(file, header)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"url": url})
}

// UploadAttachment accepts chat attachments (image, video or pdf) up to
// 200MB and returns the public URL plus the detected kind.
func UploadAttachment(ctx iris.Context) {
	ctx.SetMaxRequestBodySize(maxAttachmentSize + 1<<20)

	file, header, err := ctx.FormFile("file")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "File is required"})
		return
	}
	defer file.Close()

	if header.Size > maxAttachmentSize {
		ctx.StatusCode(iris.StatusRequestEntityTooLarge)
		ctx.JSON(iris.Map{"message": "Attachment exceeds the 200MB limit"})
		return
	}

	kind := attachmentKind(header.Filename)
	if kind == "" {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Unsupported attachment type"})
		return
	}

	url, err := storage.SaveUpload(file, header)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"url": url, "type": kind})
}

func attachmentKind(filename string) string {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return ""
	}
	switch strings.ToLower(filename[dot:]) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic":
		return "image"
	case ".mp4", ".mov", ".webm":
		return "video"
	case ".pdf":
		return "pdf"
	default:
		return ""
	}
}
