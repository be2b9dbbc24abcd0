package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploaded files live on local disk under UPLOAD_DIR and are served back at
// /uploads/<name>. Size caps are enforced by the upload routes.

const defaultUploadDir = "./uploads"

func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return defaultUploadDir
}

func InitializeUploadDir() {
	if err := os.MkdirAll(UploadDir(), 0o755); err != nil {
		panic("cannot create upload dir: " + err.Error())
	}
}

// SaveUpload writes a multipart file under the upload dir with a
// uuid-prefixed name and returns the public /uploads path.
func SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := fmt.Sprintf("%s%s", uuid.NewString(), ext)

	dst, err := os.Create(filepath.Join(UploadDir(), name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
