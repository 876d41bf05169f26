package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// SaveUpload writes a multipart file to dest, creating the directory
// if needed. An existing file at dest is replaced.
func SaveUpload(file *multipart.FileHeader, dest string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
