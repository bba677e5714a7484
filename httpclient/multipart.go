// httpclient/multipart.go
package httpclient

import (
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fossabot/wechat-1/logger"
	"go.uber.org/zap"
)

// uploadParts orders an upload as one file part per entry of files followed by one field part per
// entry of form. Keys are sorted within each group.
func uploadParts(files, form map[string]string) []MultipartPart {
	parts := make([]MultipartPart, 0, len(files)+len(form))
	for _, name := range sortedKeys(files) {
		parts = append(parts, MultipartPart{Name: name, FilePath: files[name]})
	}
	for _, name := range sortedKeys(form) {
		parts = append(parts, MultipartPart{Name: name, Contents: form[name]})
	}
	return parts
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkMultipartFiles fails fast on files that cannot be uploaded, before any bytes are sent.
func checkMultipartFiles(parts []MultipartPart) error {
	for _, part := range parts {
		if part.FilePath == "" {
			continue
		}
		info, err := os.Stat(part.FilePath)
		if err != nil {
			return fmt.Errorf("cannot upload %q for field %q: %w", part.FilePath, part.Name, err)
		}
		if info.IsDir() {
			return fmt.Errorf("cannot upload %q for field %q: is a directory", part.FilePath, part.Name)
		}
	}
	return nil
}

// newMultipartBody streams parts through a pipe. The returned reader must be consumed or closed;
// closing it stops the writer goroutine.
func newMultipartBody(parts []MultipartPart, log logger.Logger) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(writer, parts, log)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType()
}

func writeMultipart(writer *multipart.Writer, parts []MultipartPart, log logger.Logger) error {
	for _, part := range parts {
		if part.FilePath == "" {
			if err := writer.WriteField(part.Name, part.Contents); err != nil {
				return err
			}
			continue
		}
		if err := writeFilePart(writer, part, log); err != nil {
			return err
		}
	}
	return nil
}

func writeFilePart(writer *multipart.Writer, part MultipartPart, log logger.Logger) error {
	file, err := os.Open(part.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", part.FilePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", part.FilePath, err)
	}

	w, err := writer.CreateFormFile(part.Name, filepath.Base(part.FilePath))
	if err != nil {
		return err
	}

	return trackUploadProgress(file, w, info.Size(), log)
}

// trackUploadProgress copies file into writer, logging each whole percent of progress at debug level.
func trackUploadProgress(file io.Reader, writer io.Writer, totalSize int64, log logger.Logger) error {
	buffer := make([]byte, 32*1024)
	var uploadedSize int64
	lastLoggedPercentage := -1.0
	startTime := time.Now()

	for {
		n, err := file.Read(buffer)
		if n > 0 {
			if _, werr := writer.Write(buffer[:n]); werr != nil {
				return werr
			}
			uploadedSize += int64(n)

			if totalSize > 0 {
				percentage := math.Floor(float64(uploadedSize) / float64(totalSize) * 100)
				if percentage != lastLoggedPercentage {
					log.Debug("File upload progress",
						zap.String("completed", fmt.Sprintf("%.0f%%", percentage)),
						zap.Float64("uploaded_megabytes", float64(uploadedSize)/(1024*1024)),
						zap.Duration("elapsed_time", time.Since(startTime)))
					lastLoggedPercentage = percentage
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	log.Debug("File upload completed",
		zap.Float64("total_uploaded_megabytes", float64(uploadedSize)/(1024*1024)),
		zap.Duration("total_upload_time", time.Since(startTime)))
	return nil
}
