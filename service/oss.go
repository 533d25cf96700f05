package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"lovesong-server/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var MinioClient *minio.Client

// InitMinIO 初始化连接，在 main.go 中调用
func InitMinIO() {
	cfg := config.AppConfig.MinIO
	var err error
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatalf("MinIO 初始化失败: %v", err)
	}
	log.Println("MinIO 连接成功")
}

// Uploader 对象存储客户端。不同对象名之间可并发调用
type Uploader interface {
	UploadLyrics(ctx context.Context, lyrics, title, workID string) (url, key string, err error)
	UploadFromURL(ctx context.Context, srcURL, objectName string) (url string, size int64, err error)
}

// MinIOStorage 实现 Uploader，所有作品产物统一走这一个客户端
type MinIOStorage struct{}

func NewMinIOStorage() *MinIOStorage {
	return &MinIOStorage{}
}

// UploadLyrics 把歌词文本存为 lyrics/<workID>/<ts>_<title>.txt
func (s *MinIOStorage) UploadLyrics(ctx context.Context, lyrics, title, workID string) (string, string, error) {
	objectName := fmt.Sprintf("lyrics/%s/%d_%s.txt", workID, time.Now().UnixMilli(), sanitizeFileName(title))
	data := []byte(lyrics)

	fileURL, err := uploadToMinIO(ctx, bytes.NewReader(data), objectName, int64(len(data)), "text/plain; charset=utf-8")
	if err != nil {
		return "", "", err
	}
	return fileURL, objectName, nil
}

// UploadFromURL 下载外部资源并转存到 MinIO，返回可访问 URL 和字节数
func (s *MinIOStorage) UploadFromURL(ctx context.Context, srcURL, objectName string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download status: %d", resp.StatusCode)
	}

	fileURL, err := uploadToMinIO(ctx, resp.Body, objectName, resp.ContentLength, contentTypeFor(objectName))
	if err != nil {
		return "", 0, err
	}

	size := resp.ContentLength
	if size < 0 {
		// 上游没给 Content-Length 时以实际写入为准
		stat, err := MinioClient.StatObject(ctx, config.AppConfig.MinIO.Bucket, objectName, minio.StatObjectOptions{})
		if err == nil {
			size = stat.Size
		}
	}
	return fileURL, size, nil
}

func uploadToMinIO(ctx context.Context, reader io.Reader, objectName string, size int64, contentType string) (string, error) {
	cfg := config.AppConfig.MinIO
	bucketName := cfg.Bucket

	// 确保 Bucket 存在
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return "", fmt.Errorf("检查 Bucket 失败: %w", err)
	}
	if !exists {
		if err := MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("创建 Bucket 失败: %w", err)
		}
		log.Printf("Bucket '%s' 已创建", bucketName)
	}

	_, err = MinioClient.PutObject(ctx, bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传到 MinIO 失败: %w", err)
	}

	// 生成预签名 URL（72小时有效期）
	expiry := time.Hour * 72
	reqParams := make(url.Values)
	presignedURL, err := MinioClient.PresignedGetObject(ctx, bucketName, objectName, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("生成签名 URL 失败: %w", err)
	}

	log.Printf("文件已上传: %s", objectName)
	return presignedURL.String(), nil
}

// contentTypeFor 根据文件扩展名确定 ContentType
func contentTypeFor(objectName string) string {
	switch filepath.Ext(objectName) {
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}

// sanitizeFileName 对象名里只保留字母、数字和下划线
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
