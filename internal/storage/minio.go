package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"resume-match-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadFile 上传文件到指定路径
	UploadFile(ctx context.Context, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error)

	// DownloadFile 下载文件
	DownloadFile(ctx context.Context, objectName string) ([]byte, error)

	// GetPresignedURL 获取预签名URL
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)

	// DeleteFile 删除文件
	DeleteFile(ctx context.Context, objectName string) error

	// 简历特定操作
	UploadParsedText(ctx context.Context, submissionUUID string, text string) (string, error)
	GetResumeFile(ctx context.Context, objectName string) ([]byte, error)
	GetParsedText(ctx context.Context, objectName string) (string, error)

	// 流式上传并计算MD5
	UploadResumeFileStreaming(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	logger         *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, originalBucket: %s, parsedBucket: %s", cfg.Endpoint, cfg.OriginalsBucket, cfg.ParsedTextBucket)

	// 创建MinIO客户端
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	// 设置存储桶名称
	originalBucket := cfg.OriginalsBucket
	if originalBucket == "" {
		originalBucket = "originals" // 默认值
	}

	parsedBucket := cfg.ParsedTextBucket
	if parsedBucket == "" {
		parsedBucket = "parsed-text" // 默认值
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: originalBucket,
		parsedBucket:   parsedBucket,
		logger:         logger,
	}

	// 确保存储桶存在
	err = m.ensureBucketExists(originalBucket, cfg.Location)
	if err != nil {
		logger.Printf("[MinIO] Failed to ensure original bucket %s exists: %v", originalBucket, err)
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", originalBucket, err)
	}

	err = m.ensureBucketExists(parsedBucket, cfg.Location)
	if err != nil {
		logger.Printf("[MinIO] Failed to ensure parsed bucket %s exists: %v", parsedBucket, err)
		return nil, fmt.Errorf("确保解析文本存储桶 %s 存在失败: %w", parsedBucket, err)
	}

	// 设置生命周期规则
	if cfg.OriginalFileExpireDays > 0 || cfg.ParsedTextExpireDays > 0 {
		err = m.setupLifecycleRules(context.Background())
		if err != nil {
			logger.Printf("[MinIO] Warning: Failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// testLogf 仅在启用测试日志时输出详细操作记录
func (m *MinIO) testLogf(format string, v ...interface{}) {
	if (m.cfg.EnableTestLogging || minioTestLoggingEnabled()) && m.logger != nil && m.logger.Writer() != io.Discard {
		m.logger.Printf(format, v...)
	}
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	m.logger.Printf("[MinIO] Ensuring bucket exists: %s (Location: %s)", bucketName, location)
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		m.logger.Printf("[MinIO] Error checking if bucket %s exists: %v", bucketName, err)
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			m.logger.Printf("[MinIO] Error creating bucket %s: %v", bucketName, err)
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	} else {
		m.logger.Printf("[MinIO] Bucket %s already exists.", bucketName)
	}
	return nil
}

// setupLifecycleRules 设置对象生命周期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	m.logger.Printf("[MinIO] Setting up lifecycle rules...")
	if m.cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", m.cfg.OriginalFileExpireDays); err != nil {
			return fmt.Errorf("为原始文件存储桶 %s 设置生命周期失败: %w", m.originalBucket, err)
		}
	}
	if m.cfg.ParsedTextExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.parsedBucket, "expire-parsed-text", m.cfg.ParsedTextExpireDays); err != nil {
			return fmt.Errorf("为解析文本存储桶 %s 设置生命周期失败: %w", m.parsedBucket, err)
		}
	}
	m.logger.Printf("[MinIO] Lifecycle rules setup completed.")
	return nil
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	m.logger.Printf("[MinIO] Setting lifecycle rule for bucket %s: ID=%s, ExpiryDays=%d", bucketName, ruleID, expiryDays)
	config := lifecycle.NewConfiguration()
	config.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}

	err := m.client.SetBucketLifecycle(ctx, bucketName, config)
	if err != nil {
		m.logger.Printf("[MinIO] Error setting lifecycle for bucket %s: %v", bucketName, err)
		return err
	}
	m.logger.Printf("[MinIO] Successfully set lifecycle for bucket %s.", bucketName)
	return nil
}

// UploadFile 上传文件到指定路径
// objectName 可以带 "bucket/key" 前缀指定目标桶，否则默认上传到原始简历桶。
func (m *MinIO) UploadFile(ctx context.Context, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	bucketToUse := m.originalBucket
	actualObjectName := objectName
	if strings.Contains(objectName, "/") {
		parts := strings.SplitN(objectName, "/", 2)
		if len(parts) == 2 {
			// 只接受已配置的桶名，避免通过objectName意外指定未知桶
			if parts[0] == m.originalBucket || parts[0] == m.parsedBucket {
				bucketToUse = parts[0]
				actualObjectName = parts[1]
			}
		}
	}

	m.testLogf("[MinIO-UploadFile] Attempting to upload: ObjectName='%s', FileSize=%d, ContentType='%s', Bucket='%s'", actualObjectName, fileSize, contentType, bucketToUse)

	uploadInfo, err := m.client.PutObject(ctx, bucketToUse, actualObjectName, reader, fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		m.testLogf("[MinIO-UploadFile] Error uploading %s: %v", actualObjectName, err)
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", bucketToUse, actualObjectName, err)
	}

	m.testLogf("[MinIO-UploadFile] Successfully uploaded %s, ETag: %s, Size: %d", actualObjectName, uploadInfo.ETag, uploadInfo.Size)
	return actualObjectName, nil
}

// UploadParsedText 上传解析后的文本到MinIO
func (m *MinIO) UploadParsedText(ctx context.Context, submissionUUID string, text string) (string, error) {
	objectName := fmt.Sprintf("resume/%s/parsed_text.txt", submissionUUID)

	m.testLogf("[MinIO-UploadParsedText] Uploading: SubmissionUUID='%s', ObjectName='%s', Bucket='%s', TextLength=%d", submissionUUID, objectName, m.parsedBucket, len(text))

	prefixed := fmt.Sprintf("%s/%s", m.parsedBucket, objectName)
	if _, err := m.UploadFile(ctx, prefixed, strings.NewReader(text), int64(len(text)), "text/plain"); err != nil {
		m.testLogf("[MinIO-UploadParsedText] Error uploading parsed text for %s: %v", submissionUUID, err)
		return "", fmt.Errorf("上传解析文本 %s 到存储桶 %s 失败: %w", objectName, m.parsedBucket, err)
	}
	m.testLogf("[MinIO-UploadParsedText] Successfully uploaded parsed text for %s to %s", submissionUUID, objectName)
	return objectName, nil
}

// DownloadFile 下载文件
// objectName 可以带 "bucket/key" 前缀，否则默认从原始简历桶读取。
func (m *MinIO) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	bucketName := m.originalBucket
	actualObjectName := objectName

	if strings.Contains(objectName, "/") {
		parts := strings.SplitN(objectName, "/", 2)
		if len(parts) == 2 {
			if parts[0] == m.originalBucket || parts[0] == m.parsedBucket {
				bucketName = parts[0]
				actualObjectName = parts[1]
			}
		}
	}

	m.testLogf("[MinIO-DownloadFile] Downloading: ObjectName='%s', Bucket='%s'", actualObjectName, bucketName)

	obj, err := m.client.GetObject(ctx, bucketName, actualObjectName, minio.GetObjectOptions{})
	if err != nil {
		m.testLogf("[MinIO-DownloadFile] Error getting object %s: %v", actualObjectName, err)
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, actualObjectName, err)
	}
	defer obj.Close()

	// 检查对象状态，这对于了解对象是否存在或是否有权限访问很有用
	stat, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, actualObjectName, err)
	}
	m.testLogf("[MinIO-DownloadFile] Object %s/%s stats: Size=%d, ContentType=%s", bucketName, actualObjectName, stat.Size, stat.ContentType)

	data, err := io.ReadAll(obj)
	if err != nil {
		m.testLogf("[MinIO-DownloadFile] Error reading object data for %s: %v", actualObjectName, err)
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, actualObjectName, err)
	}
	m.testLogf("[MinIO-DownloadFile] Successfully downloaded %d bytes from %s/%s.", len(data), bucketName, actualObjectName)
	return data, nil
}

// GetResumeFile 从MinIO获取简历文件
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	m.testLogf("[MinIO-GetResumeFile] Getting: ObjectKey='%s', Bucket='%s'", objectKey, m.originalBucket)
	return m.DownloadFile(ctx, fmt.Sprintf("%s/%s", m.originalBucket, objectKey))
}

// GetParsedText 从MinIO获取解析后的文本
func (m *MinIO) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	m.testLogf("[MinIO-GetParsedText] Getting: ObjectKey='%s', Bucket='%s'", objectKey, m.parsedBucket)

	data, err := m.DownloadFile(ctx, fmt.Sprintf("%s/%s", m.parsedBucket, objectKey))
	if err != nil {
		return "", err // DownloadFile already formats the error
	}
	text := string(data)
	m.testLogf("[MinIO-GetParsedText] Successfully downloaded parsed text %s, Size: %d bytes", objectKey, len(text))
	return text, nil
}

// GetPresignedURL 获取预签名URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	bucketName := m.originalBucket // 预签名URL主要用于原始存储桶

	m.testLogf("[MinIO-GetPresignedURL] Generating for: ObjectName='%s', Bucket='%s', Expiry=%s", objectName, bucketName, expiry)

	presignedURL, err := m.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		m.testLogf("[MinIO-GetPresignedURL] Error generating for %s: %v", objectName, err)
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// DeleteFile 删除文件
func (m *MinIO) DeleteFile(ctx context.Context, objectName string) error {
	bucketName := m.originalBucket

	m.testLogf("[MinIO-DeleteFile] Deleting: ObjectName='%s', Bucket='%s'", objectName, bucketName)

	err := m.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		m.testLogf("[MinIO-DeleteFile] Error deleting %s: %v", objectName, err)
		return fmt.Errorf("删除对象 %s 失败: %w", objectName, err)
	}
	m.testLogf("[MinIO-DeleteFile] Successfully deleted %s", objectName)
	return nil
}

// 获取内容类型
func getContentType(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// 通过环境变量强制开启测试日志
func minioTestLoggingEnabled() bool {
	return os.Getenv("RESUME_MATCH_MINIO_TEST_LOGGING") == "true"
}

// UploadResumeFileStreaming 流式上传简历文件并同时计算MD5
// 返回: objectKey, md5Hex, error
func (m *MinIO) UploadResumeFileStreaming(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	objectName := fmt.Sprintf("resume/%s/original%s", submissionUUID, fileExt)
	contentType := getContentType(fileExt)

	// 创建MD5哈希计算器
	md5Hash := md5.New()

	// 使用TeeReader同时读取到哈希计算器
	teeReader := io.TeeReader(reader, md5Hash)

	m.testLogf("[MinIO-UploadResumeFileStreaming] Uploading: SubmissionUUID='%s', FileExt='%s', ObjectName='%s', Bucket='%s'",
		submissionUUID, fileExt, objectName, m.originalBucket)

	// 将文件流式上传到MinIO
	info, err := m.client.PutObject(ctx, m.originalBucket, objectName, teeReader,
		fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("流式上传文件到MinIO失败: %w", err)
	}

	// 计算MD5哈希值
	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))

	m.testLogf("[MinIO-UploadResumeFileStreaming] Successfully uploaded %s, ETag: %s, Size: %d, MD5: %s",
		objectName, info.ETag, info.Size, md5Hex)

	return objectName, md5Hex, nil
}
