package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"testing"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/scoring"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig 构造一个最小可用的配置，单文件上限1MB方便触发413
func newTestConfig(apiKey string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Address = ":0"
	cfg.Server.APIKey = apiKey
	cfg.Server.MaxUploadSizeMB = 1
	cfg.Analysis.RankCacheTTLMinutes = 10
	return cfg
}

// newTestServer 组装一个不连任何外部依赖的hertz引擎。
// 只覆盖校验路径与纯内存的同步分析，存储相关的处理器依赖留空。
func newTestServer(cfg *config.Config) *server.Hertz {
	pipeline := processor.NewResumeProcessor(processor.DefaultComponents(zerolog.Nop()), nil)
	rh := handler.NewResumeHandler(cfg, nil, pipeline, nil)
	jh := handler.NewJobHandler(cfg, nil, nil, scoring.NewRanker(pipeline))

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, cfg, rh, jh)
	return h
}

// buildResumeForm 构造multipart上传表单
func buildResumeForm(t *testing.T, fileName string, fileContent []byte, targetJobID, sourceChannel string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(fileContent)
	require.NoError(t, err)

	if targetJobID != "" {
		require.NoError(t, writer.WriteField("target_job_id", targetJobID))
	}
	if sourceChannel != "" {
		require.NoError(t, writer.WriteField("source_channel", sourceChannel))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestHandleResumeUploadMissingFile(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	body := bytes.NewBufferString("target_job_id=job-1")
	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"},
	)

	resp := w.Result()
	assert.Equal(t, consts.StatusBadRequest, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "文件未找到")
}

func TestHandleResumeUploadTooLarge(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	// 2MB内容超过配置的1MB上限
	oversized := bytes.Repeat([]byte("a"), 2*1024*1024)
	body, contentType := buildResumeForm(t, "big_resume.pdf", oversized, "", "")

	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	resp := w.Result()
	assert.Equal(t, consts.StatusRequestEntityTooLarge, resp.StatusCode())
}

func TestHandleAnalyzeSyncValidation(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	testCases := []struct {
		name string
		body string
	}{
		{name: "非法JSON", body: "{not json"},
		{name: "缺少简历文本", body: `{"job_title":"后端工程师"}`},
		{name: "空简历文本", body: `{"resume_text":""}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := bytes.NewBufferString(tc.body)
			w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze",
				&ut.Body{Body: body, Len: body.Len()},
				ut.Header{Key: "Content-Type", Value: "application/json"},
			)
			assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
		})
	}
}

func TestHandleAnalyzeSyncProducesReport(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	reqBody := map[string]string{
		"resume_text": "张三\n邮箱: zhangsan@example.com\n\n工作经历\n负责订单服务的架构设计，将接口耗时降低40%。\n主导开发了支付网关，支撑日均100万笔交易。\n\n技能\nGo, MySQL, Redis, Kubernetes\n\n教育背景\n某大学 计算机科学 本科",
		"job_title":   "后端工程师",
		"job_description": "任职要求：\n1. 精通Go语言开发\n2. 熟悉MySQL和Redis\n3. 有Kubernetes使用经验者优先",
	}
	raw, err := json.Marshal(reqBody)
	require.NoError(t, err)

	body := bytes.NewBuffer(raw)
	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)

	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode())

	var report struct {
		Scoring struct {
			OverallScore int    `json:"overall_score"`
			JobType      string `json:"job_type"`
			Confidence   string `json:"confidence"`
		} `json:"scoring"`
		ATS struct {
			OverallScore int `json:"overall_score"`
		} `json:"ats"`
		Content struct {
			OverallScore int `json:"overall_score"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &report))

	assert.GreaterOrEqual(t, report.Scoring.OverallScore, 0)
	assert.LessOrEqual(t, report.Scoring.OverallScore, 100)
	assert.NotEmpty(t, report.Scoring.JobType)
	assert.NotEmpty(t, report.Scoring.Confidence)
	assert.GreaterOrEqual(t, report.ATS.OverallScore, 0)
	assert.LessOrEqual(t, report.ATS.OverallScore, 100)
	assert.GreaterOrEqual(t, report.Content.OverallScore, 0)
	assert.LessOrEqual(t, report.Content.OverallScore, 100)
}

func TestHandleAnalyzeDocumentMissingFile(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	body := bytes.NewBufferString("")
	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze/document",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"},
	)

	assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
}

func TestHandleAnalyzeDocumentPlainText(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	content := []byte("李四\n\n工作经历\n开发了内部监控平台，告警准确率提升30%。\n\n技能\nGo, Prometheus")
	body, contentType := buildResumeForm(t, "resume.txt", content, "", "")

	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze/document",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode())

	var report struct {
		Scoring struct {
			OverallScore int `json:"overall_score"`
		} `json:"scoring"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &report))
	assert.GreaterOrEqual(t, report.Scoring.OverallScore, 0)
	assert.LessOrEqual(t, report.Scoring.OverallScore, 100)
}

func TestHealthCheckBypassesAuth(t *testing.T) {
	h := newTestServer(newTestConfig("secret-key"))

	w := ut.PerformRequest(h.Engine, "GET", "/health", nil)

	resp := w.Result()
	assert.Equal(t, consts.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "ok")
}

func TestAPIKeyAuth(t *testing.T) {
	h := newTestServer(newTestConfig("secret-key"))

	invalidJSON := "{not json"

	t.Run("缺少APIKey", func(t *testing.T) {
		body := bytes.NewBufferString(invalidJSON)
		w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze",
			&ut.Body{Body: body, Len: body.Len()},
			ut.Header{Key: "Content-Type", Value: "application/json"},
		)
		assert.Equal(t, consts.StatusUnauthorized, w.Result().StatusCode())
	})

	t.Run("错误的APIKey", func(t *testing.T) {
		body := bytes.NewBufferString(invalidJSON)
		w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze",
			&ut.Body{Body: body, Len: body.Len()},
			ut.Header{Key: "Content-Type", Value: "application/json"},
			ut.Header{Key: "Authorization", Value: "Bearer wrong-key"},
		)
		assert.Equal(t, consts.StatusUnauthorized, w.Result().StatusCode())
	})

	t.Run("正确的APIKey放行到处理器", func(t *testing.T) {
		body := bytes.NewBufferString(invalidJSON)
		w := ut.PerformRequest(h.Engine, "POST", "/api/v1/analyze",
			&ut.Body{Body: body, Len: body.Len()},
			ut.Header{Key: "Content-Type", Value: "application/json"},
			ut.Header{Key: "Authorization", Value: "Bearer secret-key"},
		)
		// 鉴权通过后由处理器返回400，说明请求已到达业务逻辑
		assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
	})
}
