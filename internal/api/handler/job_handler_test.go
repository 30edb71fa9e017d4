package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestHandleCreateJobValidation(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	testCases := []struct {
		name string
		body string
	}{
		{name: "非法JSON", body: "{oops"},
		{name: "缺少标题", body: `{"job_description_text":"负责后端服务开发"}`},
		{name: "缺少JD文本", body: `{"job_title":"后端工程师"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := bytes.NewBufferString(tc.body)
			w := ut.PerformRequest(h.Engine, "POST", "/api/v1/jobs",
				&ut.Body{Body: body, Len: body.Len()},
				ut.Header{Key: "Content-Type", Value: "application/json"},
			)
			assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
		})
	}
}

func TestHandleRankCandidatesValidation(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "非法JSON", body: "{bad", want: "不是合法的JSON"},
		{name: "缺少候选人", body: `{"job_title":"后端工程师"}`, want: "candidates 不能为空"},
		{name: "候选人缺少简历文本", body: `{"candidates":[{"id":"c1","name":"张三"}]}`, want: "缺少 resume_text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := bytes.NewBufferString(tc.body)
			w := ut.PerformRequest(h.Engine, "POST", "/api/v1/candidates/rank",
				&ut.Body{Body: body, Len: body.Len()},
				ut.Header{Key: "Content-Type", Value: "application/json"},
			)
			resp := w.Result()
			assert.Equal(t, consts.StatusBadRequest, resp.StatusCode())
			assert.Contains(t, string(resp.Body()), tc.want)
		})
	}
}

func TestHandleRankCandidatesAdhoc(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	strong := "张三\n\n工作经历\n主导开发了订单系统，将响应耗时降低40%。\n负责支付网关重构，支撑日均100万笔交易。\n\n技能\nGo, MySQL, Redis, Kubernetes, Docker\n\n教育背景\n某大学 计算机科学 本科"
	weak := "李四\n做过一些项目。"

	req := map[string]interface{}{
		"candidates": []map[string]string{
			{"id": "cand-strong", "name": "张三", "resume_text": strong},
			{"id": "cand-weak", "name": "李四", "resume_text": weak},
		},
		"job_title":       "后端工程师",
		"job_description": "任职要求：\n1. 精通Go语言\n2. 熟悉MySQL与Redis\n3. 有Kubernetes经验者优先",
	}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	body := bytes.NewBuffer(raw)
	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/candidates/rank",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)

	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode(), string(resp.Body()))

	var result types.RankingResult
	require.NoError(t, json.Unmarshal(resp.Body(), &result))

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, 2, result.CohortSize)
	assert.NotEmpty(t, result.RankingID)

	// 内容充实的简历排在前面，名次与百分位满足定义
	assert.Equal(t, "cand-strong", result.Candidates[0].CandidateID)
	assert.Equal(t, 1, result.Candidates[0].Rank)
	assert.InDelta(t, 100.0, result.Candidates[0].Percentile, 1e-9)
	assert.Equal(t, 2, result.Candidates[1].Rank)
	assert.InDelta(t, 50.0, result.Candidates[1].Percentile, 1e-9)
	assert.Greater(t, result.Candidates[0].Scoring.OverallScore, result.Candidates[1].Scoring.OverallScore)

	for i, cand := range result.Candidates {
		assert.NotEmpty(t, cand.Hiring.Decision, fmt.Sprintf("candidate %d missing hiring decision", i))
	}
}

func TestJobRoutesRegistered(t *testing.T) {
	h := newTestServer(newTestConfig(""))

	// 未注册的路径应当404，已注册的校验失败路径返回400
	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/nonexistent", nil)
	assert.Equal(t, consts.StatusNotFound, w.Result().StatusCode())

	body := bytes.NewBufferString("{bad")
	w = ut.PerformRequest(h.Engine, "POST", "/api/v1/jobs",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
	assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
}
