package models

import (
	"encoding/json"
	"time"

	"resume-match-go/internal/types"

	"gorm.io/datatypes"
)

// ToAnalysisReport 将数据库模型转换为领域模型
// 简历原文与分段不随分析行存储，返回的报告中 Resume 字段为零值。
func (r *ResumeAnalysis) ToAnalysisReport() *types.AnalysisReport {
	report := &types.AnalysisReport{}

	// 解析JSON字段
	if len(r.CategoryScoresJSON) > 0 {
		_ = json.Unmarshal(r.CategoryScoresJSON, &report.Scoring)
	}
	if len(r.ATSReportJSON) > 0 {
		_ = json.Unmarshal(r.ATSReportJSON, &report.ATS)
	}
	if len(r.ContentReportJSON) > 0 {
		_ = json.Unmarshal(r.ContentReportJSON, &report.Content)
	}
	if len(r.RecommendationsJSON) > 0 {
		_ = json.Unmarshal(r.RecommendationsJSON, &report.Recommendations)
	}

	// 列回填，JSON缺失时以列值为准
	if r.OverallScore != nil {
		report.Scoring.OverallScore = *r.OverallScore
	}
	if report.Scoring.JobType == "" {
		report.Scoring.JobType = r.JobTypeDetected
	}
	if report.Scoring.Confidence == "" {
		report.Scoring.Confidence = r.Confidence
	}

	return report
}

// FromAnalysisReport 从领域模型创建数据库模型
func (r *ResumeAnalysis) FromAnalysisReport(report *types.AnalysisReport, analyzedAt time.Time) error {
	if report == nil {
		return nil
	}

	// 填充基本字段
	score := report.Scoring.OverallScore
	r.OverallScore = &score
	r.JobTypeDetected = report.Scoring.JobType
	r.Confidence = report.Scoring.Confidence
	r.AnalyzedAt = &analyzedAt

	// 转换结构体为JSON
	if jsonBytes, err := json.Marshal(report.Scoring); err == nil {
		r.CategoryScoresJSON = datatypes.JSON(jsonBytes)
	}
	if jsonBytes, err := json.Marshal(report.ATS); err == nil {
		r.ATSReportJSON = datatypes.JSON(jsonBytes)
	}
	if jsonBytes, err := json.Marshal(report.Content); err == nil {
		r.ContentReportJSON = datatypes.JSON(jsonBytes)
	}
	if jsonBytes, err := json.Marshal(report.Recommendations); err == nil {
		r.RecommendationsJSON = datatypes.JSON(jsonBytes)
	}

	return nil
}
