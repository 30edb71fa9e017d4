package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Candidate 候选人主表
type Candidate struct {
	CandidateID     string    `gorm:"type:char(36);primaryKey"`
	PrimaryName     string    `gorm:"type:varchar(255)"`
	PrimaryPhone    string    `gorm:"type:varchar(50);uniqueIndex:idx_candidates_primary_phone_unique"`
	PrimaryEmail    string    `gorm:"type:varchar(255);uniqueIndex:idx_candidates_primary_email_unique"`
	CurrentLocation string    `gorm:"type:varchar(255)"`
	ProfileSummary  string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// Job 岗位信息表
type Job struct {
	JobID                      string         `gorm:"type:char(36);primaryKey"`
	JobTitle                   string         `gorm:"type:varchar(255);not null"`
	Department                 string         `gorm:"type:varchar(255)"`
	Location                   string         `gorm:"type:varchar(255)"`
	JobDescriptionText         string         `gorm:"type:text;not null"`
	JobType                    string         `gorm:"type:varchar(50);index:idx_jobs_job_type"` // technical/management/creative/general
	StructuredRequirementsJSON datatypes.JSON `gorm:"type:json"`
	JDSkillsKeywordsJSON       datatypes.JSON `gorm:"type:json"`
	Status                     string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_jobs_status"`
	CreatedByUserID            string         `gorm:"type:char(36)"`
	CreatedAt                  time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt                  time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// ResumeSubmission 简历提交/快照表
type ResumeSubmission struct {
	SubmissionUUID      string         `gorm:"type:char(36);primaryKey"`
	CandidateID         *string        `gorm:"type:char(36);index:idx_rs_candidate_id"` // 可空，候选人归并后回填
	SubmissionTimestamp time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string         `gorm:"type:varchar(100)"`
	TargetJobID         *string        `gorm:"type:char(36);index:idx_rs_target_job_id"` // 可空，允许无岗位上下文的投递
	OriginalFilename    string         `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string         `gorm:"type:varchar(1024)"`
	ParsedTextPathOSS   string         `gorm:"type:varchar(1024)"`
	RawFileMD5          string         `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	ParsedTextMD5       string         `gorm:"type:char(32);index:idx_rs_parsed_text_md5"`
	ParsedBasicInfoJSON datatypes.JSON `gorm:"type:json"`
	ProcessingStatus    string         `gorm:"type:varchar(50);default:'PENDING_PARSING';index:idx_rs_processing_status"`
	ParserVersion       string         `gorm:"type:varchar(50)"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Job       *Job       `gorm:"foreignKey:TargetJobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// ResumeAnalysis 简历分析结果表
// JobID 允许为空字符串，表示无岗位上下文的通用分析；
// (submission_uuid, job_id) 唯一键使同一份简历对同一岗位的重复分析落为更新。
type ResumeAnalysis struct {
	AnalysisID          uint64         `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID      string         `gorm:"type:char(36);not null;index:idx_ra_submission_uuid;uniqueIndex:idx_ra_submission_job_unique,priority:1"`
	JobID               string         `gorm:"type:char(36);not null;default:'';index:idx_ra_job_id_overall_score,priority:1;uniqueIndex:idx_ra_submission_job_unique,priority:2"`
	OverallScore        *int           `gorm:"type:int;index:idx_ra_job_id_overall_score,priority:2"`
	JobTypeDetected     string         `gorm:"type:varchar(50)"`
	Confidence          string         `gorm:"type:varchar(20)"` // high/medium/low
	CategoryScoresJSON  datatypes.JSON `gorm:"type:json"`
	ATSReportJSON       datatypes.JSON `gorm:"type:json"`
	ContentReportJSON   datatypes.JSON `gorm:"type:json"`
	RecommendationsJSON datatypes.JSON `gorm:"type:json"`
	AnalysisStatus      string         `gorm:"type:varchar(50);default:'PENDING';index:idx_ra_analysis_status"`
	AnalyzedAt          *time.Time     `gorm:"type:datetime(6)"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	ResumeSubmission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ResumeAnalysis) TableName() string {
	return "resume_analyses"
}

// StringToJSON StringToJSON Helper function to convert string to datatypes.JSON
func StringToJSON(s string) datatypes.JSON {
	return datatypes.JSON(s)
}

// StringMapToJSON Helper function to convert map[string]string to datatypes.JSON
func StringMapToJSON(m map[string]string) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
