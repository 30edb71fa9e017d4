package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// JDProcessor 负责岗位描述 (JD) 的结构化解析与缓存。
// 岗位创建或更新时解析一次，结果同时回填Redis，
// 分析与排序链路直接复用缓存，避免对同一JD的重复解析。
type JDProcessor struct {
	parser        JobParser
	storage       *storage.Storage
	parserVersion string
	logger        *log.Logger
}

// NewJDProcessor 创建一个新的 JDProcessor 实例。
// 它接受一个 JobParser 实现和可选的 JDOption 配置。
func NewJDProcessor(parser JobParser, storage *storage.Storage, parserVersion string, options ...JDOption) (*JDProcessor, error) {
	if parser == nil {
		return nil, fmt.Errorf("JobParser 不能为空")
	}
	if storage == nil {
		return nil, fmt.Errorf("Storage 不能为空")
	}
	if parserVersion == "" {
		return nil, fmt.Errorf("parserVersion 不能为空")
	}

	p := &JDProcessor{
		parser:        parser,
		storage:       storage,
		parserVersion: parserVersion,
		logger:        log.New(os.Stdout, "[JDProcessor] ", log.LstdFlags|log.Lshortfile),
	}

	for _, option := range options {
		option(p)
	}

	p.logger.Printf("JDProcessor 初始化完成，使用 Parser: %T, Version: %s", parser, parserVersion)
	return p, nil
}

// ParseAndCache 解析岗位描述并缓存结构化结果与原文。
// ctx: 上下文。
// jobID: 岗位ID，用于缓存键。
// title: 岗位名称，参与技能推断。
// jdText: 岗位描述的纯文本内容。
// 返回解析出的结构化要求和可能的错误。
func (p *JDProcessor) ParseAndCache(ctx context.Context, jobID string, title string, jdText string) (*types.JobRequirements, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID 不能为空")
	}
	if jdText == "" {
		return nil, fmt.Errorf("JD 文本不能为空")
	}

	reqs := p.parser.ParseJobDescription(title, jdText)
	p.logger.Printf("JD 解析完成 for JobID: %s，必备技能: %d，优先技能: %d", jobID, len(reqs.RequiredSkills), len(reqs.PreferredSkills))

	// 缓存失败不应阻塞主流程，但需要记录日志
	if data, err := json.Marshal(reqs); err == nil {
		if cacheErr := p.storage.Redis.SetJobRequirements(ctx, jobID, string(data)); cacheErr != nil {
			p.logger.Printf("将岗位要求存入 Redis 失败 for JobID: %s: %v", jobID, cacheErr)
		}
	}
	if cacheErr := p.storage.Redis.SetJobDescriptionText(ctx, jobID, jdText); cacheErr != nil {
		p.logger.Printf("将岗位描述原文存入 Redis 失败 for JobID: %s: %v", jobID, cacheErr)
	}

	return reqs, nil
}

// GetJobRequirements 返回岗位的结构化要求。
// 先尝试从 Redis 缓存获取，未命中或缓存损坏时重新解析并回填缓存。
func (p *JDProcessor) GetJobRequirements(ctx context.Context, jobID string, title string, jdText string) (*types.JobRequirements, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID 不能为空")
	}

	cached, err := p.storage.Redis.GetJobRequirements(ctx, jobID)
	if err == nil && cached != "" {
		var reqs types.JobRequirements
		if unmarshalErr := json.Unmarshal([]byte(cached), &reqs); unmarshalErr == nil {
			p.logger.Printf("从 Redis 缓存命中岗位要求 for JobID: %s", jobID)
			return &reqs, nil
		}
		p.logger.Printf("Redis 缓存中的岗位要求损坏 for JobID: %s，将重新解析", jobID)
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		// Redis读取本身出错，记录日志但继续执行，解析是核心路径
		p.logger.Printf("从 Redis 获取岗位要求失败 for JobID: %s, Error: %v. 将重新解析", jobID, err)
	}

	return p.ParseAndCache(ctx, jobID, title, jdText)
}
