package processor

import (
	"time"

	"github.com/rs/zerolog"

	"resume-match-go/internal/storage"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompDocumentextractor 设置文档提取器组件
func WithcompDocumentextractor(extractor DocumentExtractor) ComponentOpt {
	return func(c *Components) {
		c.DocumentExtractor = extractor
	}
}

// WithcompResumeparser 设置简历解析器组件
func WithcompResumeparser(parser ResumeParser) ComponentOpt {
	return func(c *Components) {
		c.ResumeParser = parser
	}
}

// WithcompJobparser 设置职位描述解析器组件
func WithcompJobparser(parser JobParser) ComponentOpt {
	return func(c *Components) {
		c.JobParser = parser
	}
}

// WithcompAtschecker 设置 ATS 检查器组件
func WithcompAtschecker(checker ATSChecker) ComponentOpt {
	return func(c *Components) {
		c.ATSChecker = checker
	}
}

// WithcompContentchecker 设置内容分析器组件
func WithcompContentchecker(checker ContentChecker) ComponentOpt {
	return func(c *Components) {
		c.ContentChecker = checker
	}
}

// WithcompScoreengine 设置评分引擎组件
func WithcompScoreengine(engine ScoreEngine) ComponentOpt {
	return func(c *Components) {
		c.ScoreEngine = engine
	}
}

// WithcompRecommender 设置建议引擎组件
func WithcompRecommender(recommender Recommender) ComponentOpt {
	return func(c *Components) {
		c.Recommender = recommender
	}
}

// WithcompStorage 设置存储组件
func WithcompStorage(storage *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = storage
	}
}

// ----- 设置选项 -----

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}

// WithsetTimelocation 设置时区
func WithsetTimelocation(loc *time.Location) SettingOpt {
	return func(s *Settings) {
		if loc != nil {
			s.TimeLocation = loc
		} else {
			s.TimeLocation = time.Local
		}
	}
}
