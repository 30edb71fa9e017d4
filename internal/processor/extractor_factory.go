package processor

import (
	"log"
	"os"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/parser"

	"github.com/rs/zerolog"
)

// BuildDocumentExtractor 统一构建文档提取器的逻辑。
// 配置了Tika服务器时走Tika提取，否则使用进程内提取器。
func BuildDocumentExtractor(cfg *config.Config, lg zerolog.Logger) DocumentExtractor {
	if cfg != nil && cfg.Tika.Type == "tika" && cfg.Tika.ServerURL != "" {
		lg.Info().Str("server_url", cfg.Tika.ServerURL).Msg("检测到Tika配置，使用Tika文档提取器")

		stdLogger := log.New(os.Stdout, "[TikaDoc] ", log.LstdFlags)
		tikaOptions := []parser.TikaOption{
			parser.WithTikaLogger(stdLogger),
		}
		if cfg.Tika.Timeout > 0 {
			tikaOptions = append(tikaOptions, parser.WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		if cfg.Tika.SkipAnnotations {
			tikaOptions = append(tikaOptions, parser.WithAnnotations(false))
		}
		return parser.NewTikaDocumentExtractor(cfg.Tika.ServerURL, tikaOptions...)
	}

	return parser.NewLocalDocumentExtractor(parser.WithExtractorLogger(lg))
}
