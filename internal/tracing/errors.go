package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 按子系统归类Span上的错误，方便在追踪后端按类型过滤
type ErrorType string

const (
	ErrorTypeHTTP     ErrorType = "http"
	ErrorTypeDB       ErrorType = "db"
	ErrorTypeRedis    ErrorType = "redis"
	ErrorTypeRabbitMQ ErrorType = "rabbitmq"
	ErrorTypeParser   ErrorType = "parser"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeInternal ErrorType = "internal"
)

// RecordError 在Span上记录一个分类错误并把Span状态置为Error
func RecordError(span trace.Span, err error, errorType ErrorType) {
	RecordErrorWithInfo(span, err, errorType)
}

// RecordErrorWithInfo 同 RecordError，额外附带调用方关心的属性
func RecordErrorWithInfo(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(append(attributes,
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)...)
	span.SetStatus(codes.Error, err.Error())
}

// RecordHTTPError 记录HTTP调用错误，状态码决定 error.category
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	category := "unknown"
	switch {
	case statusCode >= 500:
		category = "server_error"
	case statusCode >= 400:
		category = "client_error"
	}
	RecordErrorWithInfo(span, err, ErrorTypeHTTP,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", category),
	)
}

// RecordRabbitMQNack 记录broker拒绝确认的投递
func RecordRabbitMQNack(span trace.Span, messageID string, reason string) {
	if reason == "" {
		reason = "message not acknowledged by broker"
	}
	recordBrokerFailure(span, messageID, "nack", reason)
}

// RecordRabbitMQTimeout 记录等待broker确认超时的投递
func RecordRabbitMQTimeout(span trace.Span, messageID string, timeoutDuration string) {
	recordBrokerFailure(span, messageID, "timeout", "confirm timeout after "+timeoutDuration)
}

func recordBrokerFailure(span trace.Span, messageID, failureKind, errMsg string) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.String("error.type", string(ErrorTypeRabbitMQ)),
		attribute.String("error.message", errMsg),
		attribute.String("messaging.message_id", messageID),
		attribute.String("messaging.error_type", failureKind),
		attribute.Bool("messaging.rabbitmq.confirmed", false),
	)
	span.SetStatus(codes.Error, errMsg)
}
