package chain

import (
	"strings"
)

// IsRateLimitError 检查是否为RPC限流错误
// 各家provider的报错文案不一，只能按关键字匹配
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	// "429"必须带状态码前缀，裸数字会误伤消息里恰好含429的其他错误
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "code 429") ||
		strings.Contains(msg, "rate limit")
}

// IsRangeTooLargeError 检查是否为区块范围过大错误
// provider按返回数据量限流，处理方式与限流相同：收缩范围重试
func IsRangeTooLargeError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "query returned more than") ||
		strings.Contains(msg, "block range") ||
		strings.Contains(msg, "range too large")
}

// IsRetryableRangeError 是否应收缩区块范围并退避重试
func IsRetryableRangeError(err error) bool {
	return IsRateLimitError(err) || IsRangeTooLargeError(err)
}
