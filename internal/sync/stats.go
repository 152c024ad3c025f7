package sync

import (
	"sync/atomic"
)

// Stats 对账运行计数器
// 被扫描任务与多个监听协程并发更新，全部用原子操作。
type Stats struct {
	Reconciled      atomic.Int64 // 成功写入的投资记录数
	Duplicates      atomic.Int64 // 重复投递被吸收的事件数
	Skipped         atomic.Int64 // 因身份无法解析被跳过的事件数
	RateLimitHits   atomic.Int64 // 扫描遇到的限流次数
	ScanAborts      atomic.Int64 // 被中止的项目扫描轮次
	WatcherRestarts atomic.Int64 // 实时过滤器重建次数
}

// Snapshot 导出当前计数
func (s *Stats) Snapshot() map[string]int64 {
	return map[string]int64{
		"reconciled":       s.Reconciled.Load(),
		"duplicates":       s.Duplicates.Load(),
		"skipped":          s.Skipped.Load(),
		"rate_limit_hits":  s.RateLimitHits.Load(),
		"scan_aborts":      s.ScanAborts.Load(),
		"watcher_restarts": s.WatcherRestarts.Load(),
	}
}
