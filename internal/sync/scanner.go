package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/chain"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
)

// ScannerConfig 追赶扫描参数
type ScannerConfig struct {
	MaxRange    int64         // 单次日志查询的最大区块跨度
	MinRange    int64         // 限流收缩后的最小区块跨度
	MaxRetries  int           // 单轮内连续限流的最大重试次数
	BaseBackoff time.Duration // 限流退避基数
}

// DefaultScannerConfig 默认扫描参数
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		MaxRange:    2000,
		MinRange:    250,
		MaxRetries:  5,
		BaseBackoff: 2 * time.Second,
	}
}

// Scanner 追赶扫描器
// 每轮按项目顺序串行扫描，把游标从上次落点推进到链头。
// 游标只在一个区间的全部事件落库后随同一事务推进。
type Scanner struct {
	reader     ChainReader
	reconciler *Reconciler
	ledger     Ledger
	projects   ProjectSource
	cfg        ScannerConfig
	stats      *Stats
}

// NewScanner 创建追赶扫描器
func NewScanner(reader ChainReader, reconciler *Reconciler, ledger Ledger, projects ProjectSource, cfg ScannerConfig, stats *Stats) *Scanner {
	if cfg.MaxRange <= 0 {
		cfg.MaxRange = 2000
	}
	if cfg.MinRange <= 0 {
		cfg.MinRange = 250
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &Scanner{
		reader:     reader,
		reconciler: reconciler,
		ledger:     ledger,
		projects:   projects,
		cfg:        cfg,
		stats:      stats,
	}
}

// ScanOnce 执行一轮扫描
// 单个项目失败只中止该项目本轮的扫描，不影响其他项目。
func (s *Scanner) ScanOnce(ctx context.Context) error {
	projects, err := s.projects.DeployedProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deployed projects: %w", err)
	}

	for i := range projects {
		project := &projects[i]
		if err := s.scanProject(ctx, project); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.stats.ScanAborts.Add(1)
			logger.Error("Scan cycle aborted for project %d: %v", project.Id, err)
		}
	}
	return nil
}

// scanProject 扫描单个项目，从游标推进到链头
func (s *Scanner) scanProject(ctx context.Context, project *model.Project) error {
	head, err := s.reader.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block: %w", err)
	}

	from := project.NextScanBlock()
	if from > head {
		return nil
	}

	logger.Debug("Scanning project %d blocks %d-%d", project.Id, from, head)

	rangeSize := s.cfg.MaxRange
	retries := 0

	for from <= head {
		to := from + rangeSize - 1
		if to > head {
			to = head
		}

		events, err := s.reader.FilterInvestEvents(ctx, project.ContractAddress, from, to)
		if err != nil {
			if chain.IsRetryableRangeError(err) {
				retries++
				s.stats.RateLimitHits.Add(1)
				if retries >= s.cfg.MaxRetries {
					return fmt.Errorf("rate limited %d times in a row, giving up until next tick: %w", retries, err)
				}
				// provider按返回量限流，收缩范围比单纯等待更有效
				if rangeSize/2 >= s.cfg.MinRange {
					rangeSize = rangeSize / 2
				} else {
					rangeSize = s.cfg.MinRange
				}
				backoff := s.cfg.BaseBackoff * time.Duration(1<<(retries-1))
				logger.Warn("Rate limited scanning project %d blocks %d-%d, shrinking range to %d and backing off %s",
					project.Id, from, to, rangeSize, backoff)
				if err := sleepCtx(ctx, backoff); err != nil {
					return err
				}
				continue // 同一个from重试
			}
			return fmt.Errorf("failed to get logs for blocks %d-%d: %w", from, to, err)
		}
		retries = 0

		if err := s.commitRange(ctx, project, events, to); err != nil {
			return fmt.Errorf("failed to commit blocks %d-%d: %w", from, to, err)
		}

		from = to + 1
	}

	return nil
}

// commitRange 对账一个区间内的全部事件并推进游标，同一事务提交
func (s *Scanner) commitRange(ctx context.Context, project *model.Project, events []*chain.InvestEvent, toBlock int64) error {
	investments := make([]*model.Investment, 0, len(events))
	for _, event := range events {
		investment, outcome, err := s.reconciler.Apply(ctx, project, event, s.ledger)
		if err != nil {
			return err
		}
		if outcome != OutcomeReconciled {
			continue
		}
		investments = append(investments, investment)
	}

	if err := s.ledger.CommitRange(ctx, project.Id, investments, toBlock); err != nil {
		return err
	}

	if len(investments) > 0 {
		s.stats.Reconciled.Add(int64(len(investments)))
		logger.Info("Reconciled %d investments for project %d up to block %d",
			len(investments), project.Id, toBlock)
	}

	// 本地游标同步前移，后续区间接着算
	project.LastProcessedBlock = &toBlock
	return nil
}

// sleepCtx 可取消的休眠
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
