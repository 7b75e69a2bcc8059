// Package scheduler 每天在固定时刻触发一次分析运行。
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"leadreport/internal/store"
)

// lastRunKey config 表中记录最近一次定时运行日期的键
const lastRunKey = "last_scheduled_date"

const dateLayout = "2006-01-02"

// RunFunc 实际执行分析的回调
type RunFunc func(ctx context.Context) error

// Scheduler 每日定时器
type Scheduler struct {
	hour  int
	store *store.Store
	run   RunFunc
	now   func() time.Time
}

// New 创建定时器；st 为 nil 时不记录运行日期
func New(hour int, st *store.Store, run RunFunc) *Scheduler {
	return &Scheduler{hour: hour, store: st, run: run, now: time.Now}
}

// NextRun 计算严格晚于 now 的下一次 hour:00
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start 阻塞运行，直到 ctx 取消
func (s *Scheduler) Start(ctx context.Context) error {
	log.Printf("[scheduler] 定時実行を開始: 毎日 %02d:00", s.hour)

	// 当天已过触发时刻且尚未运行时补跑一次
	if s.Due(s.now()) {
		s.fire(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			log.Printf("[scheduler] 停止")
			return err
		}
		now := s.now()
		next := NextRun(now, s.hour)
		log.Printf("[scheduler] 次回実行: %s", next.Format("2006-01-02 15:04"))
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("[scheduler] 停止")
			return ctx.Err()
		case <-timer.C:
			if s.Due(s.now()) {
				s.fire(ctx)
			}
		}
	}
}

// Due 当天是否已到触发时刻且还没运行过
func (s *Scheduler) Due(now time.Time) bool {
	if now.Hour() < s.hour {
		return false
	}
	return s.lastDate() != now.Format(dateLayout)
}

func (s *Scheduler) fire(ctx context.Context) {
	today := s.now().Format(dateLayout)
	// 先记录日期，失败的运行当天不重试
	s.markDate(today)

	log.Printf("[scheduler] 定時実行: %s", today)
	if err := s.run(ctx); err != nil {
		log.Printf("[scheduler] 定時実行失敗: %v", err)
	}
}

func (s *Scheduler) lastDate() string {
	if s.store == nil {
		return ""
	}
	v, err := s.store.GetConfig(lastRunKey)
	if err != nil && !errors.Is(err, store.ErrConfigNotFound) {
		log.Printf("[scheduler] WARNING: 读取上次运行日期失败: %v", err)
	}
	return v
}

func (s *Scheduler) markDate(date string) {
	if s.store == nil {
		return
	}
	if err := s.store.SetConfig(lastRunKey, date); err != nil {
		log.Printf("[scheduler] WARNING: 记录运行日期失败: %v", err)
	}
}
