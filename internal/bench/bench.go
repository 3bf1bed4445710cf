// Package bench times lintrunner stages when debug output is on.
package bench

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"lintrunner/internal/console"
)

const (
	startMsgWidth  = 30
	roundPrecision = 1000
)

type Bench struct {
	console *console.Console
}

func New(c *console.Console) *Bench {
	return &Bench{console: c}
}

// Measure runs op and returns its results. With debug on, it prints the
// label before op starts and the elapsed milliseconds after it returns.
func Measure[T any](b *Bench, label string, op func() (T, error)) (T, error) {
	if b == nil || !b.console.Debug() {
		return op()
	}
	b.console.Print(StartMsg(label))
	start := time.Now()
	v, err := op()
	b.console.Puts(FinishMsg(RoundedMilliseconds(time.Since(start))))
	return v, err
}

func StartMsg(label string) string {
	return console.DebugMsg(fmt.Sprintf("%-*s", startMsgWidth, label+"..."))
}

func FinishMsg(ms float64) string {
	return " (" + strconv.FormatFloat(ms, 'f', -1, 64) + " ms)"
}

// RoundedMilliseconds converts d to milliseconds rounded to three decimals.
func RoundedMilliseconds(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*roundPrecision) / roundPrecision
}
