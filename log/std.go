package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	_SDebug = "[D]"
	_SInfo  = "[I]"
	_SWarn  = "[W]"
	_SError = "[E]"
	_SFatal = "[F]"
)

const (
	ColorRed      = "\033[31m"
	ColorGreen    = "\033[32m"
	ColorYellow   = "\033[33m"
	ColorCyan     = "\033[36m"
	ColorWhite    = "\033[37m"
	ColorHiRed    = "\033[91m"
	ColorHiGreen  = "\033[92m"
	ColorHiYellow = "\033[93m"
	ColorHiPurple = "\033[95m"
	ColorHiWhite  = "\033[97m"
	ColorReset    = "\033[0m"
)

func LogLvlToStr(l kite.TLevel) string {
	switch l {
	case kite.TDebug:
		return _SDebug
	case kite.TInfo:
		return _SInfo
	case kite.TWarn:
		return _SWarn
	case kite.TError:
		return _SError
	case kite.TFatal:
		return _SFatal
	default:
		return ""
	}
}

type (
	stdOption struct {
		logLvl     kite.TLevel
		timeLayout string
		color      bool
		writer     io.Writer
	}
	StdOption func(opt *stdOption)
)

func StdLogLvl(levels ...kite.TLevel) StdOption {
	return func(opt *stdOption) {
		opt.logLvl = kite.LvlToMask(levels...)
	}
}

func StdLogStrLvl(levels ...string) StdOption {
	return func(opt *stdOption) {
		opt.logLvl = kite.StrLvlToMask(levels...)
	}
}

func StdTimeLayout(layout string) StdOption {
	return func(opt *stdOption) {
		opt.timeLayout = layout
	}
}

func StdWriter(writer io.Writer) StdOption {
	return func(opt *stdOption) {
		opt.writer = writer
	}
}

func StdColor(color bool) StdOption {
	return func(opt *stdOption) {
		opt.color = color
	}
}

// StdFile 按文件滚动,保留 30 天
func StdFile(file string) StdOption {
	fmt.Println("log:", file)
	return func(opt *stdOption) {
		opt.writer = &lumberjack.Logger{
			Filename: file,
			MaxSize:  128, //MB
			MaxAge:   30,  //days
			Compress: true,
		}
	}
}

func NewStd(opts ...StdOption) *stdLogger {
	opt := &stdOption{
		logLvl:     kite.LvlToMask(kite.TestLevels...),
		timeLayout: kite.DefTimeFormatter,
		color:      true,
		writer:     os.Stdout,
	}
	for _, o := range opts {
		o(opt)
	}
	f := &stdLogger{
		option: opt,
	}
	f.headDebug = _SDebug
	f.headInfo = _SInfo
	f.headWarn = _SWarn
	f.headError = _SError
	f.headFatal = _SFatal
	f.tail = "\n"
	if opt.color {
		f.headDebug = ColorHiWhite + f.headDebug
		f.headInfo = ColorHiGreen + f.headInfo
		f.headWarn = ColorHiYellow + f.headWarn
		f.headError = ColorHiRed + f.headError
		f.headFatal = ColorHiPurple + f.headFatal
		f.tail = ColorReset + f.tail
	}
	return f
}

type stdLogger struct {
	option    *stdOption
	mtx       sync.Mutex
	headDebug string
	headInfo  string
	headWarn  string
	headError string
	headFatal string
	tail      string
}

func (l *stdLogger) getTimestamp() string {
	return time.Now().Format(l.option.timeLayout)
}

func (l *stdLogger) Log(level kite.TLevel, msg, caller string, stack []byte, params util.M) {
	if !util.TestMask(level, l.option.logLvl) {
		return
	}
	var builder strings.Builder
	if stack == nil {
		builder.Grow(512)
	} else {
		builder.Grow(1024)
	}
	switch level {
	case kite.TDebug:
		builder.WriteString(l.headDebug)
	case kite.TInfo:
		builder.WriteString(l.headInfo)
	case kite.TWarn:
		builder.WriteString(l.headWarn)
	case kite.TError:
		builder.WriteString(l.headError)
	case kite.TFatal:
		builder.WriteString(l.headFatal)
	}
	builder.WriteString(l.getTimestamp())
	if msg != "" {
		builder.WriteByte(' ')
		builder.WriteString(msg)
	}
	builder.WriteString(l.tail)
	if len(params) > 0 {
		ps, _ := util.JsonMarshal(params)
		builder.Write(ps)
		builder.WriteByte('\n')
	}
	builder.WriteString(caller)
	if stack != nil {
		builder.Write(stack)
	}
	builder.WriteByte('\n')
	l.mtx.Lock()
	_, _ = io.WriteString(l.option.writer, builder.String())
	l.mtx.Unlock()
}
