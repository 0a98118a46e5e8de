package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger - общий интерфейс логирования для всех слоев сервиса.
// Аргументы передаются парами ключ/значение: log.Info("msg", "key", value).
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

type zeroLogger struct {
	zl zerolog.Logger
}

func New(level, environment string) Logger {
	var w io.Writer = os.Stdout
	if environment == "development" || environment == "dev" {
		// Читаемый вывод для разработки, JSON для продакшена
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", "tender-chat").
		Logger()

	return &zeroLogger{zl: zl}
}

func (l *zeroLogger) Debug(msg string, args ...any) { l.emit(l.zl.Debug(), msg, args) }
func (l *zeroLogger) Info(msg string, args ...any)  { l.emit(l.zl.Info(), msg, args) }
func (l *zeroLogger) Warn(msg string, args ...any)  { l.emit(l.zl.Warn(), msg, args) }
func (l *zeroLogger) Error(msg string, args ...any) { l.emit(l.zl.Error(), msg, args) }
func (l *zeroLogger) Fatal(msg string, args ...any) { l.emit(l.zl.Fatal(), msg, args) }

func (l *zeroLogger) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}
