package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// LoadEnv 读取工作目录下的 .env；文件不存在时直接使用进程环境变量
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("no .env file, using process environment")
			return
		}
		slog.Warn("load .env failed", "err", err)
	}
}
