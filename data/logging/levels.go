package logging

import "log/slog"

const (
	// Level Debug -4
	// Level Info 0
	// Level Warn 4
	// Level Error 8
	LevelBrokenData slog.Level = 12
)
