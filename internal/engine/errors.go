package engine

import "errors"

var (
	// ErrAlreadyRunning — попытка запуска при активном workflow.
	ErrAlreadyRunning = errors.New("booking workflow already running")

	// ErrNotRunning — операция требует активного workflow.
	ErrNotRunning = errors.New("no booking workflow running")

	// ErrNoCheckpoint — восстановление без сохранённой контрольной точки.
	ErrNoCheckpoint = errors.New("no checkpoint to recover from")
)
