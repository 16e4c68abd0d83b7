package captcha

import "errors"

// Ошибки решения captcha.
var (
	// ErrImageNotFound — картинка captcha не найдена на странице.
	ErrImageNotFound = errors.New("captcha image not found")

	// ErrEmptyText — распознавание вернуло пустой текст.
	ErrEmptyText = errors.New("captcha text is empty")

	// ErrInputNotFound — поле ввода captcha не найдено.
	ErrInputNotFound = errors.New("captcha input not found")

	// ErrMaxAttempts — captcha не принята за отведённое число попыток.
	ErrMaxAttempts = errors.New("captcha not accepted after maximum attempts")

	// ErrServerUnavailable — OCR-сервер недоступен.
	ErrServerUnavailable = errors.New("ocr server unavailable")

	// ErrUnknownSolver — неизвестный тип распознавания.
	ErrUnknownSolver = errors.New("unknown captcha solver type")
)
