package workflow

import "errors"

// Ошибки оркестратора и обработчиков шагов.
var (
	// ErrRequestNotSet — workflow создан без заявки.
	ErrRequestNotSet = errors.New("booking request not set")

	// ErrLoginFormNotFound — кнопка открытия формы логина не найдена.
	ErrLoginFormNotFound = errors.New("login form not found")

	// ErrLoginFailed — логин не подтвердился после отправки формы.
	ErrLoginFailed = errors.New("login failed")

	// ErrTrainNotFound — поезд не найден в результатах поиска.
	ErrTrainNotFound = errors.New("train not found in search results")

	// ErrQuotaWindowTimeout — окно квоты не открылось за отведённое время.
	ErrQuotaWindowTimeout = errors.New("quota window did not open in time")

	// ErrProceedNotFound — кнопка продолжения не найдена.
	ErrProceedNotFound = errors.New("proceed button not found")
)
