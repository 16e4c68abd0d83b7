package captcha

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/shaiso/railbot/internal/domain"
)

// Recognizer извлекает текст из картинки captcha.
type Recognizer interface {
	// Recognize принимает байты изображения и возвращает распознанный
	// текст до нормализации.
	Recognize(ctx context.Context, image []byte) (string, error)
}

// NewRecognizer создаёт Recognizer по типу из заявки.
// Для domain.CaptchaManual возвращает nil: ввод выполняет оператор.
func NewRecognizer(solverType string) (Recognizer, error) {
	switch solverType {
	case domain.CaptchaEasyOCR, "":
		return NewEasyOCR(""), nil
	case domain.CaptchaTesseract:
		return NewTesseract(""), nil
	case domain.CaptchaManual:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSolver, solverType)
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Clean нормализует распознанный текст: удаляет всё, кроме латинских
// букв и цифр, и переводит в верхний регистр. Идемпотентна.
func Clean(text string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(text, ""))
}

// DecodeDataURL извлекает байты изображения из data URL атрибута src.
// Строка без префикса data: трактуется как чистый base64.
func DecodeDataURL(src string) ([]byte, error) {
	payload := src
	if strings.HasPrefix(src, "data:") {
		idx := strings.Index(src, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		payload = src[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode captcha image: %w", err)
	}
	return data, nil
}

// EasyOCR — клиент локального OCR-сервера.
type EasyOCR struct {
	serverURL string
	client    *http.Client
}

// NewEasyOCR создаёт клиента. Пустой serverURL означает
// http://localhost:5000.
func NewEasyOCR(serverURL string) *EasyOCR {
	if serverURL == "" {
		serverURL = "http://localhost:5000"
	}
	return &EasyOCR{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type easyOCRRequest struct {
	Image string `json:"image"`
}

type easyOCRResponse struct {
	ExtractedText string `json:"extracted_text"`
}

// Recognize отправляет изображение на POST /extract-text.
func (e *EasyOCR) Recognize(ctx context.Context, image []byte) (string, error) {
	body, err := json.Marshal(easyOCRRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return "", fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.serverURL+"/extract-text", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrServerUnavailable, resp.StatusCode)
	}

	var out easyOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if out.ExtractedText == "" {
		return "", ErrEmptyText
	}
	return out.ExtractedText, nil
}

// Healthy проверяет доступность OCR-сервера через GET /health.
func (e *EasyOCR) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.serverURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Tesseract распознаёт текст запуском бинарника tesseract.
type Tesseract struct {
	binary string
}

// NewTesseract создаёт распознаватель. Пустой binary означает
// "tesseract" из PATH.
func NewTesseract(binary string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{binary: binary}
}

// Recognize передаёт изображение на stdin и читает текст со stdout.
// PSM 8 — одна строка символов без сегментации на слова.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, "stdin", "stdout", "--psm", "8")
	cmd.Stdin = bytes.NewReader(image)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
