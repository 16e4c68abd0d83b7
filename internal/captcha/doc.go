// Package captcha решает картиночные captcha на странице логина и
// оплаты.
//
// Распознавание текста вынесено за интерфейс Recognizer:
//   - EasyOCR — HTTP-запрос к локальному OCR-серверу;
//   - Tesseract — запуск бинарника tesseract;
//   - Manual — оператор вводит текст в видимом окне браузера сам.
//
// Solver берёт картинку из атрибута src (data URL), прогоняет через
// Recognizer, нормализует текст, заполняет поле ввода по списку
// запасных селекторов и классифицирует результат по ключевым словам
// на странице.
package captcha
