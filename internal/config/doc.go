// Package config сохраняет и загружает конфигурацию бронирования.
//
// Конфигурация хранится в JSON-файле, открыто или зашифрованно
// (AES-GCM с ключом из окружения). Зашифрованный файл содержит
// base64 от nonce и ciphertext.
package config
