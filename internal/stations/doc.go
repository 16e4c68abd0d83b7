// Package stations — справочник станций для автодополнения в формах.
//
// Набор данных встроен в бинарник и покрывает основные станции сети.
// Поиск работает по коду и названию: совпадения по префиксу кода
// ранжируются выше совпадений по названию.
package stations
