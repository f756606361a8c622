package util

import (
	"errors"
	"strings"
	"time"
)

// ParseData interpreta datas de calendário no formato AAAA-MM-DD.
func ParseData(valor string) (time.Time, error) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return time.Time{}, errors.New("data obrigatória")
	}
	data, err := time.Parse("2006-01-02", valor)
	if err != nil {
		return time.Time{}, errors.New("data inválida")
	}
	return data, nil
}
