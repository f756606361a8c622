package documento

import (
	"errors"
	"strings"
)

var (
	// ErrNaoEncontrado é retornado quando o documento não existe.
	ErrNaoEncontrado = errors.New("documento não encontrado")
	// ErrConflito indica corrida na alocação do número de protocolo.
	ErrConflito = errors.New("conflito na alocação de protocolo")
)

// ErroValidacao agrega os campos rejeitados na validação.
type ErroValidacao struct {
	Campos []string
}

func (e *ErroValidacao) Error() string {
	return "campos inválidos: " + strings.Join(e.Campos, ", ")
}

func novaValidacao(campos ...string) *ErroValidacao {
	return &ErroValidacao{Campos: campos}
}
