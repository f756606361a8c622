package documento

import "fmt"

// FormatarProtocolo monta o número de protocolo no formato AAAA/NNNN.
// A sequência é por ano e preenchida com zeros para ordenar como texto;
// acima de 9999 o número simplesmente ganha dígitos.
func FormatarProtocolo(ano, seq int) string {
	return fmt.Sprintf("%d/%04d", ano, seq)
}
