package documento

import (
	"sort"
	"testing"
	"time"
)

func TestFormatarProtocolo(t *testing.T) {
	casos := []struct {
		ano, seq int
		esperado string
	}{
		{2024, 1, "2024/0001"},
		{2024, 42, "2024/0042"},
		{2024, 9999, "2024/9999"},
		{2024, 10000, "2024/10000"},
	}
	for _, c := range casos {
		if got := FormatarProtocolo(c.ano, c.seq); got != c.esperado {
			t.Errorf("FormatarProtocolo(%d, %d) = %s, esperava %s", c.ano, c.seq, got, c.esperado)
		}
	}
}

func TestProtocoloOrdenavelNoMesmoAno(t *testing.T) {
	protocolos := []string{
		FormatarProtocolo(2024, 12),
		FormatarProtocolo(2024, 3),
		FormatarProtocolo(2024, 250),
		FormatarProtocolo(2024, 1),
	}
	sort.Strings(protocolos)

	esperado := []string{"2024/0001", "2024/0003", "2024/0012", "2024/0250"}
	for i, p := range esperado {
		if protocolos[i] != p {
			t.Fatalf("ordenação lexicográfica quebrada: %v", protocolos)
		}
	}
}

func TestAtrasado(t *testing.T) {
	agora := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	ontem := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	amanha := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	casos := []struct {
		nome     string
		doc      Documento
		esperado bool
	}{
		{"sem prazo", Documento{Status: StatusEmTramitacao}, false},
		{"prazo vencido em tramitação", Documento{Status: StatusEmTramitacao, Prazo: &ontem}, true},
		{"prazo futuro", Documento{Status: StatusEmTramitacao, Prazo: &amanha}, false},
		{"prazo vencido mas respondido", Documento{Status: StatusRespondido, Prazo: &ontem}, false},
		{"prazo vencido mas arquivado", Documento{Status: StatusArquivado, Prazo: &ontem}, false},
	}
	for _, c := range casos {
		if got := c.doc.Atrasado(agora); got != c.esperado {
			t.Errorf("%s: Atrasado = %v, esperava %v", c.nome, got, c.esperado)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	if NormalizeStatus("") != StatusEmTramitacao {
		t.Fatal("status vazio deveria defaultar para em_tramitacao")
	}
	if NormalizeStatus("  RESPONDIDO ") != StatusRespondido {
		t.Fatal("status não foi normalizado")
	}
}

func TestEnumeracoes(t *testing.T) {
	if !IsValidTipo(" Oficio ") || IsValidTipo("telegrama") {
		t.Fatal("validação de tipo errada")
	}
	if !IsValidDirecao("ENVIADO") || IsValidDirecao("lateral") {
		t.Fatal("validação de direção errada")
	}
	if !IsValidStatus("arquivado") || IsValidStatus("pendente") {
		t.Fatal("validação de status errada")
	}
}
