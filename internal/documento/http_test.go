package documento

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gestaoprovincial/expediente/internal/escopo"
	httpmiddleware "github.com/gestaoprovincial/expediente/internal/http/middleware"
)

func novoServidorTeste(t *testing.T, esc escopo.Escopo) *httptest.Server {
	t.Helper()

	svc := NewService(newStubRepo(), nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(httpmiddleware.SetEscopo(req.Context(), esc)))
		})
	})
	Mount(r, NewHandler(svc))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, method, url string, payload any) (int, envelope) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("codificar payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("montar requisição: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("requisição falhou: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decodificar envelope: %v", err)
	}
	return resp.StatusCode, env
}

func TestFluxoCompletoDeCorrespondencia(t *testing.T) {
	srv := novoServidorTeste(t, escProvincial())

	// 1. regista o ofício recebido
	status, env := doJSON(t, http.MethodPost, srv.URL+"/documentos", map[string]any{
		"tipo":           TipoOficio,
		"assunto":        "Pedido de informação",
		"origem":         "Município de Benguela",
		"destino":        "Direcção Provincial de Educação",
		"direcao":        DirecaoRecebido,
		"data_documento": "2024-03-01",
	})
	if status != http.StatusCreated {
		t.Fatalf("criar: esperava 201, veio %d (%v)", status, env.Error)
	}

	var criado struct {
		Documento struct {
			ID              string `json:"id"`
			NumeroProtocolo string `json:"numero_protocolo"`
			Status          string `json:"status"`
			CriadoEm        string `json:"criado_em"`
		} `json:"documento"`
	}
	if err := json.Unmarshal(env.Data, &criado); err != nil {
		t.Fatalf("decodificar documento: %v", err)
	}
	if criado.Documento.NumeroProtocolo == "" {
		t.Fatal("protocolo não alocado")
	}
	if criado.Documento.Status != StatusEmTramitacao {
		t.Fatalf("status inicial errado: %s", criado.Documento.Status)
	}

	docURL := fmt.Sprintf("%s/documentos/%s", srv.URL, criado.Documento.ID)

	// 2. linha do tempo começa vazia
	status, env = doJSON(t, http.MethodGet, docURL+"/movimentacoes", nil)
	if status != http.StatusOK {
		t.Fatalf("movimentações: esperava 200, veio %d", status)
	}
	var linha struct {
		Movimentacoes []Movimentacao `json:"movimentacoes"`
	}
	if err := json.Unmarshal(env.Data, &linha); err != nil {
		t.Fatalf("decodificar linha do tempo: %v", err)
	}
	if len(linha.Movimentacoes) != 0 {
		t.Fatalf("linha do tempo deveria estar vazia, tem %d", len(linha.Movimentacoes))
	}

	// 3. regista a resposta enviada por correio
	status, _ = doJSON(t, http.MethodPost, docURL+"/movimentacoes", map[string]any{
		"acao":  "Resposta enviada por correio",
		"notas": "Guia de remessa 42/2024",
	})
	if status != http.StatusCreated {
		t.Fatalf("movimentar: esperava 201, veio %d", status)
	}

	// 4. marca como respondido
	status, env = doJSON(t, http.MethodPut, docURL, map[string]any{"status": StatusRespondido})
	if status != http.StatusOK {
		t.Fatalf("atualizar: esperava 200, veio %d (%v)", status, env.Error)
	}

	// 5. a leitura final reflete tudo, com protocolo e criado_em intactos
	status, env = doJSON(t, http.MethodGet, docURL, nil)
	if status != http.StatusOK {
		t.Fatalf("obter: esperava 200, veio %d", status)
	}
	var atual struct {
		Documento struct {
			NumeroProtocolo string `json:"numero_protocolo"`
			Status          string `json:"status"`
			CriadoEm        string `json:"criado_em"`
		} `json:"documento"`
	}
	if err := json.Unmarshal(env.Data, &atual); err != nil {
		t.Fatalf("decodificar documento: %v", err)
	}
	if atual.Documento.Status != StatusRespondido {
		t.Fatalf("status final errado: %s", atual.Documento.Status)
	}
	if atual.Documento.NumeroProtocolo != criado.Documento.NumeroProtocolo {
		t.Fatal("protocolo mudou durante o fluxo")
	}
	if atual.Documento.CriadoEm != criado.Documento.CriadoEm {
		t.Fatal("criado_em mudou durante o fluxo")
	}

	status, env = doJSON(t, http.MethodGet, docURL+"/movimentacoes", nil)
	if status != http.StatusOK {
		t.Fatalf("movimentações: esperava 200, veio %d", status)
	}
	if err := json.Unmarshal(env.Data, &linha); err != nil {
		t.Fatalf("decodificar linha do tempo: %v", err)
	}
	if len(linha.Movimentacoes) != 1 || linha.Movimentacoes[0].Acao != "Resposta enviada por correio" {
		t.Fatalf("linha do tempo inesperada: %+v", linha.Movimentacoes)
	}
}

func TestCriarSemCamposObrigatorios(t *testing.T) {
	srv := novoServidorTeste(t, escProvincial())

	status, env := doJSON(t, http.MethodPost, srv.URL+"/documentos", map[string]any{})
	if status != http.StatusBadRequest {
		t.Fatalf("esperava 400, veio %d", status)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION" {
		t.Fatalf("esperava código VALIDATION, veio %+v", env.Error)
	}
	if len(env.Error.Details) == 0 {
		t.Fatal("resposta de validação sem lista de campos")
	}
}

func TestAtualizarProtocoloRejeitado(t *testing.T) {
	srv := novoServidorTeste(t, escProvincial())

	status, env := doJSON(t, http.MethodPost, srv.URL+"/documentos", map[string]any{
		"tipo":           TipoMemorando,
		"assunto":        "Convocatória",
		"origem":         "Gabinete do Governador",
		"destino":        "Administrações Municipais",
		"direcao":        DirecaoEnviado,
		"data_documento": "2024-03-05",
	})
	if status != http.StatusCreated {
		t.Fatalf("criar: esperava 201, veio %d", status)
	}
	var criado struct {
		Documento struct {
			ID string `json:"id"`
		} `json:"documento"`
	}
	if err := json.Unmarshal(env.Data, &criado); err != nil {
		t.Fatalf("decodificar documento: %v", err)
	}

	status, env = doJSON(t, http.MethodPut, srv.URL+"/documentos/"+criado.Documento.ID, map[string]any{
		"numero_protocolo": "1999/0001",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("esperava 400, veio %d", status)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION" {
		t.Fatalf("esperava código VALIDATION, veio %+v", env.Error)
	}
}

func TestDataInvalidaNaListagem(t *testing.T) {
	srv := novoServidorTeste(t, escProvincial())

	status, env := doJSON(t, http.MethodGet, srv.URL+"/documentos?data_de=ontem", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("data inválida deveria dar 400, veio %d", status)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION" {
		t.Fatalf("esperava código VALIDATION, veio %+v", env.Error)
	}
}

func TestObterInexistente(t *testing.T) {
	srv := novoServidorTeste(t, escProvincial())

	status, env := doJSON(t, http.MethodGet, srv.URL+"/documentos/4f3a2b1c-0000-0000-0000-000000000000", nil)
	if status != http.StatusNotFound {
		t.Fatalf("esperava 404, veio %d", status)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("esperava código NOT_FOUND, veio %+v", env.Error)
	}
}

func TestSemEscopoRetornaAuth(t *testing.T) {
	svc := NewService(newStubRepo(), nil)
	r := chi.NewRouter()
	Mount(r, NewHandler(svc))
	srv := httptest.NewServer(r)
	defer srv.Close()

	status, env := doJSON(t, http.MethodGet, srv.URL+"/documentos", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("esperava 401, veio %d", status)
	}
	if env.Error == nil || env.Error.Code != "AUTH" {
		t.Fatalf("esperava código AUTH, veio %+v", env.Error)
	}
}
