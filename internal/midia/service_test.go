package midia

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaoprovincial/expediente/internal/escopo"
	"github.com/gestaoprovincial/expediente/internal/storage"
)

type stubRepo struct {
	mu       sync.Mutex
	arquivos map[uuid.UUID]Arquivo

	ultimoFiltro    Filtro
	ultimoMunicipio *uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{arquivos: make(map[uuid.UUID]Arquivo)}
}

func (s *stubRepo) Inserir(ctx context.Context, arquivo Arquivo) (*Arquivo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arquivo.ID = uuid.New()
	arquivo.CriadoEm = time.Now()
	s.arquivos[arquivo.ID] = arquivo
	return &arquivo, nil
}

func (s *stubRepo) Obter(ctx context.Context, id uuid.UUID) (*Arquivo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arquivo, ok := s.arquivos[id]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	return &arquivo, nil
}

func (s *stubRepo) Remover(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.arquivos[id]; !ok {
		return ErrNaoEncontrado
	}
	delete(s.arquivos, id)
	return nil
}

func (s *stubRepo) Listar(ctx context.Context, filtro Filtro, municipioID *uuid.UUID, limit, offset int) ([]Arquivo, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ultimoFiltro = filtro
	s.ultimoMunicipio = municipioID

	var out []Arquivo
	for _, arquivo := range s.arquivos {
		if municipioID != nil && (arquivo.MunicipioID == nil || *arquivo.MunicipioID != *municipioID) {
			continue
		}
		if filtro.Categoria != "" && arquivo.Categoria != filtro.Categoria {
			continue
		}
		out = append(out, arquivo)
	}
	return out, len(out), nil
}

type stubUploader struct {
	mu        sync.Mutex
	enviados  map[string][]byte
	removidos []string
	errEnvio  error
	errRemove error
}

func newStubUploader() *stubUploader {
	return &stubUploader{enviados: make(map[string][]byte)}
}

func (s *stubUploader) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errEnvio != nil {
		return nil, s.errEnvio
	}
	s.enviados[input.Key] = input.Body
	return &storage.UploadResult{URL: "https://cdn.exemplo.gov.ao/" + input.Key}, nil
}

func (s *stubUploader) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errRemove != nil {
		return s.errRemove
	}
	s.removidos = append(s.removidos, key)
	return nil
}

func escProvincial() escopo.Escopo {
	return escopo.Escopo{UsuarioID: uuid.New(), Papel: escopo.PapelProvincial}
}

func escMunicipal(municipioID uuid.UUID) escopo.Escopo {
	return escopo.Escopo{UsuarioID: uuid.New(), Papel: escopo.PapelMunicipal, MunicipioID: &municipioID}
}

func TestEnviarValidacao(t *testing.T) {
	svc := NewService(newStubRepo(), newStubUploader(), nil)

	if _, err := svc.Enviar(context.Background(), escProvincial(), EnviarInput{Nome: "  ", Conteudo: []byte("x")}); !errors.Is(err, ErrNomeObrigatorio) {
		t.Fatalf("esperava ErrNomeObrigatorio, veio %v", err)
	}
	if _, err := svc.Enviar(context.Background(), escProvincial(), EnviarInput{Nome: "relatorio.pdf"}); !errors.Is(err, ErrConteudoVazio) {
		t.Fatalf("esperava ErrConteudoVazio, veio %v", err)
	}
}

func TestEnviarDerivaCategoriaEURL(t *testing.T) {
	uploader := newStubUploader()
	svc := NewService(newStubRepo(), uploader, nil)

	arquivo, err := svc.Enviar(context.Background(), escProvincial(), EnviarInput{
		Nome:        "Foto da Sessão.JPG",
		ContentType: "image/jpeg",
		Conteudo:    []byte{0xff, 0xd8},
	})
	if err != nil {
		t.Fatalf("enviar falhou: %v", err)
	}
	if arquivo.Categoria != CategoriaImagem {
		t.Fatalf("categoria errada: %s", arquivo.Categoria)
	}
	if arquivo.Tamanho != 2 {
		t.Fatalf("tamanho errado: %d", arquivo.Tamanho)
	}
	if !strings.HasPrefix(arquivo.URL, "https://cdn.exemplo.gov.ao/midias/provincial/") {
		t.Fatalf("URL inesperada: %s", arquivo.URL)
	}
	if strings.Contains(arquivo.URL, " ") || strings.Contains(arquivo.URL, "ã") {
		t.Fatalf("chave não sanitizada: %s", arquivo.URL)
	}
	if len(uploader.enviados) != 1 {
		t.Fatalf("uploader deveria ter 1 objeto, tem %d", len(uploader.enviados))
	}
}

func TestEnviarForcaMunicipioDoEscopo(t *testing.T) {
	svc := NewService(newStubRepo(), newStubUploader(), nil)

	municipioA := uuid.New()
	municipioB := uuid.New()
	arquivo, err := svc.Enviar(context.Background(), escMunicipal(municipioA), EnviarInput{
		Nome:        "edital.pdf",
		MunicipioID: &municipioB,
		Conteudo:    []byte("pdf"),
	})
	if err != nil {
		t.Fatalf("enviar falhou: %v", err)
	}
	if arquivo.MunicipioID == nil || *arquivo.MunicipioID != municipioA {
		t.Fatalf("município deveria ser forçado ao escopo, veio %v", arquivo.MunicipioID)
	}
}

func TestEnviarFalhaDoBucketNaoPersiste(t *testing.T) {
	repo := newStubRepo()
	uploader := newStubUploader()
	uploader.errEnvio = errors.New("bucket fora do ar")
	svc := NewService(repo, uploader, nil)

	if _, err := svc.Enviar(context.Background(), escProvincial(), EnviarInput{Nome: "a.txt", Conteudo: []byte("x")}); err == nil {
		t.Fatal("esperava erro do uploader")
	}
	if len(repo.arquivos) != 0 {
		t.Fatal("referência não deveria ser persistida quando o upload falha")
	}
}

func TestListarEscopoECategoria(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, newStubUploader(), nil)

	municipioA := uuid.New()
	if _, err := svc.Enviar(context.Background(), escMunicipal(municipioA), EnviarInput{Nome: "a.png", ContentType: "image/png", Conteudo: []byte("x")}); err != nil {
		t.Fatalf("enviar falhou: %v", err)
	}
	if _, err := svc.Enviar(context.Background(), escProvincial(), EnviarInput{Nome: "b.pdf", ContentType: "application/pdf", Conteudo: []byte("x")}); err != nil {
		t.Fatalf("enviar falhou: %v", err)
	}

	_, total, err := svc.Listar(context.Background(), escMunicipal(municipioA), Filtro{Categoria: "holograma"}, 0, -5)
	if err != nil {
		t.Fatalf("listar falhou: %v", err)
	}
	if total != 1 {
		t.Fatalf("escopo municipal deveria ver 1 arquivo, viu %d", total)
	}
	if repo.ultimoFiltro.Categoria != "" {
		t.Fatalf("categoria inválida chegou ao repositório: %s", repo.ultimoFiltro.Categoria)
	}
	if repo.ultimoMunicipio == nil || *repo.ultimoMunicipio != municipioA {
		t.Fatal("escopo não foi aplicado na listagem")
	}
}

func TestRemoverMelhorEsforcoNoBucket(t *testing.T) {
	repo := newStubRepo()
	uploader := newStubUploader()
	svc := NewService(repo, uploader, nil)
	esc := escProvincial()

	arquivo, err := svc.Enviar(context.Background(), esc, EnviarInput{Nome: "ata.pdf", Conteudo: []byte("x")})
	if err != nil {
		t.Fatalf("enviar falhou: %v", err)
	}

	uploader.errRemove = errors.New("bucket fora do ar")
	if err := svc.Remover(context.Background(), esc, arquivo.ID); err != nil {
		t.Fatalf("remover deveria suceder mesmo com falha no bucket: %v", err)
	}
	if len(repo.arquivos) != 0 {
		t.Fatal("referência deveria ter sido removida")
	}

	if err := svc.Remover(context.Background(), esc, arquivo.ID); !errors.Is(err, ErrNaoEncontrado) {
		t.Fatalf("remover repetido deveria ser NotFound, veio %v", err)
	}
}

func TestObterForaDoEscopo(t *testing.T) {
	svc := NewService(newStubRepo(), newStubUploader(), nil)

	municipioA := uuid.New()
	arquivo, err := svc.Enviar(context.Background(), escMunicipal(municipioA), EnviarInput{Nome: "a.txt", Conteudo: []byte("x")})
	if err != nil {
		t.Fatalf("enviar falhou: %v", err)
	}

	if _, err := svc.Obter(context.Background(), escMunicipal(uuid.New()), arquivo.ID); !errors.Is(err, ErrNaoEncontrado) {
		t.Fatalf("arquivo fora do escopo não pode vazar, veio %v", err)
	}
}

func TestCategoriaDoContentType(t *testing.T) {
	casos := map[string]string{
		"image/png":       CategoriaImagem,
		"VIDEO/mp4":       CategoriaVideo,
		"audio/ogg":       CategoriaAudio,
		"application/pdf": CategoriaDocumento,
		"":                CategoriaDocumento,
	}
	for ct, esperado := range casos {
		if got := CategoriaDoContentType(ct); got != esperado {
			t.Errorf("CategoriaDoContentType(%q) = %s, esperava %s", ct, got, esperado)
		}
	}
}
