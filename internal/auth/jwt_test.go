package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const segredoTeste = "segredo-de-teste-com-mais-de-32-caracteres"

func TestGerarEValidarToken(t *testing.T) {
	manager := NewJWTManager(segredoTeste, time.Minute)

	subject := uuid.NewString()
	municipio := uuid.NewString()
	token, jti, err := manager.GenerateAccessToken(subject, []string{"MUNICIPAL"}, municipio)
	if err != nil {
		t.Fatalf("gerar token falhou: %v", err)
	}
	if jti == "" {
		t.Fatal("jti vazio")
	}

	claims, err := manager.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("validar token falhou: %v", err)
	}
	if claims.Subject != subject {
		t.Fatalf("subject errado: %s", claims.Subject)
	}
	if claims.MunicipioID != municipio {
		t.Fatalf("municipio errado: %s", claims.MunicipioID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "MUNICIPAL" {
		t.Fatalf("roles erradas: %v", claims.Roles)
	}
}

func TestTokenExpiradoRejeitado(t *testing.T) {
	manager := NewJWTManager(segredoTeste, -time.Minute)

	token, _, err := manager.GenerateAccessToken(uuid.NewString(), []string{"PROVINCIAL"}, "")
	if err != nil {
		t.Fatalf("gerar token falhou: %v", err)
	}
	if _, err := manager.ParseAndValidate(token); err == nil {
		t.Fatal("token expirado deveria ser rejeitado")
	}
}

func TestAssinaturaDeOutroSegredoRejeitada(t *testing.T) {
	outro := NewJWTManager("outro-segredo-tambem-com-32-caracteres!", time.Minute)
	token, _, err := outro.GenerateAccessToken(uuid.NewString(), []string{"PROVINCIAL"}, "")
	if err != nil {
		t.Fatalf("gerar token falhou: %v", err)
	}

	manager := NewJWTManager(segredoTeste, time.Minute)
	if _, err := manager.ParseAndValidate(token); err == nil {
		t.Fatal("assinatura alheia deveria ser rejeitada")
	}
}

func TestAlgoritmoNoneRejeitado(t *testing.T) {
	manager := NewJWTManager(segredoTeste, time.Minute)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("montar token none falhou: %v", err)
	}

	if _, err := manager.ParseAndValidate(token); err == nil {
		t.Fatal("alg none deveria ser rejeitado")
	}
}
