package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"cnpj-data-api/internal/cache"
)

func strPtr(s string) *string {
	return &s
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique in-memory DB per test to avoid cross-test contamination
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&Empresa{}, &Estabelecimento{}, &Socio{}, &Simples{},
		&Cnae{}, &Motivo{}, &Municipio{}, &Natureza{}, &Pais{}, &Qualificacao{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

func newTestService(t *testing.T) *RegistryService {
	t.Helper()
	return &RegistryService{
		DB:    newTestDB(t),
		Cache: cache.New("", 0),
	}
}

func seedAcme(t *testing.T, db *gorm.DB) {
	t.Helper()
	seed := []any{
		&Empresa{CnpjBasico: "12345678", RazaoSocial: strPtr("ACME LTDA"), NaturezaJuridica: strPtr("2062"), CapitalSocial: strPtr("10000,00"), PorteEmpresa: strPtr("05")},
		&Natureza{Codigo: "2062", Descricao: "Sociedade Limitada"},
		&Simples{CnpjBasico: "12345678", OpcaoPeloSimples: strPtr("S"), DataOpcaoPeloSimples: strPtr("2018-07-01")},
		&Estabelecimento{CnpjCompleto: "12345678000195", CnpjBasico: "12345678", NomeFantasia: strPtr("LOJA CENTRO"), Situacao: strPtr("02"), Uf: strPtr("SP"), Municipio: strPtr("7107"), CnaePrincipal: strPtr("4711301")},
		&Estabelecimento{CnpjCompleto: "12345678000276", CnpjBasico: "12345678", NomeFantasia: strPtr("LOJA NORTE"), Situacao: strPtr("02"), Uf: strPtr("SP"), Municipio: strPtr("7107"), CnaePrincipal: strPtr("4711301")},
		&Municipio{Codigo: "7107", Descricao: "Sao Paulo"},
		&Cnae{Codigo: "4711301", Descricao: "Comercio varejista"},
		&Socio{CnpjBasico: "12345678", NomeSocio: strPtr("MARIA DA SILVA"), CpfCnpjSocio: strPtr("***111222**"), Qualificacao: strPtr("49")},
		&Qualificacao{Codigo: "49", Descricao: "Socio-Administrador"},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
}

func TestLookup_ByRoot(t *testing.T) {
	svc := newTestService(t)
	seedAcme(t, svc.DB)

	got, err := svc.Lookup(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if got.Empresa == nil || got.Empresa.CnpjBasico != "12345678" {
		t.Fatalf("expected company, got %+v", got.Empresa)
	}
	if got.Empresa.NaturezaJuridicaDescricao == nil || *got.Empresa.NaturezaJuridicaDescricao != "Sociedade Limitada" {
		t.Fatalf("expected joined legal nature description, got %v", got.Empresa.NaturezaJuridicaDescricao)
	}
	if got.Empresa.OpcaoPeloSimples == nil || *got.Empresa.OpcaoPeloSimples != "S" {
		t.Fatalf("expected simples option joined in, got %v", got.Empresa.OpcaoPeloSimples)
	}
	if len(got.Estabelecimentos) != 2 {
		t.Fatalf("expected 2 establishments for root lookup, got %d", len(got.Estabelecimentos))
	}
	if got.Estabelecimentos[0].CnpjCompleto != "12345678000195" {
		t.Fatalf("expected establishments ordered by cnpj_completo, got %s first", got.Estabelecimentos[0].CnpjCompleto)
	}
	if len(got.Socios) != 1 {
		t.Fatalf("expected 1 partner, got %d", len(got.Socios))
	}
	if got.Socios[0].QualificacaoDescricao == nil || *got.Socios[0].QualificacaoDescricao != "Socio-Administrador" {
		t.Fatalf("expected joined qualification description, got %v", got.Socios[0].QualificacaoDescricao)
	}
}

func TestLookup_FullCNPJFiltersEstablishments(t *testing.T) {
	svc := newTestService(t)
	seedAcme(t, svc.DB)

	got, err := svc.Lookup(context.Background(), "12.345.678/0002-76")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(got.Estabelecimentos) != 1 {
		t.Fatalf("expected 1 establishment for full CNPJ, got %d", len(got.Estabelecimentos))
	}
	if got.Estabelecimentos[0].CnpjCompleto != "12345678000276" {
		t.Fatalf("expected the addressed establishment, got %s", got.Estabelecimentos[0].CnpjCompleto)
	}
	// Company and partners still come from the root.
	if got.Empresa == nil || len(got.Socios) != 1 {
		t.Fatalf("expected root-level company and partners, got %+v", got)
	}
}

func TestLookup_InvalidLength(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Lookup(context.Background(), "1234"); err != ErrInvalidCNPJ {
		t.Fatalf("expected ErrInvalidCNPJ, got %v", err)
	}
	if _, err := svc.Lookup(context.Background(), "not a cnpj"); err != ErrInvalidCNPJ {
		t.Fatalf("expected ErrInvalidCNPJ for non-digits, got %v", err)
	}
}

func TestLookup_NotFound(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Lookup(context.Background(), "99999999"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookup_PartnersOnlyStillResolves(t *testing.T) {
	svc := newTestService(t)
	if err := svc.DB.Create(&Socio{CnpjBasico: "55555555", NomeSocio: strPtr("FULANO")}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.Lookup(context.Background(), "55555555")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if got.Empresa != nil {
		t.Fatalf("expected no company, got %+v", got.Empresa)
	}
	if len(got.Socios) != 1 {
		t.Fatalf("expected 1 partner, got %d", len(got.Socios))
	}
}

func TestLookupBatch_DeduplicatesAndSkipsMisses(t *testing.T) {
	svc := newTestService(t)
	seedAcme(t, svc.DB)

	got, err := svc.LookupBatch(context.Background(), []string{
		"12345678",
		"12345678000195", // same root as above
		"99999999",       // not in the store
		"garbage",        // not a cnpj at all
	})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 resolved root, got %d", len(got))
	}
	resp, ok := got["12345678"]
	if !ok || resp.Empresa == nil {
		t.Fatalf("expected resolved company for root, got %+v", got)
	}
}

func TestSearchCompanies_SubstringMatch(t *testing.T) {
	svc := newTestService(t)
	seedAcme(t, svc.DB)
	if err := svc.DB.Create(&Empresa{CnpjBasico: "87654321", RazaoSocial: strPtr("BETA COMERCIO SA")}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := svc.SearchCompanies("acme", 10)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(rows) != 1 || rows[0].CnpjBasico != "12345678" {
		t.Fatalf("expected ACME only, got %+v", rows)
	}

	none, err := svc.SearchCompanies("inexistente", 10)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestSearchCompanies_LimitClamped(t *testing.T) {
	svc := newTestService(t)
	for i := 0; i < 25; i++ {
		emp := &Empresa{CnpjBasico: fmt.Sprintf("%08d", i), RazaoSocial: strPtr(fmt.Sprintf("PADARIA %02d", i))}
		if err := svc.DB.Create(emp).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rows, err := svc.SearchCompanies("padaria", 0)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(rows) != 20 {
		t.Fatalf("expected default limit 20, got %d", len(rows))
	}
}
