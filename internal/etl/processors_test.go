package etl

import (
	"testing"

	"gorm.io/gorm"
)

func entityTables(t *testing.T, db *gorm.DB) {
	execAll(t, db,
		`CREATE TABLE empresas (
			cnpj_basico TEXT, razao_social TEXT, natureza_juridica TEXT,
			capital_social TEXT, porte_empresa TEXT)`,
		`CREATE UNIQUE INDEX ux_empresas_basico ON empresas (cnpj_basico)`,
		`CREATE TABLE estabelecimentos (
			cnpj_completo TEXT, cnpj_basico TEXT, nome_fantasia TEXT, situacao TEXT,
			uf TEXT, municipio TEXT, cnae_principal TEXT, cnae_secundario TEXT,
			pais TEXT, motivo TEXT)`,
		`CREATE UNIQUE INDEX ux_estab_completo ON estabelecimentos (cnpj_completo)`,
		`CREATE TABLE socios (
			cnpj_basico TEXT, nome_socio TEXT, cpf_cnpj_socio TEXT,
			qualificacao TEXT, pais TEXT, data_entrada TEXT)`,
		`CREATE UNIQUE INDEX ux_socios_chave ON socios (cnpj_basico, COALESCE(nome_socio, ''), COALESCE(cpf_cnpj_socio, ''))`,
		`CREATE TABLE simples (
			cnpj_basico TEXT, opcao_pelo_simples TEXT, data_opcao_pelo_simples TEXT,
			data_exclusao_do_simples TEXT, opcao_pelo_mei TEXT,
			data_opcao_pelo_mei TEXT, data_exclusao_do_mei TEXT)`,
		`CREATE UNIQUE INDEX ux_simples_basico ON simples (cnpj_basico)`,
	)
}

func TestCompanyProcessor_LoadsRows(t *testing.T) {
	db := newTestDB(t)
	entityTables(t, db)
	p := &CompanyProcessor{Loader: &Loader{DB: db}, ChunkSize: 100}

	path := writeTempFile(t, "K123.EMPRECSV", []byte(
		"12345678;ACME LTDA;2062;49;10000,00;05;\n"+
			"87654321;BETA SA;2054;16;500000,00;03;\n"+
			";SEM CNPJ;2062;49;0;01;\n"))

	n, err := p.Process(path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows processed, got %d", n)
	}

	var razao string
	if err := db.Table("empresas").Where("cnpj_basico = ?", "12345678").
		Select("razao_social").Scan(&razao).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if razao != "ACME LTDA" {
		t.Fatalf("expected ACME LTDA, got %q", razao)
	}
}

func TestCompanyProcessor_RerunIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	entityTables(t, db)
	p := &CompanyProcessor{Loader: &Loader{DB: db}, ChunkSize: 100}

	path := writeTempFile(t, "K123.EMPRECSV", []byte(
		"12345678;ACME LTDA;2062;49;10000,00;05;\n"))

	for i := 0; i < 2; i++ {
		if _, err := p.Process(path); err != nil {
			t.Fatalf("process run %d: %v", i, err)
		}
	}
	if n := countTable(t, db, "empresas"); n != 1 {
		t.Fatalf("expected 1 row after rerun, got %d", n)
	}
}

func TestEstablishmentProcessor_BuildsAndValidatesCNPJ(t *testing.T) {
	db := newTestDB(t)
	entityTables(t, db)
	p := &EstablishmentProcessor{Loader: &Loader{DB: db}, ChunkSize: 100}

	// Second row assembles to 13 characters and must be dropped. Third
	// row duplicates the first establishment inside the chunk.
	path := writeTempFile(t, "K123.ESTABELE", []byte(
		"12345678;0001;95;1;LOJA CENTRO;02;20200101;00;;;20190101;4711301;;RUA;FLORES;10;;CENTRO;01000000;SP;7107;11;999;;;a@b.com;;\n"+
			"12345678;001;95;1;LOJA CURTA;02;20200101;00;;;20190101;4711301;;RUA;FLORES;11;;CENTRO;01000000;SP;7107;;;;;;;\n"+
			"12345678;0001;95;1;LOJA REPETIDA;02;20200101;00;;;20190101;4711301;;RUA;FLORES;12;;CENTRO;01000000;SP;7107;;;;;;;\n"))

	n, err := p.Process(path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row processed, got %d", n)
	}

	var completo string
	if err := db.Table("estabelecimentos").Select("cnpj_completo").Scan(&completo).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if completo != "12345678000195" {
		t.Fatalf("expected 12345678000195, got %q", completo)
	}
}

func TestPartnerProcessor_NormalizesEntryDate(t *testing.T) {
	db := newTestDB(t)
	entityTables(t, db)
	p := &PartnerProcessor{Loader: &Loader{DB: db}, ChunkSize: 100}

	path := writeTempFile(t, "K123.SOCIOCSV", []byte(
		"12345678;2;MARIA DA SILVA;***111222**;49;20150320;;;;;4\n"+
			"12345678;2;JOSE SOUZA;***333444**;22;None;;;;;5\n"))

	n, err := p.Process(path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows processed, got %d", n)
	}

	var entrada *string
	if err := db.Table("socios").Where("nome_socio = ?", "MARIA DA SILVA").
		Select("data_entrada").Scan(&entrada).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if entrada == nil || *entrada != "2015-03-20" {
		t.Fatalf("expected 2015-03-20, got %v", entrada)
	}

	var absent *string
	if err := db.Table("socios").Where("nome_socio = ?", "JOSE SOUZA").
		Select("data_entrada").Scan(&absent).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected NULL entry date, got %q", *absent)
	}
}

func TestSimplesProcessor_ZeroSentinelsAndPadding(t *testing.T) {
	db := newTestDB(t)
	entityTables(t, db)
	p := &SimplesProcessor{Loader: &Loader{DB: db}, ChunkSize: 100}

	// Short root gets left-padded; all-zero dates become NULL; the all-zero
	// root row is dropped entirely.
	path := writeTempFile(t, "K123.SIMPLES.CSV", []byte(
		"123;S;20180701;00000000;N;00000000;00000000\n"+
			"00000000;S;20180701;;N;;\n"))

	n, err := p.Process(path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row processed, got %d", n)
	}

	type simplesRow struct {
		CnpjBasico            string
		OpcaoPeloSimples      *string
		DataOpcaoPeloSimples  *string
		DataExclusaoDoSimples *string
	}
	var row simplesRow
	if err := db.Table("simples").
		Select("cnpj_basico, opcao_pelo_simples, data_opcao_pelo_simples, data_exclusao_do_simples").
		Scan(&row).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if row.CnpjBasico != "00000123" {
		t.Fatalf("expected padded root 00000123, got %q", row.CnpjBasico)
	}
	if row.DataOpcaoPeloSimples == nil || *row.DataOpcaoPeloSimples != "2018-07-01" {
		t.Fatalf("expected 2018-07-01, got %v", row.DataOpcaoPeloSimples)
	}
	if row.DataExclusaoDoSimples != nil {
		t.Fatalf("expected NULL for all-zero date, got %q", *row.DataExclusaoDoSimples)
	}
}

func TestReferenceProcessor_LoadsLookups(t *testing.T) {
	db := newTestDB(t)
	refTables(t, db)
	p := &ReferenceProcessor{
		Loader: &Loader{DB: db}, ChunkSize: 100,
		StagingTable: "stg_cnaes", TargetTable: "cnaes",
	}

	path := writeTempFile(t, "K123.CNAECSV", []byte(
		"0111301;Cultivo de arroz\n"+
			"0111302;Cultivo de milho\n"+
			"0111301;Cultivo de arroz duplicado\n"+
			";Sem codigo\n"))

	n, err := p.Process(path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows processed, got %d", n)
	}
	if total := countTable(t, db, "cnaes"); total != 2 {
		t.Fatalf("expected 2 lookup rows, got %d", total)
	}
}
