package etl

// Processor is one CSV entity processor: it knows the fixed column layout of
// its file type, the transform to target columns and the natural key used
// for conflict resolution.
type Processor interface {
	// Process streams one extracted CSV in bounded chunks and returns the
	// number of rows prepared and loaded after row-level filtering.
	Process(path string) (int, error)
}

const defaultChunkSize = 50000

func chunkOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return defaultChunkSize
}

// --- company (empresas) ---

var companyColumns = []string{
	"cnpj_basico",
	"razao_social",
	"natureza_juridica",
	"qualificacao_responsavel",
	"capital_social",
	"porte_empresa",
	"ente_federativo",
}

var companyInsertColumns = []string{
	"cnpj_basico",
	"razao_social",
	"natureza_juridica",
	"capital_social",
	"porte_empresa",
}

var companyIdx = indexColumns(companyColumns)

const companyStagingDDL = `
	CREATE TABLE IF NOT EXISTS "stg_empresas" (
		cnpj_basico VARCHAR(8),
		razao_social TEXT,
		natureza_juridica TEXT,
		capital_social TEXT,
		porte_empresa TEXT
	)`

type CompanyProcessor struct {
	Loader    *Loader
	ChunkSize int
}

func (p *CompanyProcessor) Process(path string) (int, error) {
	if err := p.Loader.ensureStaging(companyStagingDDL); err != nil {
		return 0, err
	}

	processed := 0
	err := readCSVChunks(path, companyColumns, chunkOrDefault(p.ChunkSize), false, func(rows []rawRow) error {
		batch := make([][]any, 0, len(rows))
		for _, row := range rows {
			basico := CleanString(row[companyIdx["cnpj_basico"]])
			if basico == nil {
				continue
			}
			batch = append(batch, []any{
				basico,
				CleanString(row[companyIdx["razao_social"]]),
				CleanString(row[companyIdx["natureza_juridica"]]),
				CleanString(row[companyIdx["capital_social"]]),
				CleanString(row[companyIdx["porte_empresa"]]),
			})
		}
		if len(batch) == 0 {
			return nil
		}
		if err := p.Loader.Stage("stg_empresas", companyInsertColumns, batch); err != nil {
			return err
		}
		if err := p.Loader.Merge(MergeSpec{
			StagingTable:    "stg_empresas",
			TargetTable:     "empresas",
			InsertColumns:   companyInsertColumns,
			ConflictColumns: []string{"cnpj_basico"},
		}); err != nil {
			return err
		}
		processed += len(batch)
		return nil
	})
	return processed, err
}

// --- establishment (estabelecimentos) ---

var establishmentColumns = []string{
	"cnpj_basico",
	"cnpj_ordem",
	"cnpj_dv",
	"matriz_filial",
	"nome_fantasia",
	"situacao",
	"data_situacao",
	"motivo",
	"cidade_exterior",
	"pais",
	"inicio",
	"cnae_principal",
	"cnae_secundario",
	"tipo_logradouro",
	"logradouro",
	"numero",
	"complemento",
	"bairro",
	"cep",
	"uf",
	"municipio",
	"ddd1",
	"telefone1",
	"ddd2",
	"telefone2",
	"email",
	"situacao_especial",
	"data_situacao_especial",
}

var establishmentInsertColumns = []string{
	"cnpj_completo",
	"cnpj_basico",
	"nome_fantasia",
	"situacao",
	"uf",
	"municipio",
	"cnae_principal",
	"cnae_secundario",
	"pais",
	"motivo",
}

var establishmentIdx = indexColumns(establishmentColumns)

const establishmentStagingDDL = `
	CREATE TABLE IF NOT EXISTS "stg_estabelecimentos" (
		cnpj_completo VARCHAR(14),
		cnpj_basico VARCHAR(8),
		nome_fantasia TEXT,
		situacao TEXT,
		uf VARCHAR(2),
		municipio TEXT,
		cnae_principal TEXT,
		cnae_secundario TEXT,
		pais TEXT,
		motivo TEXT
	)`

type EstablishmentProcessor struct {
	Loader    *Loader
	ChunkSize int
}

func (p *EstablishmentProcessor) Process(path string) (int, error) {
	if err := p.Loader.ensureStaging(establishmentStagingDDL); err != nil {
		return 0, err
	}

	processed := 0
	err := readCSVChunks(path, establishmentColumns, chunkOrDefault(p.ChunkSize), false, func(rows []rawRow) error {
		batch := make([][]any, 0, len(rows))
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			basico := CleanString(row[establishmentIdx["cnpj_basico"]])
			if basico == nil {
				continue
			}

			// cnpj_completo = basico + order + check digits, exactly 14
			// characters or the row is discarded, never truncated.
			ordem := CleanString(row[establishmentIdx["cnpj_ordem"]])
			dv := CleanString(row[establishmentIdx["cnpj_dv"]])
			completo := *basico + deref(ordem) + deref(dv)
			if len(completo) != 14 {
				continue
			}
			if seen[completo] {
				continue
			}
			seen[completo] = true

			batch = append(batch, []any{
				completo,
				basico,
				CleanString(row[establishmentIdx["nome_fantasia"]]),
				CleanString(row[establishmentIdx["situacao"]]),
				CleanString(row[establishmentIdx["uf"]]),
				CleanString(row[establishmentIdx["municipio"]]),
				CleanString(row[establishmentIdx["cnae_principal"]]),
				CleanString(row[establishmentIdx["cnae_secundario"]]),
				CleanString(row[establishmentIdx["pais"]]),
				CleanString(row[establishmentIdx["motivo"]]),
			})
		}
		if len(batch) == 0 {
			return nil
		}
		if err := p.Loader.Stage("stg_estabelecimentos", establishmentInsertColumns, batch); err != nil {
			return err
		}
		if err := p.Loader.Merge(MergeSpec{
			StagingTable:    "stg_estabelecimentos",
			TargetTable:     "estabelecimentos",
			InsertColumns:   establishmentInsertColumns,
			ConflictColumns: []string{"cnpj_completo"},
		}); err != nil {
			return err
		}
		processed += len(batch)
		return nil
	})
	return processed, err
}

// --- partner (socios) ---

var partnerColumns = []string{
	"cnpj_basico",
	"tipo",
	"nome",
	"cpf_cnpj",
	"qualificacao",
	"data_entrada",
	"pais",
	"cpf_rep",
	"nome_rep",
	"qualificacao_rep",
	"faixa_etaria",
}

var partnerInsertColumns = []string{
	"cnpj_basico",
	"nome_socio",
	"cpf_cnpj_socio",
	"qualificacao",
	"pais",
	"data_entrada",
}

var partnerIdx = indexColumns(partnerColumns)

const partnerStagingDDL = `
	CREATE TABLE IF NOT EXISTS "stg_socios" (
		cnpj_basico VARCHAR(8),
		nome_socio TEXT,
		cpf_cnpj_socio TEXT,
		qualificacao TEXT,
		pais TEXT,
		data_entrada DATE
	)`

type PartnerProcessor struct {
	Loader    *Loader
	ChunkSize int
}

func (p *PartnerProcessor) Process(path string) (int, error) {
	if err := p.Loader.ensureStaging(partnerStagingDDL); err != nil {
		return 0, err
	}

	processed := 0
	err := readCSVChunks(path, partnerColumns, chunkOrDefault(p.ChunkSize), false, func(rows []rawRow) error {
		batch := make([][]any, 0, len(rows))
		for _, row := range rows {
			basico := CleanString(row[partnerIdx["cnpj_basico"]])
			if basico == nil {
				continue
			}
			batch = append(batch, []any{
				basico,
				CleanString(row[partnerIdx["nome"]]),
				CleanString(row[partnerIdx["cpf_cnpj"]]),
				CleanString(row[partnerIdx["qualificacao"]]),
				CleanString(row[partnerIdx["pais"]]),
				NormalizeDate(row[partnerIdx["data_entrada"]]),
			})
		}
		if len(batch) == 0 {
			return nil
		}
		if err := p.Loader.Stage("stg_socios", partnerInsertColumns, batch); err != nil {
			return err
		}
		// Absent name/tax-id are matched as '' so a NULL and an empty
		// string count as the same partner.
		if err := p.Loader.Merge(MergeSpec{
			StagingTable:    "stg_socios",
			TargetTable:     "socios",
			InsertColumns:   partnerInsertColumns,
			ConflictColumns: []string{"cnpj_basico", "nome_socio", "cpf_cnpj_socio"},
			ConflictExprs: []string{
				`"cnpj_basico"`,
				`COALESCE("nome_socio", '')`,
				`COALESCE("cpf_cnpj_socio", '')`,
			},
		}); err != nil {
			return err
		}
		processed += len(batch)
		return nil
	})
	return processed, err
}

// --- tax regime (simples) ---

var simplesColumns = []string{
	"cnpj_basico",
	"opcao_pelo_simples",
	"data_opcao_pelo_simples",
	"data_exclusao_do_simples",
	"opcao_pelo_mei",
	"data_opcao_pelo_mei",
	"data_exclusao_do_mei",
}

var simplesIdx = indexColumns(simplesColumns)

const simplesStagingDDL = `
	CREATE TABLE IF NOT EXISTS "stg_simples" (
		cnpj_basico VARCHAR(8),
		opcao_pelo_simples VARCHAR(1),
		data_opcao_pelo_simples DATE,
		data_exclusao_do_simples DATE,
		opcao_pelo_mei VARCHAR(1),
		data_opcao_pelo_mei DATE,
		data_exclusao_do_mei DATE
	)`

type SimplesProcessor struct {
	Loader    *Loader
	ChunkSize int
}

func (p *SimplesProcessor) Process(path string) (int, error) {
	if err := p.Loader.ensureStaging(simplesStagingDDL); err != nil {
		return 0, err
	}

	normDate := func(raw string) *string {
		v := ZeroSentinel(raw)
		if v == nil {
			return nil
		}
		return NormalizeDate(*v)
	}

	processed := 0
	err := readCSVChunks(path, simplesColumns, chunkOrDefault(p.ChunkSize), true, func(rows []rawRow) error {
		batch := make([][]any, 0, len(rows))
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			basico := ZeroSentinel(row[simplesIdx["cnpj_basico"]])
			if basico == nil {
				continue
			}
			basico = PadCNPJBasico(*basico)
			if basico == nil {
				continue
			}
			if seen[*basico] {
				continue
			}
			seen[*basico] = true

			batch = append(batch, []any{
				basico,
				ZeroSentinel(row[simplesIdx["opcao_pelo_simples"]]),
				normDate(row[simplesIdx["data_opcao_pelo_simples"]]),
				normDate(row[simplesIdx["data_exclusao_do_simples"]]),
				ZeroSentinel(row[simplesIdx["opcao_pelo_mei"]]),
				normDate(row[simplesIdx["data_opcao_pelo_mei"]]),
				normDate(row[simplesIdx["data_exclusao_do_mei"]]),
			})
		}
		if len(batch) == 0 {
			return nil
		}
		if err := p.Loader.Stage("stg_simples", simplesColumns, batch); err != nil {
			return err
		}
		if err := p.Loader.Merge(MergeSpec{
			StagingTable:    "stg_simples",
			TargetTable:     "simples",
			InsertColumns:   simplesColumns,
			ConflictColumns: []string{"cnpj_basico"},
		}); err != nil {
			return err
		}
		processed += len(batch)
		return nil
	})
	return processed, err
}

// --- reference tables (codigo/descricao), one generic implementation ---

var referenceColumns = []string{"codigo", "descricao"}

// ReferenceProcessor handles the six lookup file types, which all share the
// same two-column positional shape and only differ in table names.
type ReferenceProcessor struct {
	Loader       *Loader
	ChunkSize    int
	StagingTable string
	TargetTable  string
}

func (p *ReferenceProcessor) Process(path string) (int, error) {
	ddl := `CREATE TABLE IF NOT EXISTS ` + quoteIdent(p.StagingTable) + ` (
		codigo TEXT,
		descricao TEXT
	)`
	if err := p.Loader.ensureStaging(ddl); err != nil {
		return 0, err
	}

	processed := 0
	err := readCSVChunks(path, referenceColumns, chunkOrDefault(p.ChunkSize), true, func(rows []rawRow) error {
		batch := make([][]any, 0, len(rows))
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			codigo := CleanString(row[0])
			descricao := CleanString(row[1])
			if codigo == nil || descricao == nil {
				continue
			}
			if seen[*codigo] {
				continue
			}
			seen[*codigo] = true
			batch = append(batch, []any{codigo, descricao})
		}
		if len(batch) == 0 {
			return nil
		}
		if err := p.Loader.Stage(p.StagingTable, referenceColumns, batch); err != nil {
			return err
		}
		if err := p.Loader.Merge(MergeSpec{
			StagingTable:    p.StagingTable,
			TargetTable:     p.TargetTable,
			InsertColumns:   referenceColumns,
			ConflictColumns: []string{"codigo"},
		}); err != nil {
			return err
		}
		processed += len(batch)
		return nil
	})
	return processed, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
