package registry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"cnpj-data-api/internal/cache"
	"cnpj-data-api/internal/metrics"
	"cnpj-data-api/internal/util"
)

var (
	ErrInvalidCNPJ = errors.New("cnpj must have 8 or 14 digits")
	ErrNotFound    = errors.New("cnpj not found")
)

// Metrics is optional; when set, failed queries are counted.
type RegistryService struct {
	DB      *gorm.DB
	Cache   *cache.Cache
	Metrics *metrics.Store
}

func (rs *RegistryService) dbError(err error) error {
	rs.Metrics.Increment(metrics.DBErrorsTotal)
	return err
}

const empresaSQL = `
	SELECT
		e.cnpj_basico,
		e.razao_social,
		e.natureza_juridica,
		n.descricao AS natureza_juridica_descricao,
		e.capital_social,
		e.porte_empresa,
		s.opcao_pelo_simples,
		s.data_opcao_pelo_simples,
		s.data_exclusao_do_simples,
		s.opcao_pelo_mei,
		s.data_opcao_pelo_mei,
		s.data_exclusao_do_mei
	FROM empresas e
	LEFT JOIN naturezas n ON n.codigo = e.natureza_juridica
	LEFT JOIN simples s ON s.cnpj_basico = e.cnpj_basico
	WHERE e.cnpj_basico = ?`

const estabelecimentosBaseSQL = `
	SELECT
		est.id,
		est.cnpj_completo,
		est.cnpj_basico,
		est.nome_fantasia,
		est.situacao,
		est.uf,
		est.municipio,
		m.descricao AS municipio_descricao,
		est.cnae_principal,
		c.descricao AS cnae_principal_descricao,
		est.cnae_secundario,
		est.pais,
		p.descricao AS pais_descricao,
		est.motivo,
		mot.descricao AS motivo_descricao
	FROM estabelecimentos est
	LEFT JOIN municipios m ON m.codigo = est.municipio
	LEFT JOIN cnaes c ON c.codigo = est.cnae_principal
	LEFT JOIN paises p ON p.codigo = est.pais
	LEFT JOIN motivos mot ON mot.codigo = est.motivo`

const sociosSQL = `
	SELECT
		s.id,
		s.cnpj_basico,
		s.nome_socio,
		s.cpf_cnpj_socio,
		s.qualificacao,
		q.descricao AS qualificacao_descricao,
		s.pais,
		p.descricao AS pais_descricao
	FROM socios s
	LEFT JOIN qualificacoes q ON q.codigo = s.qualificacao
	LEFT JOIN paises p ON p.codigo = s.pais
	WHERE s.cnpj_basico = ?
	ORDER BY s.id`

// Lookup resolves an 8-digit root or a 14-digit full CNPJ into the company,
// its establishments and its partners, with reference descriptions joined
// in. Results are cached as serialized JSON under the digits key.
func (rs *RegistryService) Lookup(ctx context.Context, cnpj string) (*CNPJResponse, error) {
	digits := util.OnlyDigits(cnpj)
	if len(digits) != 8 && len(digits) != 14 {
		return nil, ErrInvalidCNPJ
	}

	if cached, ok := rs.Cache.Get(ctx, cache.Key(digits)); ok {
		var out CNPJResponse
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	}

	out, err := rs.lookupDB(digits)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		rs.Cache.Set(ctx, cache.Key(digits), string(b))
	}
	return out, nil
}

func (rs *RegistryService) lookupDB(digits string) (*CNPJResponse, error) {
	basico := digits[:8]

	var empresas []EmpresaOut
	if err := rs.DB.Raw(empresaSQL, basico).Scan(&empresas).Error; err != nil {
		return nil, rs.dbError(err)
	}

	estabSQL := estabelecimentosBaseSQL + "\n\tWHERE est.cnpj_basico = ?\n\tORDER BY est.cnpj_completo"
	estabArg := basico
	if len(digits) == 14 {
		estabSQL = estabelecimentosBaseSQL + "\n\tWHERE est.cnpj_completo = ?\n\tORDER BY est.cnpj_completo"
		estabArg = digits
	}
	var estabelecimentos []EstabelecimentoOut
	if err := rs.DB.Raw(estabSQL, estabArg).Scan(&estabelecimentos).Error; err != nil {
		return nil, rs.dbError(err)
	}

	var socios []SocioOut
	if err := rs.DB.Raw(sociosSQL, basico).Scan(&socios).Error; err != nil {
		return nil, rs.dbError(err)
	}

	var empresa *EmpresaOut
	if len(empresas) > 0 {
		empresa = &empresas[0]
	}
	if empresa == nil && len(estabelecimentos) == 0 && len(socios) == 0 {
		return nil, ErrNotFound
	}

	return &CNPJResponse{
		Empresa:          empresa,
		Estabelecimentos: estabelecimentos,
		Socios:           socios,
	}, nil
}

// LookupBatch resolves several 8-digit roots in one call, serving what it
// can from the cache and filling the misses from the store.
func (rs *RegistryService) LookupBatch(ctx context.Context, cnpjs []string) (map[string]*CNPJResponse, error) {
	roots := make([]string, 0, len(cnpjs))
	seen := make(map[string]bool, len(cnpjs))
	for _, raw := range cnpjs {
		digits := util.OnlyDigits(raw)
		if len(digits) != 8 && len(digits) != 14 {
			continue
		}
		root := digits[:8]
		if seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}

	out := make(map[string]*CNPJResponse, len(roots))

	keys := make([]string, len(roots))
	for i, root := range roots {
		keys[i] = cache.Key(root)
	}
	cached := rs.Cache.GetMany(ctx, keys)

	toStore := make(map[string]string)
	for _, root := range roots {
		if raw, ok := cached[cache.Key(root)]; ok {
			var resp CNPJResponse
			if err := json.Unmarshal([]byte(raw), &resp); err == nil {
				out[root] = &resp
				continue
			}
		}

		resp, err := rs.lookupDB(root)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[root] = resp
		if b, err := json.Marshal(resp); err == nil {
			toStore[cache.Key(root)] = string(b)
		}
	}
	rs.Cache.SetMany(ctx, toStore)

	return out, nil
}

// SearchCompanies matches razao_social. On Postgres ranking is delegated to
// the store's Portuguese full-text search; other dialects (sqlite in tests)
// fall back to a case-insensitive substring match.
func (rs *RegistryService) SearchCompanies(q string, limit int) ([]Empresa, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []Empresa
	if rs.DB.Dialector.Name() == "postgres" {
		sql := `
			SELECT e.cnpj_basico, e.razao_social, e.natureza_juridica, e.capital_social, e.porte_empresa
			FROM empresas e
			WHERE to_tsvector('portuguese', coalesce(e.razao_social, ''))
			      @@ plainto_tsquery('portuguese', ?)
			ORDER BY ts_rank(
				to_tsvector('portuguese', coalesce(e.razao_social, '')),
				plainto_tsquery('portuguese', ?)
			) DESC, e.razao_social ASC
			LIMIT ?`
		if err := rs.DB.Raw(sql, q, q, limit).Scan(&rows).Error; err != nil {
			return nil, rs.dbError(err)
		}
		return rows, nil
	}

	err := rs.DB.
		Where("LOWER(COALESCE(razao_social, '')) LIKE ?", "%"+strings.ToLower(q)+"%").
		Order("razao_social ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, rs.dbError(err)
	}
	return rows, nil
}
